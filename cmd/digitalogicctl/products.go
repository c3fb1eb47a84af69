package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/digitalogic/catalog/internal/products"
	"github.com/spf13/cobra"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and edit catalog products",
	}
	cmd.AddCommand(productsListCmd(), productsGetCmd(), productsUpdateCmd())
	return cmd
}

func productsListCmd() *cobra.Command {
	var (
		limit  int
		search string
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			out, apiErr := a.products.List(cliContext(), products.ListFilter{
				Search:   search,
				Page:     1,
				PageSize: limit,
			})
			if apiErr != nil {
				return apiErr
			}

			if format == "json" {
				return json.NewEncoder(os.Stdout).Encode(out)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSKU\tTYPE\tPRICE\tSTOCK\tSTATUS")
			for _, p := range out.Products {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%d\t%s\n",
					p.ID, p.Name, p.SKU, p.Type, p.RegularPrice, p.StockQuantity, p.StockStatus)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d of %d products\n", len(out.Products), out.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of products to show")
	cmd.Flags().StringVar(&search, "search", "", "search by name or SKU")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table|json)")
	return cmd
}

func fetchProduct(a *app, id int64, sku string) (*products.Product, error) {
	if id != 0 && sku != "" {
		return nil, errors.New("--id and --sku are mutually exclusive")
	}

	switch {
	case id != 0:
		p, apiErr := a.products.Get(cliContext(), id)
		if apiErr != nil {
			return nil, apiErr
		}
		return p, nil
	case sku != "":
		p, apiErr := a.products.GetBySKU(cliContext(), sku)
		if apiErr != nil {
			return nil, apiErr
		}
		return p, nil
	default:
		return nil, errors.New("one of --id or --sku is required")
	}
}

func productsGetCmd() *cobra.Command {
	var (
		id  int64
		sku string
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a single product",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			p, err := fetchProduct(a, id, sku)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "product id")
	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	return cmd
}

func productsUpdateCmd() *cobra.Command {
	var (
		id        int64
		sku       string
		price     float64
		salePrice float64
		stock     int
		setSKU    string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a product's price, stock or SKU",
		RunE: func(cmd *cobra.Command, args []string) error {
			var input products.UpdateInput
			if cmd.Flags().Changed("price") {
				input.RegularPrice = &price
			}
			if cmd.Flags().Changed("sale-price") {
				input.SalePrice = &salePrice
			}
			if cmd.Flags().Changed("stock") {
				input.StockQuantity = &stock
			}
			if cmd.Flags().Changed("set-sku") {
				input.SKU = &setSKU
			}
			if input.RegularPrice == nil && input.SalePrice == nil && input.StockQuantity == nil && input.SKU == nil {
				return errors.New("nothing to update")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			p, err := fetchProduct(a, id, sku)
			if err != nil {
				return err
			}

			updated, apiErr := a.products.Update(cliContext(), p.ID, input)
			if apiErr != nil {
				return apiErr
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(updated)
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "product id")
	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	cmd.Flags().Float64Var(&price, "price", 0, "new regular price")
	cmd.Flags().Float64Var(&salePrice, "sale-price", 0, "new sale price (0 clears it)")
	cmd.Flags().IntVar(&stock, "stock", 0, "new stock quantity")
	cmd.Flags().StringVar(&setSKU, "set-sku", "", "new SKU")
	return cmd
}
