package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog to CSV, JSON or a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			file, apiErr := a.transfer.Export(cliContext(), format, nil)
			if apiErr != nil {
				return apiErr
			}

			path := output
			if path == "" {
				path = file.Filename
			}
			if err := os.WriteFile(path, file.Data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Printf("Exported to %s (%d bytes)\n", path, len(file.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "export format (csv|json|excel)")
	cmd.Flags().StringVar(&output, "output", "", "output path (default: products-<date>.<ext>)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Apply a previously exported product file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			format := strings.TrimPrefix(filepath.Ext(path), ".")
			result, apiErr := a.transfer.Import(cliContext(), format, f)
			if apiErr != nil {
				return apiErr
			}

			fmt.Printf("Imported: %d succeeded, %d failed\n", result.Success, result.Failed)
			for _, importErr := range result.Errors {
				fmt.Fprintf(os.Stderr, "row %d: %s\n", importErr.Row, importErr.Message)
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d rows failed", result.Failed)
			}
			return nil
		},
	}
}
