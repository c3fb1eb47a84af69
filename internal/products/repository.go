package products

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/digitalogic/catalog/internal/database/postgres"
)

type Repository interface {
	FindByID(ctx context.Context, id int64) (Product, error)
	FindBySKU(ctx context.Context, sku string) (Product, error)
	FindChildren(ctx context.Context, parentID int64, limit int) ([]Product, error)
	CountChildren(ctx context.Context, parentID int64) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, p Product) error
	ListDynamicPricing(ctx context.Context) ([]Product, error)
	FindLookup(ctx context.Context, productID int64) (LookupRow, error)
	UpsertLookup(ctx context.Context, row LookupRow) error
}

type repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) Repository {
	return &repository{db: db}
}

const productColumns = `id, parent_id, name, COALESCE(sku, ''), type, status, category,
	regular_price, sale_price, stock_quantity, stock_status, manage_stock,
	weight, length, width, height, tax_status,
	dynamic_pricing, currency_type, base_price, markup, markup_type,
	created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.ParentID, &p.Name, &p.SKU, &p.Type, &p.Status, &p.Category,
		&p.RegularPrice, &p.SalePrice, &p.StockQuantity, &p.StockStatus, &p.ManageStock,
		&p.Weight, &p.Length, &p.Width, &p.Height, &p.TaxStatus,
		&p.DynamicPricing, &p.CurrencyType, &p.BasePrice, &p.Markup, &p.MarkupType,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *repository) FindByID(ctx context.Context, id int64) (Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *repository) FindBySKU(ctx context.Context, sku string) (Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE sku = $1", productColumns)
	return scanProduct(r.db.QueryRow(ctx, query, sku))
}

func (r *repository) FindChildren(ctx context.Context, parentID int64, limit int) ([]Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE parent_id = $1 ORDER BY id LIMIT $2", productColumns)
	rows, err := r.db.Query(ctx, query, parentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *repository) CountChildren(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE parent_id = $1", parentID).Scan(&count)
	return count, err
}

// Whitelisted sort columns keep user-driven ordering out of SQL injection
// territory.
var sortColumns = map[string]string{
	"id":            "id",
	"name":          "name",
	"sku":           "sku",
	"regular_price": "regular_price",
	"stock":         "stock_quantity",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

func buildWhere(filter ListFilter) (string, []any) {
	conds := []string{"1=1"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR sku ILIKE %s)", p, p))
	}
	if filter.SKU != "" {
		conds = append(conds, "sku = "+arg(filter.SKU))
	}
	if filter.Status != "" && filter.Status != "any" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Type != "" {
		conds = append(conds, "type = "+arg(filter.Type))
	} else {
		conds = append(conds, fmt.Sprintf("type IN (%s, %s)", arg(TypeSimple), arg(TypeVariable)))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.StockStatus != "" {
		conds = append(conds, "stock_status = "+arg(filter.StockStatus))
	}

	return strings.Join(conds, " AND "), args
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	where, args := buildWhere(filter)

	sortCol, ok := sortColumns[filter.OrderBy]
	if !ok {
		sortCol = "id"
	}
	order := strings.ToUpper(filter.Order)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := fmt.Sprintf(
		"SELECT %s FROM products WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		productColumns, where, sortCol, order, len(args)+1, len(args)+2,
	)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Product, 0, filter.PageSize)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *repository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	where, args := buildWhere(filter)
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE "+where, args...).Scan(&count)
	return count, err
}

func (r *repository) Update(ctx context.Context, p Product) error {
	var sku *string
	if p.SKU != "" {
		sku = &p.SKU
	}
	_, err := r.db.Exec(ctx, `
		UPDATE products SET
			name = $2, sku = $3, status = $4, category = $5,
			regular_price = $6, sale_price = $7,
			stock_quantity = $8, stock_status = $9, manage_stock = $10,
			weight = $11, length = $12, width = $13, height = $14,
			dynamic_pricing = $15, currency_type = $16, base_price = $17,
			markup = $18, markup_type = $19,
			updated_at = now()
		WHERE id = $1`,
		p.ID, p.Name, sku, p.Status, p.Category,
		p.RegularPrice, p.SalePrice,
		p.StockQuantity, p.StockStatus, p.ManageStock,
		p.Weight, p.Length, p.Width, p.Height,
		p.DynamicPricing, p.CurrencyType, p.BasePrice,
		p.Markup, p.MarkupType,
	)
	return err
}

func (r *repository) ListDynamicPricing(ctx context.Context) ([]Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE dynamic_pricing = true ORDER BY id", productColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *repository) FindLookup(ctx context.Context, productID int64) (LookupRow, error) {
	var row LookupRow
	err := r.db.QueryRow(ctx, `
		SELECT product_id, sku, min_price, max_price, stock_quantity, stock_status, tax_status, updated_at
		FROM product_lookup WHERE product_id = $1`, productID,
	).Scan(
		&row.ProductID, &row.SKU, &row.MinPrice, &row.MaxPrice,
		&row.StockQuantity, &row.StockStatus, &row.TaxStatus, &row.UpdatedAt,
	)
	return row, err
}

func (r *repository) UpsertLookup(ctx context.Context, row LookupRow) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO product_lookup (product_id, sku, min_price, max_price, stock_quantity, stock_status, tax_status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id) DO UPDATE SET
			sku = EXCLUDED.sku,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			stock_quantity = EXCLUDED.stock_quantity,
			stock_status = EXCLUDED.stock_status,
			tax_status = EXCLUDED.tax_status,
			updated_at = EXCLUDED.updated_at`,
		row.ProductID, row.SKU, row.MinPrice, row.MaxPrice,
		row.StockQuantity, row.StockStatus, row.TaxStatus, time.Now(),
	)
	return err
}
