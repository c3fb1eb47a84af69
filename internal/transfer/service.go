package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/internal/products"
	"github.com/digitalogic/catalog/pkg/parser"
	"github.com/digitalogic/catalog/pkg/rest"
	"go.uber.org/zap"
)

const exportPageSize = 100

// catalog is the slice of the product manager this service drives.
type catalog interface {
	List(ctx context.Context, filter products.ListFilter) (*products.PaginatedProductsOutput, *rest.ApiErr)
	Get(ctx context.Context, id int64) (*products.Product, *rest.ApiErr)
	Update(ctx context.Context, id int64, input products.UpdateInput) (*products.Product, *rest.ApiErr)
}

type Service interface {
	// Export serializes products to the requested format. An empty id list
	// exports the whole catalog.
	Export(ctx context.Context, format string, ids []int64) (*ExportFile, *rest.ApiErr)

	// Import applies a previously exported file. Rows fail individually; a
	// row without a product id is recorded as "Missing product ID" and the
	// rest of the file still runs.
	Import(ctx context.Context, format string, r io.Reader) (*ImportResult, *rest.ApiErr)
}

type svc struct {
	catalog catalog
	audit   audit.Service
	logger  *zap.Logger
}

func NewService(catalog catalog, auditService audit.Service, logger *zap.Logger) Service {
	return &svc{catalog: catalog, audit: auditService, logger: logger}
}

func normalizeFormat(format string) string {
	switch format {
	case "", FormatCSV:
		return FormatCSV
	case FormatJSON:
		return FormatJSON
	case FormatExcel, "xlsx":
		return FormatExcel
	default:
		return ""
	}
}

func (s *svc) Export(ctx context.Context, format string, ids []int64) (*ExportFile, *rest.ApiErr) {
	format = normalizeFormat(format)
	if format == "" {
		return nil, rest.NewBadRequestError("unsupported export format")
	}

	list, apiErr := s.collect(ctx, ids)
	if apiErr != nil {
		return nil, apiErr
	}

	records := make([]Record, 0, len(list))
	for _, p := range list {
		records = append(records, recordFrom(p))
	}

	var (
		data        []byte
		err         error
		ext         string
		contentType string
	)
	switch format {
	case FormatCSV:
		data, err = encodeCSV(records)
		ext, contentType = "csv", "text/csv"
	case FormatJSON:
		data, err = encodeJSON(records)
		ext, contentType = "json", "application/json"
	case FormatExcel:
		data, err = encodeXLSX(records)
		ext, contentType = "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		s.logger.Error("failed to encode export", zap.String("format", format), zap.Error(err))
		return nil, rest.NewInternalServerError("failed to generate export file")
	}

	s.audit.Log(ctx, audit.ActionExportProducts, audit.ObjectProduct, 0, nil,
		fmt.Sprintf("format=%s products=%d", format, len(records)))

	return &ExportFile{
		Filename:    fmt.Sprintf("products-%s.%s", time.Now().Format("2006-01-02"), ext),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (s *svc) collect(ctx context.Context, ids []int64) ([]products.Product, *rest.ApiErr) {
	if len(ids) > 0 {
		list := make([]products.Product, 0, len(ids))
		for _, id := range ids {
			p, apiErr := s.catalog.Get(ctx, id)
			if apiErr != nil {
				if apiErr.Code == http.StatusNotFound {
					s.logger.Warn("skipping unknown product in export", zap.Int64("product_id", id))
					continue
				}
				return nil, apiErr
			}
			list = append(list, *p)
		}
		return list, nil
	}

	var list []products.Product
	filter := products.ListFilter{Status: "any", Page: 1, PageSize: exportPageSize}
	for {
		page, apiErr := s.catalog.List(ctx, filter)
		if apiErr != nil {
			return nil, apiErr
		}
		if len(page.Products) == 0 {
			return list, nil
		}
		list = append(list, page.Products...)
		filter.Page++
	}
}

func (s *svc) Import(ctx context.Context, format string, r io.Reader) (*ImportResult, *rest.ApiErr) {
	format = normalizeFormat(format)
	if format == "" {
		return nil, rest.NewBadRequestError("unsupported import format")
	}

	var (
		records []Record
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = decodeCSV(r)
	case FormatJSON:
		records, err = decodeJSON(r)
	case FormatExcel:
		records, err = decodeXLSX(r)
	}
	if err != nil {
		s.logger.Error("failed to parse import file", zap.String("format", format), zap.Error(err))
		return nil, rest.NewBadRequestError("failed to parse import file: " + err.Error())
	}

	// CSV and XLSX rows sit under a header, so the first record is row 2.
	// JSON has no header; its first element is row 1.
	rowOffset := 2
	if format == FormatJSON {
		rowOffset = 1
	}

	result := &ImportResult{Errors: make([]ImportError, 0)}
	for i, record := range records {
		rowNum := i + rowOffset

		id := parser.ProductID(record.ID)
		if id == 0 {
			result.Failed++
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Message: "Missing product ID"})
			continue
		}

		if _, apiErr := s.catalog.Update(ctx, id, updateFrom(record)); apiErr != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Message: apiErr.Message})
			continue
		}
		result.Success++
	}

	s.audit.Log(ctx, audit.ActionImportProducts, audit.ObjectProduct, 0, nil, result)
	return result, nil
}
