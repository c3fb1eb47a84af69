package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

func encodeCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gocsv.Marshal(&records, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeCSV(r io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// jsonPricing nests the dynamic-pricing columns the way API consumers expect
// them, instead of the flat spreadsheet layout.
type jsonPricing struct {
	Enabled      string `json:"enabled"`
	CurrencyType string `json:"currency_type,omitempty"`
	BasePrice    string `json:"base_price,omitempty"`
	Markup       string `json:"markup,omitempty"`
	MarkupType   string `json:"markup_type,omitempty"`
}

type jsonRecord struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	SKU            string      `json:"sku"`
	Type           string      `json:"type"`
	RegularPrice   string      `json:"regular_price"`
	SalePrice      string      `json:"sale_price,omitempty"`
	StockQuantity  string      `json:"stock_quantity"`
	StockStatus    string      `json:"stock_status"`
	Weight         string      `json:"weight,omitempty"`
	Length         string      `json:"length,omitempty"`
	Width          string      `json:"width,omitempty"`
	Height         string      `json:"height,omitempty"`
	DynamicPricing jsonPricing `json:"dynamic_pricing"`
}

func toJSONRecord(r Record) jsonRecord {
	return jsonRecord{
		ID:            r.ID,
		Name:          r.Name,
		SKU:           r.SKU,
		Type:          r.Type,
		RegularPrice:  r.RegularPrice,
		SalePrice:     r.SalePrice,
		StockQuantity: r.StockQuantity,
		StockStatus:   r.StockStatus,
		Weight:        r.Weight,
		Length:        r.Length,
		Width:         r.Width,
		Height:        r.Height,
		DynamicPricing: jsonPricing{
			Enabled:      r.DynamicPricing,
			CurrencyType: r.CurrencyType,
			BasePrice:    r.BasePrice,
			Markup:       r.Markup,
			MarkupType:   r.MarkupType,
		},
	}
}

func fromJSONRecord(j jsonRecord) Record {
	return Record{
		ID:             j.ID,
		Name:           j.Name,
		SKU:            j.SKU,
		Type:           j.Type,
		RegularPrice:   j.RegularPrice,
		SalePrice:      j.SalePrice,
		StockQuantity:  j.StockQuantity,
		StockStatus:    j.StockStatus,
		Weight:         j.Weight,
		Length:         j.Length,
		Width:          j.Width,
		Height:         j.Height,
		DynamicPricing: j.DynamicPricing.Enabled,
		CurrencyType:   j.DynamicPricing.CurrencyType,
		BasePrice:      j.DynamicPricing.BasePrice,
		Markup:         j.DynamicPricing.Markup,
		MarkupType:     j.DynamicPricing.MarkupType,
	}
}

func encodeJSON(records []Record) ([]byte, error) {
	out := make([]jsonRecord, 0, len(records))
	for _, r := range records {
		out = append(out, toJSONRecord(r))
	}
	return json.MarshalIndent(out, "", "  ")
}

func decodeJSON(r io.Reader) ([]Record, error) {
	var in []jsonRecord
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(in))
	for _, j := range in {
		records = append(records, fromJSONRecord(j))
	}
	return records, nil
}

const sheetName = "Products"

func encodeXLSX(records []Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyleID, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", lastCol, headerStyleID)

	// Keep the header visible while scrolling.
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for rowIdx, record := range records {
		for colIdx, value := range record.values() {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Columns are matched by header name so column order does not matter.
	colFor := map[string]int{}
	for i, h := range rows[0] {
		colFor[strings.TrimSpace(h)] = i
	}

	cell := func(row []string, header string) string {
		idx, ok := colFor[header]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		records = append(records, Record{
			ID:             cell(row, "ID"),
			Name:           cell(row, "Name"),
			SKU:            cell(row, "SKU"),
			Type:           cell(row, "Type"),
			RegularPrice:   cell(row, "Regular Price"),
			SalePrice:      cell(row, "Sale Price"),
			StockQuantity:  cell(row, "Stock Quantity"),
			StockStatus:    cell(row, "Stock Status"),
			Weight:         cell(row, "Weight"),
			Length:         cell(row, "Length"),
			Width:          cell(row, "Width"),
			Height:         cell(row, "Height"),
			DynamicPricing: cell(row, "Dynamic Pricing"),
			CurrencyType:   cell(row, "Currency Type"),
			BasePrice:      cell(row, "Base Price"),
			Markup:         cell(row, "Markup"),
			MarkupType:     cell(row, "Markup Type"),
		})
	}
	return records, nil
}
