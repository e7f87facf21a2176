package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// csvPrinter renders totals the way the back office reads them, with
// Spanish digit grouping (1.234,56).
var csvPrinter = message.NewPrinter(language.Spanish)

func formatAmount(v float64) string {
	return csvPrinter.Sprintf("%.2f", v)
}

// OrderSummaryCSV renders the order summary as a CSV document.
func OrderSummaryCSV(rows []OrderSummaryRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write([]string{"estado", "pedidos", "total"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{row.Status, strconv.Itoa(row.Count), formatAmount(row.Total)}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DispatchSummaryCSV renders the dispatch summary as a CSV document.
func DispatchSummaryCSV(rows []DispatchSummaryRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write([]string{"estado", "despachos"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Status, strconv.Itoa(row.Count)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TopProductsCSV renders the best-seller list as a CSV document.
func TopProductsCSV(rows []TopProductRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write([]string{"producto_id", "producto", "unidades", "ingresos"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ProductID, 10),
			row.ProductName,
			strconv.Itoa(row.Units),
			formatAmount(row.Revenue),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
