package pipeline

import (
	"strings"
	"time"

	"github.com/cas124/media-pacing/internal/services"
)

// SalesRow is the final shape loaded into the wahs_qbo_sales table
type SalesRow struct {
	TransactionID   string  `json:"transaction_id"`
	CustomerName    string  `json:"customer_name"`
	TransactionDate string  `json:"transaction_date"`
	ProductName     string  `json:"product_name"`
	TotalAmount     float64 `json:"total_amount"`
	TransactionType string  `json:"transaction_type"`
}

// NormalizeItemName collapses runs of whitespace and lowercases, so product
// names match regardless of spacing or casing differences in QBO.
func NormalizeItemName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// FlattenTransactions explodes transactions into per-line rows and keeps only
// lines whose item matches targetClean (a NormalizeItemName'd product name).
// Lines without a sales item detail (subtotals, discounts) are skipped.
func FlattenTransactions(transactions []services.Transaction, transactionType, targetClean string) []SalesRow {
	var rows []SalesRow
	for _, txn := range transactions {
		for _, line := range txn.Line {
			if line.SalesItemLineDetail == nil {
				continue
			}

			itemName := strings.TrimSpace(line.SalesItemLineDetail.ItemRef.Name)
			if itemName == "" || NormalizeItemName(itemName) != targetClean {
				continue
			}

			rows = append(rows, SalesRow{
				TransactionID:   txn.ID,
				CustomerName:    txn.CustomerRef.Name,
				TransactionDate: normalizeDate(txn.TxnDate),
				ProductName:     itemName,
				TotalAmount:     line.Amount,
				TransactionType: transactionType,
			})
		}
	}
	return rows
}

// normalizeDate passes through valid YYYY-MM-DD dates and blanks anything
// unparseable rather than failing the whole load.
func normalizeDate(value string) string {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return ""
	}
	return value
}
