package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cas124/media-pacing/internal/services"
)

// SalesSource is the subset of the QuickBooks service the sales pipeline
// needs.
type SalesSource interface {
	Authenticate(ctx context.Context) (string, error)
	QueryAll(ctx context.Context, accessToken, entity string) ([]services.Transaction, error)
}

// QBOSales refreshes the wahs_qbo_sales table from QuickBooks: it pulls every
// sales receipt and invoice, keeps the line items for the target product, and
// truncate-loads the result.
type QBOSales struct {
	quickbooks    SalesSource
	bq            BigQueryWriter
	dataset       string
	table         string
	targetProduct string
}

func NewQBOSales(quickbooks SalesSource, bq BigQueryWriter, dataset, table, targetProduct string) *QBOSales {
	return &QBOSales{
		quickbooks:    quickbooks,
		bq:            bq,
		dataset:       dataset,
		table:         table,
		targetProduct: targetProduct,
	}
}

func (p *QBOSales) Name() string { return "qbo-sales" }

func (p *QBOSales) Run(ctx context.Context) (Result, error) {
	logger := zerolog.Ctx(ctx)

	accessToken, err := p.quickbooks.Authenticate(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("quickbooks authentication failed: %w", err)
	}
	logger.Info().Msg("Authentication success, starting extraction")

	receipts, err := p.quickbooks.QueryAll(ctx, accessToken, "SalesReceipt")
	if err != nil {
		return Result{}, fmt.Errorf("sales receipt fetch failed: %w", err)
	}

	invoices, err := p.quickbooks.QueryAll(ctx, accessToken, "Invoice")
	if err != nil {
		return Result{}, fmt.Errorf("invoice fetch failed: %w", err)
	}

	targetClean := NormalizeItemName(p.targetProduct)
	rows := FlattenTransactions(receipts, "Sales Receipt", targetClean)
	rows = append(rows, FlattenTransactions(invoices, "Invoice", targetClean)...)

	if len(rows) == 0 {
		logger.Warn().Str("product", p.targetProduct).Msg("No matching transactions, clearing table")
		if err := p.bq.Truncate(ctx, p.dataset, p.table); err != nil {
			return Result{}, err
		}
		return Result{Rows: 0, Message: "no matching transactions"}, nil
	}

	payload := make([]any, len(rows))
	for i := range rows {
		payload[i] = rows[i]
	}

	loaded, err := p.bq.LoadJSON(ctx, p.dataset, p.table, payload, services.WriteTruncate)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Rows:    loaded,
		Message: fmt.Sprintf("loaded %d sales rows", loaded),
	}, nil
}
