package worker

import (
	"context"
	"fmt"

	"github.com/dSumitabha/multi-tenant/internal/infra"

	"github.com/rs/zerolog/log"
)

// LowStockWorker notifies the operations address when a variant drops to or
// below its reorder level. Email delivery failures are logged and dropped —
// the alert is advisory, the ledger already has the truth.
type LowStockWorker struct {
	mailer *infra.Mailer
	to     string
}

func NewLowStockWorker(mailer *infra.Mailer, to string) *LowStockWorker {
	return &LowStockWorker{mailer: mailer, to: to}
}

func (w *LowStockWorker) Handle(ctx context.Context, alert LowStockAlert) {
	log.Info().
		Str("sku", alert.SKU).
		Int("stock", alert.Stock).
		Int("reorder_level", alert.ReorderLevel).
		Msg("low stock alert")

	if w.mailer == nil || w.to == "" {
		return
	}

	subject := fmt.Sprintf("Low stock: %s (%s)", alert.ProductName, alert.SKU)
	body := fmt.Sprintf(
		"Variant %s of product %q is down to %d units (reorder level %d).\n\nProduct: %s\nVariant: %s\n",
		alert.SKU, alert.ProductName, alert.Stock, alert.ReorderLevel,
		alert.ProductID, alert.VariantID,
	)
	if err := w.mailer.Send(w.to, subject, body); err != nil {
		log.Error().Err(err).Str("sku", alert.SKU).Msg("failed to send low-stock alert email")
	}
}
