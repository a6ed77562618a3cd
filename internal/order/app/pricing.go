package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/nomino/internal/order/domain"
)

// Snapshot is the outcome of resolving every cart line against the
// catalog exactly once.
type Snapshot struct {
	Lines []domain.Line
	Total decimal.Decimal
}

func resolvePrices(ctx context.Context, catalog CatalogReader, lines []CartLine) (Snapshot, error) {
	out := make([]domain.Line, 0, len(lines))

	for _, l := range lines {
		if l.Quantity < 1 {
			return Snapshot{}, newError(KindInvalidInput, fmt.Sprintf("product %s has quantity %d", l.ProductID, l.Quantity))
		}

		item, err := catalog.GetPrice(ctx, l.ProductID)
		if errors.Is(err, ErrNotFound) {
			return Snapshot{}, newError(KindNotFound, fmt.Sprintf("product %s not found", l.ProductID))
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("price %s: %w", l.ProductID, err)
		}

		out = append(out, domain.NewLine(item.ProductID, item.Name, l.Quantity, item.Price))
	}

	return Snapshot{Lines: out, Total: domain.SumLines(out)}, nil
}
