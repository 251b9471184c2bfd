package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository define el puerto para los ítems de stock.
// Update nunca modifica Quantity ni Version: solo ApplyQuantity (llamado por el ledger) lo hace.
type StockRepository interface {
	Records[*entity.StockItem]
	// GetForUpdate bloquea el ítem hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error)
	// ApplyQuantity refresca la cantidad materializada e incrementa Version.
	ApplyQuantity(ctx context.Context, id string, quantity decimal.Decimal, at time.Time) error
}
