package repository

import (
	"context"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
)

// Tx expone los repositorios atados a una transacción (o a una vista de solo lectura).
type Tx interface {
	Suppliers() Records[*entity.Supplier]
	PurchaseOrders() Records[*entity.PurchaseOrder]
	Grades() Records[*entity.GreenBeanGrade]
	Roasts() Records[*entity.RoastEvent]
	Blends() Records[*entity.BlendEvent]
	Sales() Records[*entity.Sale]
	Cuppings() Records[*entity.CuppingSession]
	Packaging() Records[*entity.Packaging]
	AlertSettings() Records[*entity.AlertSetting]
	Expenses() Records[*entity.Expense]
	Todos() Records[*entity.Todo]
	Stock() StockRepository
	Ledger() LedgerRepository
}

// Store ejecuta funciones dentro de una transacción. Run confirma si fn no devuelve error
// y revierte en caso contrario; View entrega una instantánea consistente de solo lectura.
type Store interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
}
