package usecase

import (
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

// Las tostiones, mezclas y ventas se registran con inventory.TraceabilityUseCase porque mueven
// el ledger. Aquí solo se consultan.

// RoastQueries consulta tostiones.
type RoastQueries struct {
	reader[*entity.RoastEvent]
}

func NewRoastQueries(store repository.Store) *RoastQueries {
	return &RoastQueries{reader[*entity.RoastEvent]{store: store, repo: repository.Tx.Roasts}}
}

// BlendQueries consulta mezclas.
type BlendQueries struct {
	reader[*entity.BlendEvent]
}

func NewBlendQueries(store repository.Store) *BlendQueries {
	return &BlendQueries{reader[*entity.BlendEvent]{store: store, repo: repository.Tx.Blends}}
}

// SaleQueries consulta ventas.
type SaleQueries struct {
	reader[*entity.Sale]
}

func NewSaleQueries(store repository.Store) *SaleQueries {
	return &SaleQueries{reader[*entity.Sale]{store: store, repo: repository.Tx.Sales}}
}
