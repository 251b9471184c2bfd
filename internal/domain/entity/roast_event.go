package entity

import (
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Modo de tostión: en planta propia o maquila en tostadora externa.
type RoastMode string

const (
	RoastModeInternal RoastMode = "internal"
	RoastModeExternal RoastMode = "external"
)

// RoastInput es el consumo de un ítem de grano verde en una tostión.
type RoastInput struct {
	StockItemID string          `json:"stock_item_id"`
	Weight      decimal.Decimal `json:"weight_kg"`
}

// RoastProfile agrupa las métricas del perfil de tueste (opcionales).
type RoastProfile struct {
	ChargeTempC   *decimal.Decimal `json:"charge_temp_c,omitempty"`
	DropTempC     *decimal.Decimal `json:"drop_temp_c,omitempty"`
	FirstCrackSec int              `json:"first_crack_sec,omitempty"`
	TotalTimeSec  int              `json:"total_time_sec,omitempty"`
	ColorAgtron   *decimal.Decimal `json:"color_agtron,omitempty"`
}

// RoastEvent transforma grano verde en grano tostado. Las tostiones internas y externas
// son el mismo evento; Mode y Roaster indican dónde se hizo.
type RoastEvent struct {
	ID                   string          `json:"id"`
	BatchID              string          `json:"batch_id"`
	RoastDate            time.Time       `json:"roast_date"`
	Mode                 RoastMode       `json:"mode"`
	Roaster              string          `json:"roaster,omitempty"` // operador o tostadora externa
	Inputs               []RoastInput    `json:"inputs"`
	OutputStockItemID    string          `json:"output_stock_item_id"`
	OutputWeight         decimal.Decimal `json:"output_weight_kg"`
	OperationalCostPerKg decimal.Decimal `json:"operational_cost_per_kg"` // por kg de entrada
	RecordedCostPerKg    decimal.Decimal `json:"recorded_cost_per_kg"`    // costo calculado al registrar
	Profile              RoastProfile    `json:"profile"`
	Notes                string          `json:"notes,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

func (r *RoastEvent) RecordID() string        { return r.ID }
func (r *RoastEvent) SetRecordID(id string)   { r.ID = id }
func (r *RoastEvent) BusinessDate() time.Time { return r.RoastDate }

func (r *RoastEvent) Attrs() map[string]string {
	return map[string]string{
		"mode":                 string(r.Mode),
		"batch_id":             r.BatchID,
		"output_stock_item_id": r.OutputStockItemID,
	}
}

// InputWeight es Σ peso de entrada.
func (r *RoastEvent) InputWeight() decimal.Decimal {
	total := decimal.Zero
	for _, in := range r.Inputs {
		total = total.Add(in.Weight)
	}
	return total
}

// WeightLossPct devuelve la merma porcentual de la tostión.
func (r *RoastEvent) WeightLossPct() decimal.Decimal {
	in := r.InputWeight()
	if !in.IsPositive() {
		return decimal.Zero
	}
	return in.Sub(r.OutputWeight).Div(in).Mul(hundred)
}

// Validate verifica entradas, peso de salida (sin creación de masa) y costo operativo.
func (r *RoastEvent) Validate() error {
	if r.Mode != RoastModeInternal && r.Mode != RoastModeExternal {
		return domain.NewValidationError("mode", "modo de tostión desconocido %q", r.Mode)
	}
	if len(r.Inputs) == 0 {
		return domain.NewValidationError("inputs", "la tostión necesita al menos una entrada")
	}
	seen := make(map[string]struct{}, len(r.Inputs))
	for _, in := range r.Inputs {
		if in.StockItemID == "" {
			return domain.NewValidationError("inputs.stock_item_id", "es requerido")
		}
		if _, dup := seen[in.StockItemID]; dup {
			return domain.NewValidationError("inputs.stock_item_id", "ítem repetido %s", in.StockItemID)
		}
		seen[in.StockItemID] = struct{}{}
		if err := requirePositive("inputs.weight_kg", in.Weight); err != nil {
			return err
		}
	}
	if r.OutputStockItemID == "" {
		return domain.NewValidationError("output_stock_item_id", "es requerido")
	}
	if _, self := seen[r.OutputStockItemID]; self {
		return domain.NewValidationError("output_stock_item_id", "la salida no puede ser también entrada")
	}
	if err := requirePositive("output_weight_kg", r.OutputWeight); err != nil {
		return err
	}
	if r.OutputWeight.GreaterThan(r.InputWeight()) {
		return domain.NewValidationError("output_weight_kg", "la salida (%s kg) excede la entrada (%s kg)",
			r.OutputWeight.String(), r.InputWeight().String())
	}
	if err := requireNonNegative("operational_cost_per_kg", r.OperationalCostPerKg); err != nil {
		return err
	}
	return requireNonNegative("recorded_cost_per_kg", r.RecordedCostPerKg)
}
