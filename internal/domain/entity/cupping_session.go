package entity

import (
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Niveles de tueste evaluados en catación.
type RoastLevel string

const (
	RoastLevelCinnamon RoastLevel = "cinnamon"
	RoastLevelLight    RoastLevel = "light"
	RoastLevelCity     RoastLevel = "city"
	RoastLevelFullCity RoastLevel = "full_city"
	RoastLevelDark     RoastLevel = "dark"
)

// CuppingScores son los diez atributos del protocolo SCA, cada uno entre 6 y 10.
type CuppingScores struct {
	Fragrance  decimal.Decimal `json:"fragrance"`
	Flavor     decimal.Decimal `json:"flavor"`
	Aftertaste decimal.Decimal `json:"aftertaste"`
	Acidity    decimal.Decimal `json:"acidity"`
	Body       decimal.Decimal `json:"body"`
	Balance    decimal.Decimal `json:"balance"`
	Uniformity decimal.Decimal `json:"uniformity"`
	CleanCup   decimal.Decimal `json:"clean_cup"`
	Sweetness  decimal.Decimal `json:"sweetness"`
	Overall    decimal.Decimal `json:"overall"`
}

func (s CuppingScores) fields() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"fragrance": s.Fragrance, "flavor": s.Flavor, "aftertaste": s.Aftertaste,
		"acidity": s.Acidity, "body": s.Body, "balance": s.Balance,
		"uniformity": s.Uniformity, "clean_cup": s.CleanCup, "sweetness": s.Sweetness,
		"overall": s.Overall,
	}
}

// Total es Σ atributos.
func (s CuppingScores) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s.fields() {
		total = total.Add(v)
	}
	return total
}

// CuppingDefects cuenta tazas con defecto: taint resta 2 puntos, fault resta 4.
type CuppingDefects struct {
	Cups   int `json:"cups"`
	Taints int `json:"taints"`
	Faults int `json:"faults"`
}

var (
	taintPenalty = decimal.NewFromInt(2)
	faultPenalty = decimal.NewFromInt(4)
	minAttribute = decimal.NewFromInt(6)
	maxAttribute = decimal.NewFromInt(10)
)

// CuppingSession es la evaluación sensorial de una tostión.
type CuppingSession struct {
	ID           string         `json:"id"`
	RoastEventID string         `json:"roast_event_id"`
	SessionDate  time.Time      `json:"session_date"`
	RoastLevel   RoastLevel     `json:"roast_level"`
	Scores       CuppingScores  `json:"scores"`
	Defects      CuppingDefects `json:"defects"`
	Notes        string         `json:"notes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (c *CuppingSession) RecordID() string        { return c.ID }
func (c *CuppingSession) SetRecordID(id string)   { c.ID = id }
func (c *CuppingSession) BusinessDate() time.Time { return c.SessionDate }

func (c *CuppingSession) Attrs() map[string]string {
	return map[string]string{
		"roast_event_id": c.RoastEventID,
		"roast_level":    string(c.RoastLevel),
	}
}

// FinalScore = Σ atributos − 2·taints − 4·faults.
func (c *CuppingSession) FinalScore() decimal.Decimal {
	return c.Scores.Total().
		Sub(taintPenalty.Mul(decimal.NewFromInt(int64(c.Defects.Taints)))).
		Sub(faultPenalty.Mul(decimal.NewFromInt(int64(c.Defects.Faults))))
}

func (c *CuppingSession) Validate() error {
	if c.RoastEventID == "" {
		return domain.NewValidationError("roast_event_id", "es requerido")
	}
	switch c.RoastLevel {
	case RoastLevelCinnamon, RoastLevelLight, RoastLevelCity, RoastLevelFullCity, RoastLevelDark:
	default:
		return domain.NewValidationError("roast_level", "nivel de tueste desconocido %q", c.RoastLevel)
	}
	for name, v := range c.Scores.fields() {
		if v.LessThan(minAttribute) || v.GreaterThan(maxAttribute) {
			return domain.NewValidationError("scores."+name, "debe estar entre 6 y 10")
		}
	}
	d := c.Defects
	if d.Cups < 0 || d.Taints < 0 || d.Faults < 0 {
		return domain.NewValidationError("defects", "no pueden ser negativos")
	}
	if d.Taints+d.Faults > d.Cups {
		return domain.NewValidationError("defects", "taints + faults no pueden superar las tazas con defecto")
	}
	return nil
}
