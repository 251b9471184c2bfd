package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/application/ports"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/lineage"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/pkg/logger"
	"github.com/jhoicas/cafetal-api/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	insightsTimeout     = 30 * time.Second
	insightsRecentSales = 10
)

// Umbral fijo de stock bajo cuando la variedad no tiene alerta configurada.
var defaultLowStockKg = decimal.NewFromInt(50)

const insightsSystemPrompt = `Eres un analista de negocio senior de una tostaduría de café de especialidad en Indonesia.
Todos los montos están en Rupiah (IDR) y las cantidades en kilogramos.
Con los datos que recibes, entrega un análisis breve en markdown con estas secciones:
1. Salud del inventario: variedades con stock bajo y riesgo de quiebre.
2. Desempeño de ventas: variedad o cliente que más vende y tendencia reciente.
3. Sugerencia de mezcla: una mezcla posible con el stock actual y su racional de costo.
4. Alertas operativas: órdenes de compra pendientes y cualquier riesgo de caja.
Sé concreto, usa cifras de los datos y no inventes información que no esté en ellos.`

// InsightsUseCase arma el contexto del negocio desde el store y pide el análisis al LLM.
// Aplica su propio timeout a la llamada externa.
type InsightsUseCase struct {
	store         repository.Store
	llm           ports.LLMService
	replenishment *inventory.ReplenishmentUseCase
	log           *logger.Logger
	now           func() time.Time
}

// NewInsightsUseCase construye el caso de uso. llm puede ser nil: en ese caso BusinessInsights
// devuelve domain.ErrLLMUnavailable.
func NewInsightsUseCase(store repository.Store, llm ports.LLMService, log *logger.Logger) *InsightsUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &InsightsUseCase{
		store:         store,
		llm:           llm,
		replenishment: inventory.NewReplenishmentUseCase(store),
		log:           log.Component("insights"),
		now:           time.Now,
	}
}

// BusinessInsights devuelve el análisis del negocio generado por el LLM configurado.
func (uc *InsightsUseCase) BusinessInsights(ctx context.Context) (*dto.BusinessInsightsDTO, error) {
	if uc.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	prompt, err := uc.BuildContext(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, insightsTimeout)
	defer cancel()

	start := time.Now()
	text, err := uc.llm.GenerateInsights(ctx, insightsSystemPrompt, prompt)
	if err != nil {
		uc.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("análisis IA falló")
		return nil, fmt.Errorf("análisis IA: %w: %w", domain.ErrLLMUnavailable, err)
	}
	uc.log.Info().Dur("elapsed", time.Since(start)).Int("prompt_bytes", len(prompt)).Msg("análisis IA generado")
	return &dto.BusinessInsightsDTO{Insights: text, GeneratedAt: uc.now().UTC()}, nil
}

// BuildContext arma el texto con inventario, ventas recientes, órdenes activas y alertas.
func (uc *InsightsUseCase) BuildContext(ctx context.Context) (string, error) {
	alerts, err := uc.replenishment.LowStockAlerts(ctx)
	if err != nil {
		return "", fmt.Errorf("insights: alertas de stock: %w", err)
	}

	var sb strings.Builder
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		if err := writeInventory(ctx, &sb, tx); err != nil {
			return err
		}
		if err := writeRecentSales(ctx, &sb, tx); err != nil {
			return err
		}
		return writeActiveOrders(ctx, &sb, tx)
	})
	if err != nil {
		return "", fmt.Errorf("insights: contexto: %w", err)
	}

	if len(alerts) > 0 {
		sb.WriteString("\n## Alertas de stock configuradas\n")
		for _, a := range alerts {
			fmt.Fprintf(&sb, "- %s %s: %s (umbral %s, sugerido %s)\n",
				a.Variety, a.Kind, money.Kg(a.CurrentKg), money.Kg(a.ThresholdKg), money.Kg(a.SuggestedKg))
		}
	}
	return sb.String(), nil
}

// writeInventory lista el stock con su costo base. Los ítems sin alerta configurada se marcan
// como stock bajo por debajo de 50 kg.
func writeInventory(ctx context.Context, sb *strings.Builder, tx repository.Tx) error {
	items, err := tx.Stock().List(ctx, repository.Filter{})
	if err != nil {
		return err
	}
	settings, err := tx.AlertSettings().List(ctx, repository.Filter{})
	if err != nil {
		return err
	}
	configured := map[string]bool{}
	for _, a := range settings {
		configured[string(a.Variety)+"/"+string(a.Kind)] = true
	}

	resolver := lineage.NewResolver(tx)
	sb.WriteString("## Inventario actual\n")
	if len(items) == 0 {
		sb.WriteString("- (sin ítems de stock)\n")
	}
	for _, it := range items {
		cost := "costo sin trazabilidad"
		if it.Quantity.IsPositive() {
			c, err := resolver.CostBasis(ctx, it.ID)
			switch {
			case err == nil:
				cost = money.Rupiah(c) + "/kg"
			case !errors.Is(err, domain.ErrBrokenLineage):
				return err
			}
		} else {
			cost = "sin existencias"
		}
		flag := ""
		if !configured[string(it.Variety)+"/"+string(it.Kind)] && it.Quantity.LessThan(defaultLowStockKg) {
			flag = " [STOCK BAJO]"
		}
		fmt.Fprintf(sb, "- %s %s en %s: %s, %s%s\n",
			it.Variety, kindName(it.Kind), it.Location, money.Kg(it.Quantity), cost, flag)
	}
	return nil
}

func writeRecentSales(ctx context.Context, sb *strings.Builder, tx repository.Tx) error {
	sales, err := tx.Sales().List(ctx, repository.Filter{})
	if err != nil {
		return err
	}
	if len(sales) > insightsRecentSales {
		sales = sales[len(sales)-insightsRecentSales:]
	}
	fmt.Fprintf(sb, "\n## Últimas %d ventas\n", len(sales))
	for i := len(sales) - 1; i >= 0; i-- {
		s := sales[i]
		kg := decimal.Zero
		for _, l := range s.Lines {
			kg = kg.Add(l.Quantity)
		}
		fmt.Fprintf(sb, "- %s %s: %s, %s (%s)\n",
			s.SaleDate.Format("2006-01-02"), s.Customer, money.Kg(kg), money.Rupiah(s.Revenue()), s.PaymentStatus)
	}
	return nil
}

func writeActiveOrders(ctx context.Context, sb *strings.Builder, tx repository.Tx) error {
	sb.WriteString("\n## Órdenes de compra activas\n")
	n := 0
	for _, status := range []entity.PurchaseOrderStatus{entity.POStatusPending, entity.POStatusApproved} {
		orders, err := tx.PurchaseOrders().List(ctx, repository.Filter{Attrs: map[string]string{"status": string(status)}})
		if err != nil {
			return err
		}
		for _, po := range orders {
			n++
			varieties := make([]string, 0, len(po.LineItems))
			for _, l := range po.LineItems {
				varieties = append(varieties, fmt.Sprintf("%s %s", l.Variety, money.Kg(l.Outstanding())))
			}
			fmt.Fprintf(sb, "- %s (%s) proveedor %s: %s; pendiente: %s\n",
				po.OrderDate.Format("2006-01-02"), po.Status, po.SupplierID, money.Rupiah(po.Total()), strings.Join(varieties, ", "))
		}
	}
	if n == 0 {
		sb.WriteString("- (ninguna)\n")
	}
	return nil
}

func kindName(k entity.StockKind) string {
	if k == entity.KindGreenBean {
		return "verde"
	}
	return "tostado"
}
