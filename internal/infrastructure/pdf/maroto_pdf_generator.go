// Package pdf genera el reporte HPP (harga pokok produksi) de un ítem de stock con su
// árbol de trazabilidad.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Ítem (tipo, variedad, ubicación) │ Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Saldo | Costo/kg | Valor                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  HPP: Empaque | Tamaño | Costo empaque | HPP/paquete | /kg   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TRAZABILIDAD: árbol origen → insumos con costo por nivel    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MOVIMIENTOS: Seq | Fecha | Origen | Delta | Saldo           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/domain/lineage"
	"github.com/jhoicas/cafetal-api/pkg/money"
)

// Profundidad máxima del árbol impreso; niveles más profundos se resumen.
const maxTreeDepth = 6

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 92, Green: 58, Blue: 33}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.ReportGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa inventory.ReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador; company aparece como autor del documento.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// CostReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) CostReportPDF(_ context.Context, rep *inventory.CostReport) ([]byte, error) {
	if rep == nil || rep.Item == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte HPP "+rep.Item.ID, true).
		WithAuthor(nonEmpty(g.company, "cafetal-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if len(rep.Packaging) > 0 {
		m.AddRows(sectionTitle("HPP POR PRESENTACIÓN"))
		m.AddRows(packagingHeaderRow())
		m.AddRows(packagingRows(rep.Packaging)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}

	m.AddRows(sectionTitle("TRAZABILIDAD DE COSTO"))
	m.AddRows(lineageRows(rep.Lineage, 0)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("MOVIMIENTOS"))
	m.AddRows(ledgerHeaderRow())
	m.AddRows(ledgerRows(rep)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: descripción del ítem (izq) y fecha de generación (der).
func headerRow(rep *inventory.CostReport) core.Row {
	item := rep.Item
	return row.New(18).Add(
		col.New(8).Add(
			text.New(fmt.Sprintf("%s · %s", strings.ToUpper(string(item.Variety)), kindLabel(string(item.Kind))), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Ítem: "+item.ID+"   |   Ubicación: "+nonEmpty(item.Location, "—"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("REPORTE HPP", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// summaryRow: saldo, costo por kg y valor del inventario.
func summaryRow(rep *inventory.CostReport) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 5, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("SALDO", money.Kg(rep.Item.Quantity)),
		cell("COSTO POR KG", money.Rupiah(rep.CostPerKg)),
		cell("VALOR", money.Rupiah(rep.Value)),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

// tableHeader arma una fila de cabecera con columnas (etiqueta, ancho).
func tableHeader(cols ...headerCol) core.Row {
	out := make([]core.Col, 0, len(cols))
	for _, c := range cols {
		out = append(out, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(out...)
}

type headerCol struct {
	label string
	size  int
	align align.Type
}

func packagingHeaderRow() core.Row {
	return tableHeader(
		headerCol{"Presentación", 4, align.Left},
		headerCol{"Tamaño", 2, align.Right},
		headerCol{"Empaque", 2, align.Right},
		headerCol{"HPP / paquete", 2, align.Right},
		headerCol{"HPP / kg", 2, align.Right},
	)
}

func packagingRows(items []inventory.PackagingCost) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, p := range items {
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(p.Packaging.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money.Kg(p.Packaging.SizeKg), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money.Rupiah(p.Economics.PackagingCost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money.Rupiah(p.Economics.CostPerPackage), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money.Rupiah(p.Economics.CostPerKg), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// lineageRows imprime el árbol con sangría por nivel: una fila por entrada de origen.
func lineageRows(node *lineage.Node, depth int) []core.Row {
	if node == nil {
		return nil
	}
	indent := float64(depth) * 5
	rows := []core.Row{row.New(6).Add(col.New(12).Add(text.New(
		fmt.Sprintf("%s  —  %s/kg (saldo %s)", node.StockItemID, money.Rupiah(node.CostPerKg), money.Kg(node.Balance)),
		props.Text{Style: fontstyle.Bold, Size: 8, Left: indent, Top: 1},
	)))}
	if depth >= maxTreeDepth {
		return append(rows, row.New(5).Add(col.New(12).Add(text.New("…", props.Text{
			Size: 7, Left: indent + 5, Color: colorGray,
		}))))
	}
	for _, src := range node.Sources {
		cost := "sin costo (excluido)"
		if src.CostPerKg != nil {
			cost = money.Rupiah(*src.CostPerKg) + "/kg"
		}
		rows = append(rows, row.New(5).Add(col.New(12).Add(text.New(
			fmt.Sprintf("#%d %s  +%s  %s", src.Seq, src.Origin.String(), money.Kg(src.Quantity), cost),
			props.Text{Size: 7, Left: indent + 5, Color: colorGray, Top: 0.5},
		))))
		for _, in := range src.Inputs {
			rows = append(rows, lineageRows(in, depth+1)...)
		}
	}
	return rows
}

func ledgerHeaderRow() core.Row {
	return tableHeader(
		headerCol{"Seq", 1, align.Center},
		headerCol{"Fecha", 2, align.Left},
		headerCol{"Origen", 5, align.Left},
		headerCol{"Delta", 2, align.Right},
		headerCol{"Saldo", 2, align.Right},
	)
}

func ledgerRows(rep *inventory.CostReport) []core.Row {
	result := make([]core.Row, 0, len(rep.Ledger))
	for _, e := range rep.Ledger {
		origin := e.Origin.String()
		if e.Correcting {
			origin += " (corrección)"
		}
		result = append(result, row.New(6).Add(
			col.New(1).Add(text.New(fmt.Sprint(e.Seq), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(e.OccurredAt.Format("02/01/2006"), props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(5).Add(text.New(origin, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money.Kg(e.Delta), props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money.Kg(e.BalanceAfter), props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func kindLabel(kind string) string {
	switch kind {
	case "green_bean":
		return "Grano verde"
	case "roasted_bean":
		return "Grano tostado"
	default:
		return kind
	}
}
