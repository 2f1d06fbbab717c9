// Package pdf genera el informe imprimible de giacenze de magazzino.
//
// Layout de la página A4:
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del magazzino         │  Fecha de generación         │
//	│  ──────────────────────────────────────────────────────────────────  │
//	│  TABLA: Artículo | Imballo | Giorni | Giacenza | Costo | Listini | Valore │
//	│  ──────────────────────────────────────────────────────────────────  │
//	│  TOTALES: piezas y valorización al costo landed                      │
//	└──────────────────────────────────────────────────────────────────────┘
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
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
)

var _ inventory.StockReportGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 34, Green: 94, Blue: 58}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRetired = &props.Color{Red: 160, Green: 160, Blue: 160}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.StockReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	title   string
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. title encabeza cada informe (nombre del magazzino).
func NewMarotoPDFGenerator(title string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{title: title, printer: message.NewPrinter(language.Italian)}
}

// GenerateStockReport genera el PDF y devuelve sus bytes. Los importes se redondean a 2 decimales
// solo aquí: la valorización se calcula con la precisión completa del costo landed.
func (g *MarotoPDFGenerator) GenerateStockReport(_ context.Context, rep inventory.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Giacenze magazzino", true).
		WithAuthor(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range rep.Rows {
		m.AddRows(g.detailRow(r))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(rep))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(rep inventory.StockReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(g.title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("GIACENZE DI MAGAZZINO", props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generato il "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
			text.New(fmt.Sprintf("%d lotti", len(rep.Rows)), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Articolo", 4, align.Left),
		h("Imb.", 1, align.Center),
		h("Gg", 1, align.Center),
		h("Giacenza", 1, align.Right),
		h("Costo", 1, align.Right),
		h("Listini 1 / 2 / 3", 2, align.Right),
		h("Valore", 2, align.Right),
	)
}

func (g *MarotoPDFGenerator) detailRow(r inventory.StockRow) core.Row {
	v := r.View
	style := props.Text{Size: 7.5, Top: 1}
	if v.Retired {
		style.Color = colorRetired
	}
	cell := func(s string, a align.Type) core.Component {
		p := style
		p.Align = a
		p.Left, p.Right = 1, 1
		return text.New(s, p)
	}
	prices := make([]string, 0, 3)
	for _, p := range v.Prices {
		prices = append(prices, g.money(p))
	}
	return row.New(6).Add(
		col.New(4).Add(cell(articleLabel(r), align.Left)),
		col.New(1).Add(cell(g.printer.Sprintf("%d", v.Lot.PackageSize), align.Center)),
		col.New(1).Add(cell(g.printer.Sprintf("%d", v.DaysInStock), align.Center)),
		col.New(1).Add(cell(g.printer.Sprintf("%d", v.Remaining), align.Right)),
		col.New(1).Add(cell(g.money(v.LandedCost), align.Right)),
		col.New(2).Add(cell(strings.Join(prices, " / "), align.Right)),
		col.New(2).Add(cell(g.money(v.Valuation), align.Right)),
	)
}

func (g *MarotoPDFGenerator) totalsRow(rep inventory.StockReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Color: colorPrimary})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label("Totale pezzi:"), label("Valore a costo:")),
		col.New(3).Add(
			value(g.printer.Sprintf("%d", rep.TotalRemaining)),
			value("€ "+g.money(rep.TotalValuation)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea un importe a 2 decimales con separadores italianos (1.234,50).
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func articleLabel(r inventory.StockRow) string {
	if r.Article == nil {
		return r.View.Lot.ArticleID
	}
	k := r.Article.Key
	parts := make([]string, 0, 5)
	for _, p := range []string{k.Group, k.Name, k.Color, k.Height, k.Quality} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
