package http

import (
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appanalytics "github.com/jhoicas/cafetal-api/internal/application/analytics"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/application/usecase"
	"github.com/jhoicas/cafetal-api/pkg/logger"
)

// MetricsExporter observa las peticiones y expone el endpoint /metrics.
type MetricsExporter interface {
	HTTPObserver
	Handler() nethttp.Handler
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	Log         *logger.Logger
	Metrics     MetricsExporter // nil: sin /metrics

	Traceability  *inventory.TraceabilityUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Reports       inventory.ReportGenerator

	Stock          *usecase.StockUseCase
	Suppliers      *usecase.SupplierUseCase
	PurchaseOrders *usecase.PurchaseOrderUseCase
	Grades         *usecase.GradeUseCase
	Cuppings       *usecase.CuppingUseCase
	Packaging      *usecase.PackagingUseCase
	AlertSettings  *usecase.AlertSettingUseCase
	Expenses       *usecase.ExpenseUseCase
	Tasks          *usecase.TaskUseCase
	Roasts         *usecase.RoastQueries
	Blends         *usecase.BlendQueries
	Sales          *usecase.SaleQueries

	Dashboard *appanalytics.DashboardUseCase
	Insights  *appanalytics.InsightsUseCase
}

// NewApp crea la app Fiber con los timeouts y el manejo de errores de la API.
func NewApp(name string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    1 << 20,
		ErrorHandler: ErrorHandler,
	})
	app.Use(recover.New())
	return app
}

// Router registra middlewares, health, métricas y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	if deps.Metrics != nil {
		app.Use(Metrics(deps.Metrics))
	}
	app.Use(RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Stock y trazabilidad
	stockHandler := NewStockHandler(deps.Stock, deps.Traceability)
	stock := api.Group("/stock")
	stock.Get("/", stockHandler.List)
	stock.Post("/", stockHandler.Create)
	stock.Get("/verify", stockHandler.VerifyAll)
	stock.Get("/:id", stockHandler.Get)
	stock.Patch("/:id", stockHandler.Update)
	stock.Delete("/:id", stockHandler.Delete)
	stock.Get("/:id/cost-basis", stockHandler.CostBasis)
	stock.Get("/:id/lineage", stockHandler.Lineage)
	stock.Get("/:id/ledger", stockHandler.Ledger)
	stock.Get("/:id/verify", stockHandler.Verify)
	stock.Post("/:id/adjustments", stockHandler.Adjust)
	stock.Get("/:id/unit-economics", stockHandler.UnitEconomics)
	api.Get("/ledger", stockHandler.ByOrigin)

	// Proveedores
	supplierHandler := NewSupplierHandler(deps.Suppliers)
	suppliers := api.Group("/suppliers")
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/:id", supplierHandler.Get)
	suppliers.Patch("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	// Órdenes de compra y recepción
	poHandler := NewPurchaseOrderHandler(deps.PurchaseOrders, deps.Traceability)
	orders := api.Group("/purchase-orders")
	orders.Get("/", poHandler.List)
	orders.Post("/", poHandler.Create)
	orders.Get("/:id", poHandler.Get)
	orders.Patch("/:id", poHandler.Update)
	orders.Delete("/:id", poHandler.Delete)
	orders.Post("/:id/status", poHandler.UpdateStatus)
	orders.Post("/:id/receipts", poHandler.Receive)

	// Clasificación de grano verde
	gradeHandler := NewGradeHandler(deps.Grades)
	grades := api.Group("/grades")
	grades.Get("/", gradeHandler.List)
	grades.Post("/", gradeHandler.Create)
	grades.Get("/:id", gradeHandler.Get)
	grades.Put("/:id", gradeHandler.Update)
	grades.Delete("/:id", gradeHandler.Delete)

	// Tostiones y catación
	roastHandler := NewRoastHandler(deps.Traceability, deps.Roasts)
	cuppingHandler := NewCuppingHandler(deps.Cuppings)
	roasts := api.Group("/roasts")
	roasts.Get("/", roastHandler.List)
	roasts.Post("/", roastHandler.Create)
	roasts.Get("/:id", roastHandler.Get)
	roasts.Get("/:id/audit", roastHandler.Audit)
	roasts.Get("/:id/cuppings", cuppingHandler.ByRoast)

	cuppings := api.Group("/cuppings")
	cuppings.Get("/", cuppingHandler.List)
	cuppings.Post("/", cuppingHandler.Create)
	cuppings.Get("/:id", cuppingHandler.Get)
	cuppings.Put("/:id", cuppingHandler.Update)
	cuppings.Delete("/:id", cuppingHandler.Delete)

	// Mezclas
	blendHandler := NewBlendHandler(deps.Traceability, deps.Blends)
	blends := api.Group("/blends")
	blends.Get("/", blendHandler.List)
	blends.Post("/", blendHandler.Create)
	blends.Get("/:id", blendHandler.Get)
	blends.Get("/:id/audit", blendHandler.Audit)

	// Ventas
	saleHandler := NewSaleHandler(deps.Traceability, deps.Sales)
	sales := api.Group("/sales")
	sales.Get("/", saleHandler.List)
	sales.Post("/", saleHandler.Create)
	sales.Get("/:id", saleHandler.Get)
	sales.Get("/:id/valuation", saleHandler.Valuation)

	// Catálogo: empaques, alertas y gastos
	packagingHandler := NewPackagingHandler(deps.Packaging)
	packaging := api.Group("/packaging")
	packaging.Get("/", packagingHandler.List)
	packaging.Post("/", packagingHandler.Create)
	packaging.Get("/:id", packagingHandler.Get)
	packaging.Patch("/:id", packagingHandler.Update)
	packaging.Delete("/:id", packagingHandler.Delete)

	alertHandler := NewAlertSettingHandler(deps.AlertSettings)
	alerts := api.Group("/alert-settings")
	alerts.Get("/", alertHandler.List)
	alerts.Post("/", alertHandler.Create)
	alerts.Get("/:id", alertHandler.Get)
	alerts.Patch("/:id", alertHandler.Update)
	alerts.Delete("/:id", alertHandler.Delete)

	expenseHandler := NewExpenseHandler(deps.Expenses)
	expenses := api.Group("/expenses")
	expenses.Get("/", expenseHandler.List)
	expenses.Post("/", expenseHandler.Create)
	expenses.Get("/:id", expenseHandler.Get)
	expenses.Put("/:id", expenseHandler.Update)
	expenses.Delete("/:id", expenseHandler.Delete)

	// Tareas del equipo
	taskHandler := NewTaskHandler(deps.Tasks)
	tasks := api.Group("/tasks")
	tasks.Get("/", taskHandler.List)
	tasks.Post("/", taskHandler.Create)
	tasks.Get("/overdue", taskHandler.Overdue)
	tasks.Get("/:id", taskHandler.Get)
	tasks.Put("/:id", taskHandler.Update)
	tasks.Post("/:id/status", taskHandler.UpdateStatus)
	tasks.Delete("/:id", taskHandler.Delete)

	// Analítica y dashboard
	analyticsHandler := NewAnalyticsHandler(deps.Traceability, deps.Replenishment, deps.Insights)
	analytics := api.Group("/analytics")
	analytics.Get("/cogs", analyticsHandler.COGS)
	analytics.Get("/low-stock", analyticsHandler.LowStock)
	analytics.Post("/insights", analyticsHandler.Insights)

	dashboardHandler := NewDashboardHandler(deps.Dashboard)
	api.Get("/dashboard/summary", dashboardHandler.GetSummary)

	// Reportes
	reportHandler := NewReportHandler(deps.Traceability, deps.Reports)
	api.Get("/reports/hpp/:id", reportHandler.CostReport)
}
