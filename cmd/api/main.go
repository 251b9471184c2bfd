package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	appanalytics "github.com/jhoicas/cafetal-api/internal/application/analytics"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/application/ports"
	"github.com/jhoicas/cafetal-api/internal/application/usecase"
	infraai "github.com/jhoicas/cafetal-api/internal/infrastructure/ai"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/cafetal-api/internal/infrastructure/pdf"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/cafetal-api/internal/interfaces/http"
	"github.com/jhoicas/cafetal-api/pkg/config"
	"github.com/jhoicas/cafetal-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("abrir Record Store")
	}
	defer closeStore()

	var prom *metrics.Prometheus
	var traceMetrics inventory.Metrics
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus()
		traceMetrics = prom
	}

	llm := newLLM(cfg.AI, log)

	traceUC := inventory.NewTraceabilityUseCase(store, log, traceMetrics)
	deps := httpRouter.RouterDeps{
		ServiceName:    cfg.App.Name,
		Log:            log,
		Traceability:   traceUC,
		Replenishment:  inventory.NewReplenishmentUseCase(store),
		Reports:        infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
		Stock:          usecase.NewStockUseCase(store),
		Suppliers:      usecase.NewSupplierUseCase(store),
		PurchaseOrders: usecase.NewPurchaseOrderUseCase(store, log),
		Grades:         usecase.NewGradeUseCase(store),
		Cuppings:       usecase.NewCuppingUseCase(store),
		Packaging:      usecase.NewPackagingUseCase(store),
		AlertSettings:  usecase.NewAlertSettingUseCase(store),
		Expenses:       usecase.NewExpenseUseCase(store),
		Tasks:          usecase.NewTaskUseCase(store),
		Roasts:         usecase.NewRoastQueries(store),
		Blends:         usecase.NewBlendQueries(store),
		Sales:          usecase.NewSaleQueries(store),
		Dashboard:      appanalytics.NewDashboardUseCase(store),
		Insights:       appanalytics.NewInsightsUseCase(store, llm, log),
	}
	if prom != nil {
		deps.Metrics = prom
	}

	app := httpRouter.NewApp(cfg.App.Name)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Cafetal API",
		}))
	}

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// newLLM devuelve el proveedor de IA configurado, o nil si el análisis está deshabilitado.
func newLLM(cfg config.AIConfig, log *logger.Logger) ports.LLMService {
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Warn().Msg("AI_PROVIDER=anthropic sin ANTHROPIC_API_KEY: análisis IA deshabilitado")
			return nil
		}
		return infraai.NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("AI_PROVIDER=gemini sin GEMINI_API_KEY: análisis IA deshabilitado")
			return nil
		}
		return infraai.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
	case "":
		log.Info().Msg("análisis IA deshabilitado")
		return nil
	default:
		log.Warn().Str("provider", cfg.Provider).Msg("AI_PROVIDER desconocido: análisis IA deshabilitado")
		return nil
	}
}
