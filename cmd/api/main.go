package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appai "github.com/inventra/inventra-api/internal/application/ai"
	"github.com/inventra/inventra-api/internal/application/auth"
	"github.com/inventra/inventra-api/internal/application/catalog"
	"github.com/inventra/inventra-api/internal/application/invoicing"
	"github.com/inventra/inventra-api/internal/infrastructure/ollama"
	infrapdf "github.com/inventra/inventra-api/internal/infrastructure/pdf"
	"github.com/inventra/inventra-api/internal/infrastructure/postgres"
	httpRouter "github.com/inventra/inventra-api/internal/interfaces/http"
	"github.com/inventra/inventra-api/internal/interfaces/ws"
	"github.com/inventra/inventra-api/pkg/config"
	"github.com/inventra/inventra-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios sobre el pool (las operaciones transaccionales usan TxRunner)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	unitMeasureRepo := postgres.NewUnitMeasureRepository(pool)
	movementTypeRepo := postgres.NewMovementTypeRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Hub de websockets (notificaciones de productos + mensaje motivacional)
	hub := ws.NewHub(log)

	// Casos de uso
	authUC := auth.NewUseCase(userRepo, roleRepo, cfg.JWT, log)
	productUC := catalog.NewProductUseCase(productRepo, categoryRepo, unitMeasureRepo, hub, log)
	categoryUC := catalog.NewCategoryUseCase(categoryRepo)
	unitMeasureUC := catalog.NewUnitMeasureUseCase(unitMeasureRepo)
	movementTypeUC := catalog.NewMovementTypeUseCase(movementTypeRepo)
	invoiceUC := invoicing.NewInvoiceUseCase(txRunner, invoiceRepo, productRepo, movementTypeRepo, userRepo, log)
	invoicePDFUC := invoicing.NewInvoicePDFUseCase(invoiceRepo, infrapdf.NewMarotoPDFGenerator())

	// IA: extracción de facturas + mensaje motivacional (opcional, requiere Ollama)
	var extractionUC *appai.ExtractionUseCase
	if cfg.AI.VisionModel != "" {
		llm := ollama.NewClient(cfg.AI)
		enricher := appai.NewEnricher(productRepo, unitMeasureRepo, log)
		extractionUC = appai.NewExtractionUseCase(llm, enricher, log)

		if cfg.AI.ChatModel != "" && cfg.WS.MessageIntervalMinutes > 0 {
			motivationUC := appai.NewMotivationUseCase(llm, log)
			go hub.RunMotivationLoop(ctx, motivationUC, time.Duration(cfg.WS.MessageIntervalMinutes)*time.Minute)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    12 << 20, // margen para imágenes de facturas en base64
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventra API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		ProductUC:      productUC,
		CategoryUC:     categoryUC,
		UnitMeasureUC:  unitMeasureUC,
		MovementTypeUC: movementTypeUC,
		InvoiceUC:      invoiceUC,
		InvoicePDFUC:   invoicePDFUC,
		ExtractionUC:   extractionUC,
		Hub:            hub,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
