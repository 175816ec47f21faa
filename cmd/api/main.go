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

	"github.com/darbarboots/billing-api/internal/application/auth"
	"github.com/darbarboots/billing-api/internal/application/billing"
	infrapdf "github.com/darbarboots/billing-api/internal/infrastructure/pdf"
	"github.com/darbarboots/billing-api/internal/infrastructure/postgres"
	httpRouter "github.com/darbarboots/billing-api/internal/interfaces/http"
	"github.com/darbarboots/billing-api/pkg/config"
	"github.com/darbarboots/billing-api/pkg/logger"
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	partyRepo := postgres.NewPartyRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	returnRepo := postgres.NewReturnRepository(pool)
	challanRepo := postgres.NewChallanRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	numbers := billing.NewNumberGenerator(billing.NumberingOptions{
		PadWidth:    cfg.Numbering.PadWidth,
		DateLayout:  cfg.Numbering.DateLayout,
		MaxAttempts: cfg.Numbering.MaxGenAttempts,
	})
	aggregator := billing.NewLedgerAggregator(log)

	partyUC := billing.NewPartyUseCase(partyRepo, invoiceRepo, paymentRepo)
	invoiceUC := billing.NewInvoiceUseCase(txRunner, invoiceRepo, partyRepo, numbers, aggregator, cfg.Numbering.InvoiceSeries)
	paymentUC := billing.NewPaymentUseCase(txRunner, paymentRepo, invoiceRepo, partyRepo, numbers, aggregator, cfg.Numbering.PaymentSeries)
	returnUC := billing.NewReturnUseCase(txRunner, returnRepo, invoiceRepo, numbers, aggregator, cfg.Numbering.ReturnSeries)
	challanUC := billing.NewChallanUseCase(txRunner, challanRepo, invoiceRepo, partyRepo, numbers, cfg.Numbering.ChallanSeries)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	pdfUC := billing.NewPDFUseCase(invoiceRepo, paymentRepo, returnRepo, challanRepo, partyRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name + " API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		PartyUC:   partyUC,
		InvoiceUC: invoiceUC,
		PaymentUC: paymentUC,
		ReturnUC:  returnUC,
		ChallanUC: challanUC,
		PDFUC:     pdfUC,
		AuthUC:    authUC,
		JWTSecret: cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
