package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"web3-dashboard/chain"
	"web3-dashboard/config"
	"web3-dashboard/handlers"
	"web3-dashboard/middleware"
	"web3-dashboard/services"
	"web3-dashboard/utils"
	"web3-dashboard/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "web3-dashboard",
		Short:         "Wallet dashboard API: wallet data, delegation confirmations, token transfers and the blog demo",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load the blog demo posts and comments into an empty database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context())
		},
	})

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of every table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), output)
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of the snapshot sink")
	root.AddCommand(exportCmd)

	return root
}

// bootstrap loads config, logger and the migrated database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := services.OpenDatabase(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}

func snapshotSink(ctx context.Context, cfg *config.Config, logger *zap.Logger) (workers.SnapshotSink, error) {
	if cfg.R2Enabled() {
		uploader, err := utils.NewR2Uploader(ctx, cfg.CloudflareAccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret, cfg.R2Bucket)
		if err != nil {
			return nil, err
		}
		logger.Info("☁️  [SNAPSHOT] Uploading snapshots to R2", zap.String("bucket", cfg.R2Bucket))
		return uploader, nil
	}
	logger.Info("📁 [SNAPSHOT] Writing snapshots to disk", zap.String("dir", cfg.SnapshotDir))
	return utils.DirSink{Root: cfg.SnapshotDir}, nil
}

func runSeed(ctx context.Context) error {
	_, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	_, err = services.NewBlogStore(db).Seed(ctx, logger)
	return err
}

func runExport(ctx context.Context, output string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	source := func(ctx context.Context) (*services.Snapshot, error) {
		return services.BuildSnapshot(ctx, services.NewWalletStore(db), services.NewBlogStore(db))
	}

	if output != "" {
		snap, err := source(ctx)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return err
		}
		logger.Info("✅ [EXPORT] Snapshot written", zap.String("path", output))
		return nil
	}

	sink, err := snapshotSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	_, err = workers.NewSnapshotWorker(source, sink, cfg.SnapshotInterval, logger).RunOnce(ctx)
	return err
}

func runServe(parent context.Context) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(registry)

	// Stores
	walletStore := services.NewWalletStore(db)
	blogStore := services.NewBlogStore(db)
	settings := services.NewSettingsStore(db)

	if cfg.SeedDemoData {
		if _, err := blogStore.Seed(ctx, logger); err != nil {
			logger.Error("❌ [SEED] Failed to seed demo data", zap.Error(err))
		}
	}

	// Wallet provider (optional)
	var provider chain.Provider
	if cfg.EthRPCURL != "" {
		rpcProvider, err := chain.DialProvider(ctx, cfg.EthRPCURL, logger)
		if err != nil {
			logger.Warn("⚠️ [WALLET] Wallet provider unavailable, chain features disabled", zap.Error(err))
		} else {
			defer rpcProvider.Close()
			provider = rpcProvider
		}
	} else {
		logger.Info("ℹ️  [WALLET] ETH_RPC_URL not set, chain features disabled")
	}

	var authorizer services.Authorizer
	if provider != nil {
		authorizer = services.NewDelegateAuthorizer(provider, cfg.SepoliaContractAddress, cfg.SagaContractAddress, logger)
	}

	endpoints := services.EndpointsFromConfig(cfg)

	manager, err := services.NewWalletManager(ctx, provider, settings, cfg.TokenContractAddress, cfg.TokenSymbol, logger)
	if err != nil {
		return fmt.Errorf("failed to create wallet manager: %w", err)
	}
	broker := services.NewConfirmationBroker(cfg.DelegationConfirmTimeout, metrics, logger)
	flow := services.NewDelegationFlow(broker, authorizer, endpoints, utils.HTTPClient, cfg.RequestTimeout, metrics, logger)
	client := services.NewUserDataClient(endpoints, flow, utils.HTTPClient, cfg.RequestTimeout, metrics, logger)
	client.Networks = manager
	manager.Loader = client

	walletService := services.NewWalletService(walletStore, blogStore, endpoints, utils.HTTPClient, cfg.RequestTimeout, metrics, logger)
	proxyService := services.NewProxyService(walletStore, endpoints, utils.HTTPClient, cfg.RequestTimeout, metrics, logger)
	blogService := services.NewBlogService(blogStore, logger)
	tokenService := services.NewTokenService(manager, provider, cfg.TokenContractAddress, cfg.TokenSymbol, logger)

	var openAI, gemini services.ChatModel
	if cfg.OpenAIAPIKey != "" {
		openAI = services.NewOpenAIChat(cfg.OpenAIAPIKey)
	}
	if cfg.GeminiAPIKey != "" {
		gemini = services.NewGeminiChat(cfg.GeminiAPIKey)
	}
	aiService := services.NewAIService(openAI, gemini, logger)

	app := fiber.New(fiber.Config{
		AppName:      "web3-dashboard",
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(middleware.RequestContextMiddleware(logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "network": manager.Network()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.SetupWalletRoutes(app, walletService, proxyService, client, manager, cfg.APIToken, logger)
	handlers.SetupDelegationRoutes(app, broker, cfg.APIToken, logger)
	handlers.SetupTokenRoutes(app, tokenService)
	handlers.SetupChatRoutes(app, aiService)
	handlers.SetupBlogRoutes(app, blogService)

	// Background workers
	if provider != nil {
		go workers.PollWallet(ctx, manager, cfg.WalletPollInterval, logger)
	}

	sink, err := snapshotSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("❌ [SNAPSHOT] Snapshot sink unavailable, snapshots disabled", zap.Error(err))
	} else {
		source := func(ctx context.Context) (*services.Snapshot, error) {
			return services.BuildSnapshot(ctx, walletStore, blogStore)
		}
		workers.NewSnapshotWorker(source, sink, cfg.SnapshotInterval, logger).Start(ctx)
	}

	scheduler, err := services.StartMaintenanceScheduler(broker, logger)
	if err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer scheduler.Shutdown()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	logger.Info("✅ Server running",
		zap.String("addr", "http://localhost:"+cfg.Port),
		zap.Strings("cors_origins", cfg.OriginsList()),
		zap.Bool("external_api", cfg.UseExternalAPI),
		zap.Bool("chain", provider != nil))

	select {
	case err := <-listenErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
