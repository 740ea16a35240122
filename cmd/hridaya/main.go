package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/hridaya/internal/api"
	"github.com/terraincognita07/hridaya/internal/cli"
	"github.com/terraincognita07/hridaya/internal/config"
	"github.com/terraincognita07/hridaya/internal/db"
	"github.com/terraincognita07/hridaya/internal/i18n"
	"github.com/terraincognita07/hridaya/internal/llm"
	"github.com/terraincognita07/hridaya/internal/services"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hridaya",
		Short:         "Contemplative practice journal and experiment tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newResetPasswordCmd())
	root.AddCommand(newPracticesCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newResetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Assign a temporary password that must be changed on next login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadCommandConfig()
			if err != nil {
				return err
			}
			return cli.RunResetPasswordCommand(cmd.Context(), cfg.DBPath, args[0], cmd.OutOrStdout())
		},
	}
}

func newPracticesCmd() *cobra.Command {
	var language string

	command := &cobra.Command{
		Use:   "practices",
		Short: "Print the practice catalog grouped by curriculum node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadCommandConfig()
			if err != nil {
				return err
			}
			if language == "" {
				language = cfg.DefaultLanguage
			}

			catalog, err := services.DefaultPracticeCatalog()
			if err != nil {
				return err
			}
			messages, err := i18n.NewDefaultManager(cfg.DefaultLanguage)
			if err != nil {
				return err
			}
			return cli.RunPracticesCommand(catalog, messages, language, cmd.OutOrStdout())
		},
	}
	command.Flags().StringVar(&language, "lang", "", "label language (en or ru)")
	return command
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	time.Local = cfg.Location

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	app, err := newApp(cfg, database)
	if err != nil {
		return err
	}
	if !cfg.LLM.Enabled() {
		log.Printf("ANTHROPIC_API_KEY is not set, chat requests will fail")
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Hridaya listening on http://0.0.0.0:%s (db: %s, tz: %s)", cfg.Port, cfg.DBPath, cfg.Location.String())
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(cfg config.Config, database *gorm.DB) (*fiber.App, error) {
	i18nManager, err := i18n.NewDefaultManager(cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}
	catalog, err := services.DefaultPracticeCatalog()
	if err != nil {
		return nil, fmt.Errorf("practice catalog init failed: %w", err)
	}

	var observer llm.Observer
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(os.Stderr)
	}
	chatClient := llm.NewMessagesClient(cfg.LLM, observer)

	handler, err := api.NewHandler(database, cfg.SecretKey, cfg.Location, i18nManager, catalog, chatClient, cfg.CookieSecure)
	if err != nil {
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Hridaya",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(handler.LanguageMiddleware)
	api.RegisterRoutes(app, handler)
	return app, nil
}
