package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/dcseguramedina/billed-server/internal/bills"
	"github.com/dcseguramedina/billed-server/internal/config"
	httpadapter "github.com/dcseguramedina/billed-server/internal/interfaces/http"
	"github.com/dcseguramedina/billed-server/internal/navigation"
	"github.com/dcseguramedina/billed-server/internal/newbill"
	"github.com/dcseguramedina/billed-server/internal/repository"
	"github.com/dcseguramedina/billed-server/internal/session"
	"github.com/dcseguramedina/billed-server/internal/store"
	"github.com/dcseguramedina/billed-server/pkg/database"
	"github.com/dcseguramedina/billed-server/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Billed expense-report server",
		zap.Int("port", cfg.Server.Port),
		zap.String("store_url", cfg.Store.BaseURL))

	if err := os.MkdirAll("data", 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	journal, err := repository.NewSubmissionJournal(db, logger)
	if err != nil {
		logger.Fatal("Failed to initialize submission journal", zap.Error(err))
	}

	billStore := store.NewClient(store.Config{
		BaseURL: cfg.Store.BaseURL,
		Timeout: cfg.Store.Timeout,
	}, logger)

	sessionProvider := session.NewFileProvider(cfg.Session.Path)

	navigator := &logNavigator{logger: logger}
	viewer := &logViewer{logger: logger}

	presenter := bills.NewPresenter(billStore, navigator, viewer, logger)
	validatorFactory := func() *newbill.Validator {
		return newbill.NewValidator(billStore, sessionProvider, journal, navigator, cfg.Upload.Timeout, logger)
	}

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		MaxUploadSize: cfg.Upload.MaxFileSize,
	}, presenter, validatorFactory, sessionProvider, journal, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// logNavigator records navigation requests; the actual page change belongs to
// the client, which follows the redirect in the HTTP response.
type logNavigator struct {
	logger *zap.Logger
}

func (n *logNavigator) Navigate(route navigation.Route) {
	n.logger.Info("Navigation requested",
		zap.String("route", string(route)),
		zap.String("hash", route.Hash()))
}

// logViewer records attachment modal requests; rendering the modal belongs to
// the client.
type logViewer struct {
	logger *zap.Logger
}

func (v *logViewer) ShowAttachment(fileURL string) {
	v.logger.Info("Attachment modal requested", zap.String("file_url", fileURL))
}
