package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/config"
	"github.com/xxxsen/inkwell/internal/db"
	"github.com/xxxsen/inkwell/internal/handler"
	"github.com/xxxsen/inkwell/internal/job"
	"github.com/xxxsen/inkwell/internal/middleware"
	"github.com/xxxsen/inkwell/internal/repo"
	"github.com/xxxsen/inkwell/internal/schedule"
	"github.com/xxxsen/inkwell/internal/service"
	"github.com/xxxsen/inkwell/internal/suggest"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "inkwell",
		Short: "inkwell writing assistant",
	}
	rootCmd.AddCommand(newRunCmd(), newWatchCmd(), newScoreCmd(), newSuggestCmd())

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run inkwell server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			initLogger(cfg)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runServer(cfg, conn)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	return cmd
}

func initLogger(cfg *config.Config) {
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return conn, nil
}

// buildEngine assembles the suggestion engine from cfg.Suggest. withCache
// wraps it in the result cache used by long running processes.
func buildEngine(cfg *config.Config, withCache bool) (suggest.Suggester, error) {
	opts := suggest.Options{
		LongSentenceWords: cfg.Suggest.LongSentenceWords,
		Disabled:          cfg.Suggest.DisabledSources,
	}
	if cfg.Suggest.DictionaryPath != "" {
		dict, err := suggest.LoadDictionaryFile(cfg.Suggest.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		opts.Dictionary = dict
	}
	engine := suggest.NewDefault(opts)
	logutil.GetLogger(context.Background()).Debug("suggestion engine ready", zap.Strings("sources", engine.Sources()))
	if !withCache {
		return engine, nil
	}
	return suggest.WrapLRUCache(engine, cfg.Suggest.CacheSize, time.Duration(cfg.Suggest.CacheTTLSeconds)*time.Second), nil
}

type services struct {
	documents   *service.DocumentService
	versions    *service.VersionService
	suggestions *service.SuggestionService
}

func buildServices(cfg *config.Config, conn *sql.DB, engine suggest.Suggester) services {
	docRepo := repo.NewDocumentRepo(conn)
	versionRepo := repo.NewVersionRepo(conn)
	suggestionRepo := repo.NewSuggestionRepo(conn)
	return services{
		documents:   service.NewDocumentService(docRepo),
		versions:    service.NewVersionService(versionRepo, docRepo, cfg.Versions.ListLimit, cfg.Versions.MaxKeep),
		suggestions: service.NewSuggestionService(engine, suggestionRepo, docRepo),
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.Int("version_max_keep", cfg.Versions.MaxKeep),
	)

	engine, err := buildEngine(cfg, true)
	if err != nil {
		return err
	}
	svcs := buildServices(cfg, conn, engine)

	deps := handler.RouterDeps{
		Documents:   handler.NewDocumentHandler(svcs.documents),
		Versions:    handler.NewVersionHandler(svcs.versions),
		Suggestions: handler.NewSuggestionHandler(svcs.suggestions),
		Analyze:     handler.NewAnalyzeHandler(svcs.suggestions),
		JWTSecret:   []byte(cfg.JWTSecret),
		RateLimit:   time.Duration(cfg.RateLimitMS) * time.Millisecond,
	}

	web, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Versions.MaxKeep > 0 {
		if err := scheduler.AddJob(job.NewVersionPruneJob(svcs.versions), cfg.Versions.PruneCron); err != nil {
			return err
		}
	}
	if err := scheduler.AddJob(job.NewSuggestionCleanupJob(svcs.suggestions, cfg.Suggest.StaleDays), cfg.Suggest.CleanupCron); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := web.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
