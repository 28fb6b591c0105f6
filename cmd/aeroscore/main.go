// Command aeroscore runs the judging service and its maintenance commands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/okian/aeroscore/internal/adapters/activitylog"
	"github.com/okian/aeroscore/internal/adapters/http/api"
	"github.com/okian/aeroscore/internal/adapters/http/site"
	"github.com/okian/aeroscore/internal/adapters/http/swagger"
	"github.com/okian/aeroscore/internal/adapters/repository"
	service "github.com/okian/aeroscore/internal/app"
	"github.com/okian/aeroscore/internal/config"
	"github.com/okian/aeroscore/internal/validation"
	"github.com/okian/aeroscore/pkg/logger"
	"github.com/okian/aeroscore/pkg/metrics"
)

// HTTP server timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		os.Stderr.WriteString("aeroscore: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:   "aeroscore",
		Usage:  "scoring and ranking for aerobic gymnastics events",
		Writer: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file", EnvVars: []string{config.EnvFile}},
			&cli.StringFlag{Name: "db-driver", Usage: "sqlite or postgres"},
			&cli.StringFlag{Name: "db-dsn", Usage: "database connection string"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and display screen",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "addr", Usage: "listen address"}},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create any missing tables and exit",
				Action: migrate,
			},
			{
				Name:  "judges",
				Usage: "manage the judging panel",
				Subcommands: []*cli.Command{
					{
						Name:  "add",
						Usage: "register a judge",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "first", Required: true},
							&cli.StringFlag{Name: "last", Required: true},
							&cli.StringFlag{Name: "role", Required: true, Usage: "principal, execution, artistry or difficulty"},
						},
						Action: addJudge,
					},
				},
			},
			{
				Name:  "rankings",
				Usage: "print rankings as JSON, or write them to a workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "xlsx", Usage: "write an XLSX workbook to this path"},
				},
				Action: printRankings,
			},
		},
	}
}

// loadConfig layers command-line flags over config.Load.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		if err := os.Setenv(config.EnvFile, path); err != nil {
			return nil, fmt.Errorf("set %s: %w", config.EnvFile, err)
		}
	}
	cfg, err := config.Load(c.Context)
	if err != nil {
		return nil, err
	}
	if v := c.String("db-driver"); v != "" {
		cfg.DBDriver = v
	}
	if v := c.String("db-dsn"); v != "" {
		cfg.DBDSN = v
	}
	if v := c.String("addr"); v != "" {
		cfg.Addr = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat, Writer: c.App.ErrWriter}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(c.Context, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	)
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*repository.SQLStore, error) {
	driver, err := repository.ParseDriver(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	return repository.Open(ctx, driver, cfg.DBDSN, repository.WithLogger(logger.Named("store")))
}

func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := service.New(store,
		service.WithLogger(logger.Named("service")),
		service.WithShowTTL(cfg.ShowTTL()),
		service.WithActivityLog(activitylog.New(activitylog.WithCapacity(cfg.LogBufferSize))),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return svc, nil
}

func serve(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := logger.Get()

	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error(ctx, "close service", logger.Error(err))
		}
	}()

	router := api.NewServer(svc,
		api.WithLogger(log),
		api.WithRequestTimeout(cfg.RequestTimeout()),
	).Router(ctx)
	swagger.Register(ctx, router)
	site.Register(ctx, router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	// Open runs the migration.
	store, err := openStore(c.Context, cfg)
	if err != nil {
		return err
	}
	return store.Close()
}

func addJudge(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := newService(c.Context, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	j, err := svc.CreateJudge(c.Context, validation.JudgeInput{
		FirstName: c.String("first"),
		LastName:  c.String("last"),
		Role:      c.String("role"),
	})
	if err != nil {
		return err
	}
	return json.NewEncoder(c.App.Writer).Encode(j)
}

func printRankings(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := newService(c.Context, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if path := c.String("xlsx"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := svc.ExportRankings(c.Context, f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}

	rankings, err := svc.Rankings(c.Context)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(rankings)
}
