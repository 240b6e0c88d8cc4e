package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fleetadmin/internal/buildinfo"
	"github.com/dmitrijs2005/fleetadmin/internal/client/cache"
	"github.com/dmitrijs2005/fleetadmin/internal/client/cli"
	"github.com/dmitrijs2005/fleetadmin/internal/client/client"
	"github.com/dmitrijs2005/fleetadmin/internal/client/config"
	"github.com/dmitrijs2005/fleetadmin/internal/client/screens"
	"github.com/dmitrijs2005/fleetadmin/internal/client/services"
	"github.com/dmitrijs2005/fleetadmin/internal/client/session"
	"github.com/dmitrijs2005/fleetadmin/internal/client/tokenstore"
	"github.com/dmitrijs2005/fleetadmin/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logOut, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	logger, err := logging.New(logging.Options{
		Backend: cfg.LogBackend,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  logOut,
	})
	if err != nil {
		return err
	}

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "err", err)
		return err
	}
	defer db.Close()

	tokens := tokenstore.New(db)

	api, err := client.NewHTTPClient(cfg.APIBaseURL, tokens,
		client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		client.WithLogger(logger.With("component", "api")),
	)
	if err != nil {
		return err
	}

	layer := cache.New(db, api,
		cache.WithLogger(logger.With("component", "cache")),
		cache.WithTTL(cache.Groups.Name, cfg.CacheTTL.Groups),
		cache.WithTTL(cache.Permissions.Name, cfg.CacheTTL.Permissions),
		cache.WithTTL(cache.GroupPermissions.Name, cfg.CacheTTL.GroupPermissions),
	)

	sess := session.New(ctx, api, tokens, logger.With("component", "session"))
	defer sess.Wait()
	api.SetUnauthorizedHandler(sess.Expire)

	lookups := services.NewLookups(api, layer, logger)

	app := cli.NewApp(cli.Deps{
		Session:          sess,
		Requests:         api,
		Cache:            layer,
		GroupPermissions: services.NewGroupPermissions(api, layer, lookups),
		Users:            services.NewUsers(api),
		Screens: screens.Catalog(screens.Deps{
			API:     api,
			Cache:   layer,
			Lookups: lookups,
			Logger:  logger,
		}),
		Logger:        logger,
		ProgressDelay: cfg.ProgressDelay,
	})

	logger.Info(ctx, "console started", "api", cfg.APIBaseURL, "version", buildinfo.Version())
	app.Run(ctx)
	return nil
}

// openLog keeps log output off the terminal the REPL draws on.
func openLog(path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return io.Discard, func() {}, nil
	case "-":
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
