// Arcaneering production planner server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/arcaneering/planner-server/internal/planner/catalog"
	"github.com/arcaneering/planner-server/internal/planner/config"
	"github.com/arcaneering/planner-server/internal/planner/engine"
	"github.com/arcaneering/planner-server/internal/planner/httpapi"
	"github.com/arcaneering/planner-server/internal/planner/mcp"
	"github.com/arcaneering/planner-server/internal/planner/snapshot"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	dbPath := flag.String("db", "", "Path to SQLite catalog database (overrides config)")
	httpAddr := flag.String("http", "", "Serve the HTTP API on this address instead of MCP stdio")
	importPath := flag.String("import-snapshot", "", "Import a recipe snapshot JSON file")
	exportPath := flag.String("export-snapshot", "", "Export the stored catalog to a snapshot JSON file")
	allowReload := flag.Bool("allow-reload", false, "Enable the /reload endpoint")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *httpAddr != "" {
		cfg.HTTP.Listen = *httpAddr
	}
	if *allowReload {
		cfg.AllowReload = true
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down...")
		cancel()
	}()

	database, err := catalog.OpenAndInit(ctx, cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	if *importPath != "" {
		logger.Info("importing snapshot", "file", *importPath)
		importer := snapshot.NewImporter(database)
		if err := importer.ImportFromFile(ctx, *importPath); err != nil {
			logger.Error("failed to import snapshot", "error", err)
			os.Exit(1)
		}
		logger.Info("snapshot imported successfully")
	}

	if *exportPath != "" {
		logger.Info("exporting snapshot", "file", *exportPath)
		if err := snapshot.Export(ctx, database, *exportPath); err != nil {
			logger.Error("failed to export snapshot", "error", err)
			os.Exit(1)
		}
		logger.Info("snapshot exported successfully")
	}

	// Import/export only invocation exits here.
	if (*importPath != "" || *exportPath != "") && cfg.HTTP.Listen == "" && flag.NArg() == 0 {
		return
	}

	// Seed an empty database from the configured snapshot, if any.
	store := catalog.NewRecipeStore(database)
	count, err := store.CountRecipes(ctx)
	if err != nil {
		logger.Error("failed to count recipes", "error", err)
		os.Exit(1)
	}
	if count == 0 && cfg.SnapshotPath != "" {
		logger.Info("seeding catalog from snapshot", "file", cfg.SnapshotPath)
		importer := snapshot.NewImporter(database)
		if err := importer.ImportFromFile(ctx, cfg.SnapshotPath); err != nil {
			logger.Error("failed to seed catalog", "error", err)
			os.Exit(1)
		}
	}

	loadEngine := func(ctx context.Context) (*engine.Engine, error) {
		cat, err := catalog.Load(ctx, database)
		if err != nil {
			return nil, err
		}
		return engine.New(cat)
	}

	eng, err := loadEngine(ctx)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	holder := engine.NewHolder(eng)
	logger.Info("catalog loaded", "recipes", eng.Catalog().Len())

	if cfg.HTTP.Listen != "" {
		var reload httpapi.ReloadFunc
		if cfg.AllowReload {
			reload = loadEngine
		}
		server := httpapi.NewServer(holder, reload, logger)
		logger.Info("starting HTTP server", "addr", cfg.HTTP.Listen, "db", cfg.DBPath)
		if err := server.ListenAndServe(ctx, cfg.HTTP.Listen); err != nil && ctx.Err() == nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	} else {
		server := mcp.NewServer(holder, logger)
		logger.Info("starting MCP server", "db", cfg.DBPath)
		if err := server.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	fmt.Fprintln(os.Stderr, "server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
