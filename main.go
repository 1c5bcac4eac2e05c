package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/config"
	"github.com/campuslife/campus-engine/pkg/crawl"
	"github.com/campuslife/campus-engine/pkg/database"
	"github.com/campuslife/campus-engine/pkg/handlers"
	"github.com/campuslife/campus-engine/pkg/llm"
	"github.com/campuslife/campus-engine/pkg/logging"
	"github.com/campuslife/campus-engine/pkg/mcp"
	"github.com/campuslife/campus-engine/pkg/repositories"
	"github.com/campuslife/campus-engine/pkg/retrieval"
	"github.com/campuslife/campus-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("model", cfg.Assistant.Model),
		zap.String("crawl_seed", cfg.Crawler.SeedURL))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// golang-migrate needs database/sql.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	// Repositories
	knowledgeRepo := repositories.NewKnowledgeRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	unansweredRepo := repositories.NewUnansweredRepository(db)
	userRepo := repositories.NewUserRepository(db)
	studyRepo := repositories.NewStudyRepository(db)

	// Crawl pipeline
	fetcher := crawl.NewFetcher(cfg.Crawler.Timeout(), cfg.Crawler.PDFFetchTimeout(), logger)
	crawler := crawl.NewCrawler(fetcher, crawl.Config{
		MaxDepth:     cfg.Crawler.MaxDepth,
		Delay:        cfg.Crawler.Delay(),
		AllowedHosts: cfg.Crawler.Hosts(),
	}, logger)

	retriever := retrieval.NewRetriever(knowledgeRepo, cfg.Retrieval.TopK, cfg.Retrieval.Threshold, logger)

	// Agent, with MCP tools when a tool server is configured
	var toolProvider llm.ToolProvider
	if cfg.Assistant.MCPServerURL != "" {
		toolClient, err := mcp.NewToolClient(ctx, cfg.Assistant.MCPServerURL, cfg.Version, logger)
		if err != nil {
			logger.Warn("MCP tool server unavailable, continuing without tools",
				zap.String("url", cfg.Assistant.MCPServerURL),
				zap.Error(err))
		} else {
			defer func() { _ = toolClient.Close() }()
			toolProvider = toolClient
		}
	}

	agent, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.Assistant.Endpoint,
		Model:    cfg.Assistant.Model,
		APIKey:   cfg.Assistant.APIKey,
	}, toolProvider, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Services
	ingestService := services.NewIngestService(crawler, knowledgeRepo, cfg.Crawler.SeedURL, cfg.Crawler.ChunkSize, logger)
	assistantService := services.NewAssistantService(chatRepo, unansweredRepo, knowledgeRepo, retriever, agent, logger)
	matchService := services.NewMatchService(studyRepo, userRepo, logger)

	// Handlers
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAssistantHandler(assistantService, logger).RegisterRoutes(mux)
	handlers.NewStudyBuddyHandler(matchService, logger).RegisterRoutes(mux)
	handlers.NewKnowledgeHandler(ingestService, assistantService, retriever, logger).RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting campus-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
