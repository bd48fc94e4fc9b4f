package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/config"
	"github.com/ideaforge/ideaforge/internal/credit"
	"github.com/ideaforge/ideaforge/internal/database"
	"github.com/ideaforge/ideaforge/internal/export"
	"github.com/ideaforge/ideaforge/internal/handler"
	"github.com/ideaforge/ideaforge/internal/middleware"
	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/queue"
	"github.com/ideaforge/ideaforge/internal/repository"
	"github.com/ideaforge/ideaforge/internal/router"
	"github.com/ideaforge/ideaforge/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("main: database connection failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	ideas := repository.NewIdeaRepo(db)
	docs := repository.NewDocumentRepo(db)
	txs := repository.NewTransactionRepo(db)

	ledger := credit.NewLedger(credit.Config{
		Enabled:        cfg.CreditSystemEnabled,
		LocalDevBypass: cfg.LocalDevBypass,
		OpenSourceMode: cfg.OpenSourceMode,
		CacheTTL:       cfg.CreditCacheTTL,
	}, users, txs, credit.NewRedisCache(rdb))

	costs := map[model.DocumentType]int64{}
	for t, n := range cfg.GenerationCosts {
		costs[model.DocumentType(t)] = int64(n)
	}
	policy := credit.NewCostPolicy(costs, int64(cfg.GenerationCost))

	gen, err := ai.NewOpenAIGenerator(ai.Config{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
	})
	if err != nil {
		log.Fatalf("main: AI generator init failed: %v", err)
	}

	docService := service.NewDocumentService(ideas, docs, ledger, gen, policy, queue.Notifier{})
	pipeline := export.NewPipeline(export.Packager{Now: func() time.Time { return time.Now().UTC() }})

	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("main: activity consumer stopped: %v", err)
		}
	}()

	var rateLimit echo.MiddlewareFunc
	if rdb != nil {
		rateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, tokens, ledger),
		Ideas:     handler.NewIdeaHandler(ideas),
		Docs:      handler.NewDocumentHandler(docService),
		Credits:   handler.NewCreditHandler(ledger, txs),
		Export:    handler.NewExportHandler(ideas, docs, pipeline),
		RateLimit: rateLimit,
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
