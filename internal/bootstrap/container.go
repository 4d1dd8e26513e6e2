package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"fin-query-be/internal/config"
	"fin-query-be/internal/controller"
	"fin-query-be/internal/pkg/logger"
	"fin-query-be/internal/repository/contract"
	"fin-query-be/internal/repository/implementation"
	"fin-query-be/internal/repository/memory"
	"fin-query-be/internal/repository/redisrepo"
	"fin-query-be/internal/service"
	"fin-query-be/pkg/embedding"
	"fin-query-be/pkg/funnel/collab"
	"fin-query-be/pkg/funnel/evaluate"
	"fin-query-be/pkg/funnel/executor"
	"fin-query-be/pkg/funnel/integrity"
	"fin-query-be/pkg/funnel/normalize"
	"fin-query-be/pkg/funnel/sufficiency"
	"fin-query-be/pkg/llm/factory"
	"fin-query-be/pkg/retrieval"
	"fin-query-be/pkg/retrieval/vector"
	"fin-query-be/pkg/retrieval/web"

	pktNats "fin-query-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	FunnelController   controller.IFunnelController
	EvidenceController controller.IEvidenceController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	OutcomeAuditService service.IOutcomeAuditService

	// Exposed for CLI frontends that drive the funnel directly.
	FunnelService service.IFunnelService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	funnelLogger := initFunnelLogger()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Keys.LLM,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	sessionTTL := time.Duration(cfg.Funnel.SessionTTLMinutes) * time.Minute
	liveRepo := newLiveSessionRepository(cfg.App.RedisURL, sessionTTL)

	// 5. Repositories
	sessionRepo := implementation.NewFunnelSessionRepository(db)
	documentRepo := implementation.NewEvidenceDocumentRepository(db)
	embeddingRepo := implementation.NewEvidenceEmbeddingRepository(db)

	// 6. Funnel Collaborators
	collabTimeout := time.Duration(cfg.Funnel.CollabTimeoutSecs) * time.Second
	caller := collab.NewCaller(llmProvider, collabTimeout, funnelLogger)

	normalizer := normalize.NewNormalizer(caller, funnelLogger)
	integrityChecker := integrity.NewChecker(caller, funnelLogger)
	evaluator := evaluate.NewEvaluator(caller, funnelLogger)
	sufficiencyChecker := sufficiency.NewChecker(caller, funnelLogger)

	// 7. Retrieval Gateway: local corpus first, web search fallback
	corpusRetriever := vector.NewRetriever(
		embeddingProvider,
		&evidenceSearcher{repo: embeddingRepo},
		vector.DefaultConfig(),
		funnelLogger,
	)
	var gateway retrieval.Gateway = corpusRetriever
	if cfg.Keys.Tavily != "" {
		webClient := web.NewClient(cfg.Keys.Tavily, "", funnelLogger)
		gateway = retrieval.NewCompositeGateway(corpusRetriever, webClient, funnelLogger)
	} else {
		log.Println("[WARN] TAVILY_API_KEY not set, web search fallback disabled")
	}

	funnelController := executor.NewController(
		normalizer,
		integrityChecker,
		evaluator,
		sufficiencyChecker,
		gateway,
		executor.Config{
			MaxAttempts:      cfg.Funnel.MaxAttempts,
			RetrievalTimeout: 30 * time.Second,
		},
		funnelLogger,
	)

	// 8. Services
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		documentRepo,
		embeddingRepo,
		embeddingProvider,
	)

	funnelService := service.NewFunnelService(funnelController, liveRepo, sessionRepo, natsPub)
	evidenceService := service.NewEvidenceService(documentRepo, embeddingRepo, publisherService)
	outcomeAuditService := service.NewOutcomeAuditService(natsSub, sysLogger)

	// 9. Controllers
	return &Container{
		FunnelController:   controller.NewFunnelController(funnelService),
		EvidenceController: controller.NewEvidenceController(evidenceService),

		ConsumerService:     consumerService,
		OutcomeAuditService: outcomeAuditService,

		FunnelService: funnelService,
	}
}

// newLiveSessionRepository prefers redis; a dead or unreachable redis drops
// the deployment back to the in-process store so the funnel still runs.
func newLiveSessionRepository(redisURL string, ttl time.Duration) contract.LiveSessionRepository {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: redisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory sessions", err)
		return memory.NewSessionRepository(ttl)
	}
	return redisrepo.NewSessionRepository(rdb, ttl)
}

func initFunnelLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_funnel.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
		return log.New(os.Stdout, "[FUNNEL] ", log.LstdFlags)
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Failed to open funnel log file: %v", err)
		return log.New(os.Stdout, "[FUNNEL] ", log.LstdFlags)
	}
	return log.New(f, "", log.LstdFlags)
}
