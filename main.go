package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	"github.com/joho/godotenv"

	"ctea-newsroom/commentary"
	"ctea-newsroom/feed"
	"ctea-newsroom/handlers"
	"ctea-newsroom/identity"
	"ctea-newsroom/storage"
	"ctea-newsroom/types"
)

func main() {
	// Local development convenience; a missing .env is fine
	if err := godotenv.Load(); err == nil {
		log.Printf("📄 Loaded environment from .env")
	}

	configPath := os.Getenv("CTEA_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("☕ CTea Newsroom starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broker := feed.NewBroker()

	submissions, reactions, rewards := buildStorage(ctx, cfg, broker)

	notifier := feed.LogNotifier{}
	store := feed.NewStore()

	loader := feed.NewLoader(submissions, store, notifier)
	if err := loader.Load(ctx, types.SortNewest); err != nil {
		// The feed starts empty; live events and retries fill it in
		log.Printf("⚠️  Initial feed load failed: %v", err)
	} else {
		log.Printf("📰 Feed loaded with %d submissions", store.Len())
	}

	subscription := feed.NewSubscription(broker, store, notifier)
	if err := subscription.Open(); err != nil {
		log.Fatalf("❌ Failed to open feed subscription: %v", err)
	}
	defer subscription.Close()

	var rater commentary.Rater
	if cfg.GeminiAPIKey != "" {
		r, err := commentary.NewGeminiRater(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("⚠️  AI commentary disabled: %v", err)
		} else {
			rater = r
			log.Printf("🤖 AI commentary enabled")
		}
	}

	limiter := NewRateLimiter(cfg.MaxPerHour)
	limiter.StartCleanup(5*time.Minute, ctx.Done())
	reactionLimiter := NewRateLimiter(cfg.MaxReactionsPerHour)
	reactionLimiter.StartCleanup(5*time.Minute, ctx.Done())

	// Single-operator local mode: callers without a token all resolve to
	// one persisted identity instead of a throwaway token per request.
	var identities identity.Provider
	if cfg.IdentityFile != "" {
		identities = identity.NewStoredProvider(identity.NewFileTokenStore(cfg.IdentityFile))
		log.Printf("🆔 Persisted identity enabled at %s", cfg.IdentityFile)
	}

	srv := &server{
		cfg:             cfg,
		submissions:     submissions,
		reactions:       reactions,
		rewards:         rewards,
		store:           store,
		notifier:        notifier,
		moderator:       NewContentModerator(cfg.OpenAIAPIKey),
		limiter:         limiter,
		reactionLimiter: reactionLimiter,
		rater:           rater,
		identities:      identities,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", handlers.HandleHealth)
	mux.Handle("/api/feed", handlers.HandleFeed(store, submissions))
	mux.Handle("/api/feed/stream", handlers.HandleStream(broker))
	mux.HandleFunc("/api/tea", srv.handleSubmitTea)
	mux.HandleFunc("/api/reactions", srv.handleReact)
	mux.HandleFunc("/api/admin/status", srv.handleAdminStatus)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("🌍 Server running on http://:%s", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed: %v", err)
	}
	log.Printf("👋 Server stopped")
}

// buildStorage picks the backend: DynamoDB when tables are configured,
// Postgres when a connection string is, in-memory otherwise. Each mode also
// wires its change-event path into the broker.
func buildStorage(ctx context.Context, cfg *Config, broker *feed.Broker) (storage.SubmissionRepository, storage.ReactionRepository, storage.RewardRepository) {
	if cfg.UseDynamoDB() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("❌ Failed to load AWS config: %v", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)

		if cfg.StreamArn != "" {
			poller := storage.NewDynamoStreamsPoller(dynamodbstreams.NewFromConfig(awsCfg), cfg.StreamArn, broker)
			go poller.Run(ctx)
			log.Printf("🌊 Tailing DynamoDB stream")
		} else {
			log.Printf("⚠️  No stream ARN configured - live updates disabled in DynamoDB mode")
		}

		log.Printf("🗄️  Using DynamoDB storage")
		return storage.NewSubmissionDynamoDBRepository(client, cfg.SubmissionsTable),
			storage.NewReactionDynamoDBRepository(client, cfg.ReactionsTable, cfg.SubmissionsTable),
			storage.NewRewardDynamoDBRepository(client, cfg.ProgressTable)
	}

	if cfg.UsePostgres() {
		pg, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Postgres: %v", err)
		}

		listener := storage.NewPostgresListener(pg.Pool, broker)
		go listener.Run(ctx)

		return pg, pg, pg
	}

	log.Printf("💭 No storage configured - using in-memory store")
	mem := storage.NewMemoryStore(broker)
	return mem, mem, mem
}
