package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/repository/implementation"
	"fin-query-be/internal/repository/redisrepo"
	"fin-query-be/internal/repository/specification"
	"fin-query-be/pkg/database"
	"fin-query-be/pkg/store"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestFunnelSessionPersistence(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	sessionRepo := implementation.NewFunnelSessionRepository(gormDB)
	docRepo := implementation.NewEvidenceDocumentRepository(gormDB)
	embeddingRepo := implementation.NewEvidenceEmbeddingRepository(gormDB)
	ctx := context.Background()

	t.Run("Check Evidence Tables", func(t *testing.T) {
		count, err := docRepo.Count(ctx)
		assert.NoError(t, err)
		t.Logf("Evidence document count: %d", count)

		count, err = embeddingRepo.Count(ctx)
		assert.NoError(t, err)
		t.Logf("Evidence embedding count: %d", count)
	})

	t.Run("Session CRUD Round Trip", func(t *testing.T) {
		sessionId := uuid.New()
		session := &entity.FunnelSession{
			Id:     sessionId,
			UserId: uuid.New(),
			Status: store.StatusAwaitingUser,
			Slots: store.SlotSet{
				TargetEntity: &store.Entity{Normalized: "贵州茅台", Code: "600519", Type: store.EntityCompany},
				TimeRange:    &store.TimeRange{Year: 2023, Quarter: "Q3"},
				Metrics:      []string{"净利润"},
			},
			ChaseQuestion: "请问您关注哪个报告期（年份/季度）？",
			ChaseOptions:  []string{"2023年Q3", "2023全年"},
			Interactive:   true,
			LastQuery:     "茅台三季度净利润",
		}

		err := sessionRepo.Create(ctx, session)
		assert.NoError(t, err)
		defer sessionRepo.Delete(ctx, sessionId)

		found, err := sessionRepo.FindOne(ctx, specification.ByID{ID: sessionId})
		assert.NoError(t, err)
		assert.NotNil(t, found)
		assert.Equal(t, store.StatusAwaitingUser, found.Status)
		assert.NotNil(t, found.Slots.TargetEntity)
		assert.Equal(t, "600519", found.Slots.TargetEntity.Code)
		assert.Len(t, found.ChaseOptions, 2)

		// Resolve the session and verify the jsonb columns update.
		found.Status = store.StatusAnswerable
		found.AttemptCount = 1
		found.Evidence = []store.EvidenceChunk{
			{SourceText: "贵州茅台2023年Q3净利润528.76亿元", IsSufficient: true, Reason: "覆盖所需指标"},
		}
		err = sessionRepo.Update(ctx, found)
		assert.NoError(t, err)

		updated, err := sessionRepo.FindOne(ctx, specification.ByID{ID: sessionId})
		assert.NoError(t, err)
		assert.Equal(t, store.StatusAnswerable, updated.Status)
		assert.Len(t, updated.Evidence, 1)

		t.Log("Successfully round-tripped a funnel session through postgres")
	})
}

func TestRedisLiveSessionRepository(t *testing.T) {
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opt)
	ctx := context.Background()
	assert.NoError(t, client.Ping(ctx).Err())

	repo := redisrepo.NewSessionRepository(client, time.Minute)

	session := &store.Session{
		ID:     uuid.New().String(),
		UserID: uuid.New().String(),
		Status: store.StatusCollecting,
		Slots: store.SlotSet{
			Intent: &store.Intent{Type: store.IntentDataQuery},
		},
		Interactive: true,
	}

	assert.NoError(t, repo.Save(ctx, session))
	defer repo.Delete(ctx, session.ID)

	got, found, err := repo.Get(ctx, session.ID)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, store.StatusCollecting, got.Status)
	assert.NotNil(t, got.Slots.Intent)

	assert.NoError(t, repo.Delete(ctx, session.ID))
	_, found, err = repo.Get(ctx, session.ID)
	assert.NoError(t, err)
	assert.False(t, found)
}
