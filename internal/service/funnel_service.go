package service

import (
	"context"
	"log"
	"time"

	"fin-query-be/internal/dto"
	"fin-query-be/internal/entity"
	"fin-query-be/internal/mapper"
	"fin-query-be/internal/repository/contract"
	"fin-query-be/internal/repository/specification"
	"fin-query-be/pkg/events"
	"fin-query-be/pkg/funnel/executor"
	pktNats "fin-query-be/pkg/nats"
	"fin-query-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IFunnelService is the session boundary around the funnel controller.
// It owns loading and persisting session state; the controller owns the
// state machine itself.
type IFunnelService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateFunnelSessionRequest) (*dto.CreateFunnelSessionResponse, error)
	Advance(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.AdvanceRequest) (*dto.AdvanceResponse, error)
	GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetFunnelSessionResponse, error)
	CancelSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

type funnelService struct {
	controller  *executor.Controller
	liveRepo    contract.LiveSessionRepository
	sessionRepo contract.FunnelSessionRepository
	natsPub     *pktNats.Publisher
	mapper      *mapper.FunnelSessionMapper
}

func NewFunnelService(
	controller *executor.Controller,
	liveRepo contract.LiveSessionRepository,
	sessionRepo contract.FunnelSessionRepository,
	natsPub *pktNats.Publisher,
) IFunnelService {
	return &funnelService{
		controller:  controller,
		liveRepo:    liveRepo,
		sessionRepo: sessionRepo,
		natsPub:     natsPub,
		mapper:      mapper.NewFunnelSessionMapper(),
	}
}

func (s *funnelService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateFunnelSessionRequest) (*dto.CreateFunnelSessionResponse, error) {
	interactive := true
	if request != nil && request.Interactive != nil {
		interactive = *request.Interactive
	}

	row := &entity.FunnelSession{
		Id:          uuid.New(),
		UserId:      userId,
		Status:      store.StatusCollecting,
		Interactive: interactive,
		CreatedAt:   time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, row); err != nil {
		return nil, err
	}

	live := s.mapper.ToLiveSession(row)
	if err := s.liveRepo.Save(ctx, live); err != nil {
		return nil, err
	}

	return &dto.CreateFunnelSessionResponse{Id: row.Id, Status: row.Status}, nil
}

func (s *funnelService) Advance(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.AdvanceRequest) (*dto.AdvanceResponse, error) {
	session, err := s.loadSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if session.Terminal() {
		return nil, fiber.NewError(fiber.StatusConflict, "session already reached a terminal state")
	}

	result, err := s.controller.Advance(ctx, session, request.Message)
	if err != nil {
		// Cancellation leaves the session as it was; it stays resumable
		// until the live entry expires.
		if saveErr := s.liveRepo.Save(ctx, session); saveErr != nil {
			log.Printf("[ERROR] Failed to save session %s after interrupted advance: %v", session.ID, saveErr)
		}
		return nil, err
	}

	s.persist(ctx, session)

	return &dto.AdvanceResponse{
		SessionId:     sessionId,
		Status:        result.Status,
		ResolvedQuery: result.ResolvedQuery,
		Slots:         result.Slots,
		Evidence:      result.Evidence,
		AttemptCount:  session.AttemptCount,
		ChaseQuestion: result.ChaseQuestion,
		ChaseOptions:  result.ChaseOptions,
		Caveats:       result.Caveats,
		FailureReason: result.FailureReason,
	}, nil
}

func (s *funnelService) GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetFunnelSessionResponse, error) {
	row, err := s.sessionRepo.FindOne(ctx, specification.ByID{ID: sessionId}, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return &dto.GetFunnelSessionResponse{
		Id:            row.Id,
		Status:        row.Status,
		Slots:         row.Slots,
		AttemptCount:  row.AttemptCount,
		ChaseQuestion: row.ChaseQuestion,
		ChaseOptions:  row.ChaseOptions,
		Caveats:       row.Caveats,
		FailureReason: row.FailureReason,
		LastQuery:     row.LastQuery,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func (s *funnelService) CancelSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	row, err := s.sessionRepo.FindOne(ctx, specification.ByID{ID: sessionId}, specification.ByUserID{UserID: userId})
	if err != nil {
		return err
	}
	if row == nil {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	if err := s.liveRepo.Delete(ctx, sessionId.String()); err != nil {
		log.Printf("[WARN] Failed to drop live session %s: %v", sessionId, err)
	}
	return s.sessionRepo.Delete(ctx, sessionId)
}

// loadSession prefers the hot copy; a session whose live entry expired is
// rehydrated from its durable row.
func (s *funnelService) loadSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*store.Session, error) {
	session, found, err := s.liveRepo.Get(ctx, sessionId.String())
	if err != nil {
		return nil, err
	}
	if found {
		if session.UserID != userId.String() {
			return nil, fiber.NewError(fiber.StatusForbidden, "session belongs to another user")
		}
		return session, nil
	}

	row, err := s.sessionRepo.FindOne(ctx, specification.ByID{ID: sessionId}, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return s.mapper.ToLiveSession(row), nil
}

func (s *funnelService) persist(ctx context.Context, session *store.Session) {
	row, err := s.mapper.FromLiveSession(session)
	if err != nil {
		log.Printf("[ERROR] Failed to map session %s for persistence: %v", session.ID, err)
		return
	}
	if err := s.sessionRepo.Update(ctx, row); err != nil {
		log.Printf("[ERROR] Failed to persist session %s: %v", session.ID, err)
	}

	if !session.Terminal() {
		if err := s.liveRepo.Save(ctx, session); err != nil {
			log.Printf("[ERROR] Failed to save live session %s: %v", session.ID, err)
		}
		return
	}

	if err := s.liveRepo.Delete(ctx, session.ID); err != nil {
		log.Printf("[WARN] Failed to drop live session %s: %v", session.ID, err)
	}
	s.publishOutcome(ctx, session)
}

func (s *funnelService) publishOutcome(ctx context.Context, session *store.Session) {
	if s.natsPub == nil {
		return
	}
	var event events.Event
	switch session.Status {
	case store.StatusAnswerable:
		event = events.NewFunnelAnswerable(session.ID, session.UserID, session.Slots.RewrittenQuery, session.Caveats)
	case store.StatusFailed:
		event = events.NewFunnelFailed(session.ID, session.UserID, session.FailureReason)
	default:
		return
	}
	if err := s.natsPub.Publish(ctx, event); err != nil {
		log.Printf("[WARN] Failed to publish funnel outcome for session %s: %v", session.ID, err)
	}
}
