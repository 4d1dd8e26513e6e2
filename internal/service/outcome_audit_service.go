package service

import (
	"context"
	"log"

	"fin-query-be/internal/pkg/logger"
	"fin-query-be/pkg/events"
	pktNats "fin-query-be/pkg/nats"
)

// IOutcomeAuditService records every terminal funnel outcome that crosses
// the event bus. Downstream query executors consume the same subjects;
// this worker keeps a durable audit trail of what the funnel decided.
type IOutcomeAuditService interface {
	Start()
}

type outcomeAuditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewOutcomeAuditService(subscriber *pktNats.Subscriber, auditLogger logger.ILogger) IOutcomeAuditService {
	return &outcomeAuditService{
		subscriber: subscriber,
		logger:     auditLogger,
	}
}

func (s *outcomeAuditService) Start() {
	if s.subscriber == nil {
		log.Println("[WARN] Outcome audit disabled: no NATS subscriber")
		return
	}
	err := s.subscriber.Subscribe("events.funnel.>", "funnel-outcome-audit", s.handle)
	if err != nil {
		log.Printf("[ERROR] Failed to subscribe to funnel outcomes: %v", err)
	}
}

func (s *outcomeAuditService) handle(_ context.Context, event events.Event) error {
	s.logger.Info("FUNNEL_OUTCOME", event.EventType(), event.Payload())
	return nil
}
