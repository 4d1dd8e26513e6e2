package dto

import (
	"time"

	"fin-query-be/pkg/store"

	"github.com/google/uuid"
)

type CreateFunnelSessionRequest struct {
	// Interactive sessions suspend with a follow-up question when slots or
	// evidence run short; non-interactive ones fail instead.
	Interactive *bool `json:"interactive,omitempty"`
}

type CreateFunnelSessionResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type AdvanceRequest struct {
	Message string `json:"message" validate:"required"`
}

type AdvanceResponse struct {
	SessionId     uuid.UUID             `json:"session_id"`
	Status        string                `json:"status"`
	ResolvedQuery string                `json:"resolved_query,omitempty"`
	Slots         store.SlotSet         `json:"slots"`
	Evidence      []store.EvidenceChunk `json:"evidence,omitempty"`
	AttemptCount  int                   `json:"attempt_count"`
	ChaseQuestion string                `json:"chase_question,omitempty"`
	ChaseOptions  []string              `json:"chase_options,omitempty"`
	Caveats       string                `json:"caveats,omitempty"`
	FailureReason string                `json:"failure_reason,omitempty"`
}

type GetFunnelSessionResponse struct {
	Id            uuid.UUID     `json:"id"`
	Status        string        `json:"status"`
	Slots         store.SlotSet `json:"slots"`
	AttemptCount  int           `json:"attempt_count"`
	ChaseQuestion string        `json:"chase_question,omitempty"`
	ChaseOptions  []string      `json:"chase_options,omitempty"`
	Caveats       string        `json:"caveats,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
	LastQuery     string        `json:"last_query,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     *time.Time    `json:"updated_at"`
}
