package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"fin-query-be/pkg/funnel/evaluate"
	"fin-query-be/pkg/funnel/integrity"
	"fin-query-be/pkg/funnel/keywords"
	"fin-query-be/pkg/funnel/slots"
	"fin-query-be/pkg/funnel/state"
	"fin-query-be/pkg/funnel/sufficiency"
	"fin-query-be/pkg/retrieval"
	"fin-query-be/pkg/store"
)

// Collaborator seams. The concrete adapters in pkg/funnel satisfy these;
// tests substitute deterministic fakes.

type Normalizer interface {
	Normalize(ctx context.Context, currentDate time.Time, query string) (slots.Update, error)
}

type IntegrityChecker interface {
	Check(ctx context.Context, originalQuery string, s store.SlotSet) (*integrity.Verdict, error)
}

type ContentEvaluator interface {
	Evaluate(ctx context.Context, query, content string) (*evaluate.Verdict, error)
}

type SufficiencyChecker interface {
	Check(ctx context.Context, requiredInfo string, collected []store.EvidenceChunk) (*sufficiency.Verdict, error)
}

// Config tunes the controller's retry and timeout policy.
type Config struct {
	// MaxAttempts caps retrieval attempts per session. Minimum 1.
	MaxAttempts int
	// RetrievalTimeout bounds one gateway fetch.
	RetrievalTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:      2,
		RetrievalTimeout: 30 * time.Second,
	}
}

func (c Config) sanitized() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = 30 * time.Second
	}
	return c
}

// Result is what one Advance call hands back to the boundary layer.
type Result struct {
	Status        string
	ResolvedQuery string
	Slots         store.SlotSet
	Evidence      []store.EvidenceChunk
	Caveats       string
	ChaseQuestion string
	ChaseOptions  []string
	FailureReason string
}

// Controller drives one session through the resolution funnel:
// normalize -> merge -> integrity -> (chase | retrieve -> evaluate ->
// sufficiency) -> terminal. It owns every Session mutation; one call is
// outstanding per session at a time.
type Controller struct {
	normalizer   Normalizer
	integrity    IntegrityChecker
	evaluator    ContentEvaluator
	sufficiency  SufficiencyChecker
	gateway      retrieval.Gateway
	stateManager *state.Manager
	config       Config
	logger       *log.Logger

	now func() time.Time
}

func NewController(
	normalizer Normalizer,
	integrityChecker IntegrityChecker,
	evaluator ContentEvaluator,
	sufficiencyChecker SufficiencyChecker,
	gateway retrieval.Gateway,
	config Config,
	logger *log.Logger,
) *Controller {
	return &Controller{
		normalizer:   normalizer,
		integrity:    integrityChecker,
		evaluator:    evaluator,
		sufficiency:  sufficiencyChecker,
		gateway:      gateway,
		stateManager: state.NewManager(logger),
		config:       config.sanitized(),
		logger:       logger,
		now:          time.Now,
	}
}

// Advance feeds one user turn into the session and runs the funnel until it
// suspends (AWAITING_USER) or terminates (ANSWERABLE / FAILED). Caller-side
// cancellation comes back as the context error with the session untouched by
// any FAILED marking; the caller disposes of it.
func (c *Controller) Advance(ctx context.Context, session *store.Session, userText string) (*Result, error) {
	if session.Terminal() {
		return nil, fmt.Errorf("session %s already reached %s", session.ID, session.Status)
	}

	// ── COLLECTING ──────────────────────────────────────────────
	c.stateManager.To(session, store.StatusCollecting)
	session.LastQuery = userText
	session.ChaseQuestion = ""
	session.ChaseOptions = nil

	update, err := c.normalizer.Normalize(ctx, c.now(), userText)
	if err != nil {
		return c.escalate(ctx, session, err)
	}
	session.Slots = slots.Merge(session.Slots, update)

	// ── CHECKING_INTEGRITY ──────────────────────────────────────
	c.stateManager.To(session, store.StatusCheckingIntegrity)

	verdict, err := c.integrity.Check(ctx, userText, session.Slots)
	if err != nil {
		return c.escalate(ctx, session, err)
	}

	if !verdict.IsSufficient {
		question := verdict.SuggestedQuestion
		if question == "" {
			question = defaultChaseQuestion(verdict.MissingSlots)
		}
		c.stateManager.ToAwaitingUser(session, question, verdict.SuggestedOptions)
		return c.result(session), nil
	}

	// Evidence is needed for every substantive intent; an unresolved alias
	// forces a search pass even when the slots look complete.
	if !c.requiresEvidence(session.Slots) && !session.Slots.NeedsSearch {
		c.stateManager.ToAnswerable(session, "")
		return c.result(session), nil
	}

	return c.retrieveLoop(ctx, session)
}

// retrieveLoop runs RETRIEVING -> EVALUATING -> CHECKING_SUFFICIENCY until a
// verdict lands or the attempt budget runs out. Each attempt owns a fresh
// evidence set; chunks never carry over between attempts. The budget is per
// turn: a session resumed after a chase-back gets a fresh MaxAttempts while
// session.AttemptCount keeps the monotonic per-session total.
func (c *Controller) retrieveLoop(ctx context.Context, session *store.Session) (*Result, error) {
	mismatchFiltered := false
	var lastMissing []string
	runAttempts := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		session.AttemptCount++
		runAttempts++
		session.Evidence = nil
		c.stateManager.To(session, store.StatusRetrieving)

		kw := keywords.ForAttempt(session.Slots, runAttempts)
		c.logger.Printf("[RETRIEVE] attempt %d/%d keywords=%v", runAttempts, c.config.MaxAttempts, kw)

		fetchCtx, cancel := context.WithTimeout(ctx, c.config.RetrievalTimeout)
		chunks, err := c.gateway.Fetch(fetchCtx, kw)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// A failed fetch spends the attempt like an empty one.
			c.logger.Printf("[RETRIEVE] fetch failed: %v", err)
			chunks = nil
		}

		if len(chunks) == 0 {
			if runAttempts >= c.config.MaxAttempts {
				c.stateManager.ToFailed(session, "no evidence found")
				return c.result(session), nil
			}
			continue
		}

		// ── EVALUATING ──────────────────────────────────────
		c.stateManager.To(session, store.StatusEvaluating)

		query := c.resolvedQuery(session)
		for _, chunk := range chunks {
			verdict, err := c.evaluator.Evaluate(ctx, query, chunk.SourceText)
			if err != nil {
				return c.escalate(ctx, session, err)
			}

			mismatch := verdict.SubjectMismatch()
			if verdict.IsSufficient && !mismatch {
				session.Evidence = append(session.Evidence, store.EvidenceChunk{
					SourceText:   chunk.SourceText,
					IsSufficient: true,
					Reason:       verdict.Reason,
				})
				continue
			}

			// Rejected. Mismatched chunks are disqualified outright; their
			// exclusion is reported in caveats even on a later success.
			if mismatch {
				mismatchFiltered = true
			}
			lastMissing = appendUnique(lastMissing, verdict.MissingPoints...)
		}

		if len(session.Evidence) == 0 {
			if runAttempts >= c.config.MaxAttempts {
				c.stateManager.ToFailed(session, "no evidence found")
				return c.result(session), nil
			}
			continue
		}

		// ── CHECKING_SUFFICIENCY ────────────────────────────
		c.stateManager.To(session, store.StatusCheckingSufficiency)

		verdict, err := c.sufficiency.Check(ctx, c.requiredInfo(session), session.Evidence)
		if err != nil {
			return c.escalate(ctx, session, err)
		}

		switch verdict.SufficiencyVerdict {
		case sufficiency.VerdictSufficient, sufficiency.VerdictPartial:
			caveats := verdict.Caveats
			if verdict.SufficiencyVerdict == sufficiency.VerdictSufficient {
				caveats = ""
			}
			if mismatchFiltered {
				caveats = joinCaveats(caveats, "检索中出现与目标主体不符的内容，已过滤。")
			}
			c.stateManager.ToAnswerable(session, caveats)
			return c.result(session), nil

		default: // insufficient
			if runAttempts < c.config.MaxAttempts {
				continue
			}
			if session.Interactive {
				c.stateManager.ToAwaitingUser(session, missingChaseQuestion(lastMissing), nil)
			} else {
				c.stateManager.ToFailed(session, "no evidence found")
			}
			return c.result(session), nil
		}
	}
}

// escalate turns collaborator failures into outcomes. A session cancellation
// passes through as-is: it is caller-initiated and never marks the session
// FAILED. Everything else already had its one same-input retry inside the
// collaborator caller, so it lands as FAILED with the raw error attached.
func (c *Controller) escalate(ctx context.Context, session *store.Session, err error) (*Result, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	c.logger.Printf("[ERROR] collaborator escalation: %v", err)
	c.stateManager.ToFailed(session, fmt.Sprintf("collaborator failure: %v", err))
	return c.result(session), nil
}

func (c *Controller) requiresEvidence(s store.SlotSet) bool {
	if s.Intent == nil {
		// A turn that resolves slots without declaring an executable intent
		// is a pure confirmation; nothing to retrieve.
		return false
	}
	switch s.Intent.Type {
	case store.IntentDataQuery, store.IntentComparison, store.IntentAnalysis:
		return true
	}
	return false
}

func (c *Controller) resolvedQuery(session *store.Session) string {
	if session.Slots.RewrittenQuery != "" {
		return session.Slots.RewrittenQuery
	}
	return session.LastQuery
}

// requiredInfo summarizes what the evidence must cover, for the sufficiency
// checker.
func (c *Controller) requiredInfo(session *store.Session) string {
	summary := map[string]interface{}{
		"query": c.resolvedQuery(session),
	}
	if session.Slots.TargetEntity != nil {
		summary["entity"] = session.Slots.TargetEntity.Normalized
	}
	if session.Slots.TimeRange != nil {
		summary["time_range"] = fmt.Sprintf("%d %s", session.Slots.TimeRange.Year, session.Slots.TimeRange.Quarter)
	}
	if len(session.Slots.Metrics) > 0 {
		summary["metrics"] = session.Slots.Metrics
	}
	b, _ := json.Marshal(summary)
	return string(b)
}

func (c *Controller) result(session *store.Session) *Result {
	return &Result{
		Status:        session.Status,
		ResolvedQuery: c.resolvedQuery(session),
		Slots:         session.Slots,
		Evidence:      session.Evidence,
		Caveats:       session.Caveats,
		ChaseQuestion: session.ChaseQuestion,
		ChaseOptions:  session.ChaseOptions,
		FailureReason: session.FailureReason,
	}
}

func defaultChaseQuestion(missingSlots []string) string {
	for _, slot := range missingSlots {
		switch slot {
		case integrity.SlotTargetEntity:
			return "请问您想查询哪家公司或标的？"
		case integrity.SlotTimeRange:
			return "请问您关注哪个报告期（年份/季度）？"
		}
	}
	return "请补充更具体的信息。"
}

func missingChaseQuestion(missing []string) string {
	if len(missing) == 0 {
		return "未能检索到足够信息，请补充更具体的线索（公司全称、年份或指标名称）。"
	}
	return fmt.Sprintf("检索到的资料仍缺少：%s。请补充更具体的线索。", strings.Join(missing, "、"))
}

func joinCaveats(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}

func appendUnique(dst []string, items ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range items {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		dst = append(dst, s)
	}
	return dst
}
