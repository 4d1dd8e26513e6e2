package executor

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"fin-query-be/pkg/funnel/collab"
	"fin-query-be/pkg/funnel/evaluate"
	"fin-query-be/pkg/funnel/integrity"
	"fin-query-be/pkg/funnel/slots"
	"fin-query-be/pkg/funnel/sufficiency"
	"fin-query-be/pkg/retrieval"
	"fin-query-be/pkg/store"
)

// ── fakes ───────────────────────────────────────────────────────────

type fakeNormalizer struct {
	updates []slots.Update
	errs    []error
	calls   int
}

func (f *fakeNormalizer) Normalize(ctx context.Context, currentDate time.Time, query string) (slots.Update, error) {
	i := f.calls
	f.calls++
	if i >= len(f.updates) {
		return slots.Update{}, errors.New("normalizer script exhausted")
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.updates[i], err
}

type fakeIntegrity struct {
	verdicts []*integrity.Verdict
	calls    int
}

func (f *fakeIntegrity) Check(ctx context.Context, originalQuery string, s store.SlotSet) (*integrity.Verdict, error) {
	i := f.calls
	f.calls++
	if i >= len(f.verdicts) {
		return nil, errors.New("integrity script exhausted")
	}
	return f.verdicts[i], nil
}

// fakeEvaluator judges chunks by content: "好" passes, "错" is a subject
// mismatch, anything else is rejected with a missing point.
type fakeEvaluator struct {
	calls int
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, query, content string) (*evaluate.Verdict, error) {
	f.calls++
	switch {
	case strings.Contains(content, "好"):
		return &evaluate.Verdict{IsSufficient: true, Reason: "覆盖所需指标"}, nil
	case strings.Contains(content, "错"):
		return &evaluate.Verdict{IsSufficient: false, Reason: "主体不符：内容涉及其他公司"}, nil
	case strings.Contains(content, "伪"):
		// Content rich enough to pass on its own, but about the wrong subject.
		return &evaluate.Verdict{IsSufficient: true, Reason: "数据完整，但主体不符"}, nil
	default:
		return &evaluate.Verdict{IsSufficient: false, Reason: "缺少数据", MissingPoints: []string{"2023年Q3净利润"}}, nil
	}
}

type fakeSufficiency struct {
	verdicts []*sufficiency.Verdict
	calls    int
}

func (f *fakeSufficiency) Check(ctx context.Context, requiredInfo string, collected []store.EvidenceChunk) (*sufficiency.Verdict, error) {
	i := f.calls
	f.calls++
	if i >= len(f.verdicts) {
		return nil, errors.New("sufficiency script exhausted")
	}
	return f.verdicts[i], nil
}

type fakeGateway struct {
	batches  [][]retrieval.Chunk
	errs     []error
	keywords [][]string
	calls    int
}

func (f *fakeGateway) Fetch(ctx context.Context, kw []string) ([]retrieval.Chunk, error) {
	i := f.calls
	f.calls++
	f.keywords = append(f.keywords, append([]string(nil), kw...))
	if i >= len(f.batches) {
		return nil, nil
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.batches[i], err
}

// ── helpers ─────────────────────────────────────────────────────────

func fullUpdate() slots.Update {
	return slots.Update{
		TargetEntity:   &store.Entity{Normalized: "贵州茅台", Code: "600519", Type: store.EntityCompany},
		TimeRange:      &store.TimeRange{Year: 2023, Quarter: "Q3"},
		Metrics:        []string{"净利润"},
		Intent:         &store.Intent{Type: store.IntentDataQuery},
		RewrittenQuery: "查询贵州茅台2023年Q3净利润",
	}
}

func sufficientIntegrity() *integrity.Verdict {
	return &integrity.Verdict{IsSufficient: true}
}

func newTestController(n Normalizer, i IntegrityChecker, e ContentEvaluator, s SufficiencyChecker, g retrieval.Gateway, cfg Config) *Controller {
	return NewController(n, i, e, s, g, cfg, log.New(io.Discard, "", 0))
}

func newSession() *store.Session {
	return &store.Session{
		ID:          "s-1",
		UserID:      "u-1",
		Status:      store.StatusCollecting,
		Interactive: true,
	}
}

// ── tests ───────────────────────────────────────────────────────────

func TestAdvanceHappyPath(t *testing.T) {
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{
		{{SourceText: "贵州茅台2023年Q3净利润 好", Origin: "corpus"}},
	}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{fullUpdate()}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{verdicts: []*sufficiency.Verdict{{SufficiencyVerdict: sufficiency.VerdictSufficient}}},
		gateway,
		DefaultConfig(),
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "茅台三季度赚了多少")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	if res.Status != store.StatusAnswerable {
		t.Fatalf("Status = %s, want ANSWERABLE", res.Status)
	}
	if res.ResolvedQuery != "查询贵州茅台2023年Q3净利润" {
		t.Errorf("ResolvedQuery = %q", res.ResolvedQuery)
	}
	if res.Caveats != "" {
		t.Errorf("Caveats = %q, want empty on a clean sufficient verdict", res.Caveats)
	}
	if len(res.Evidence) != 1 || !res.Evidence[0].IsSufficient {
		t.Errorf("Evidence = %+v, want one accepted chunk", res.Evidence)
	}
	if session.AttemptCount != 1 {
		t.Errorf("AttemptCount = %d, want 1", session.AttemptCount)
	}
	wantKw := []string{"贵州茅台", "600519", "净利润", "2023", "Q3"}
	if len(gateway.keywords) != 1 || strings.Join(gateway.keywords[0], ",") != strings.Join(wantKw, ",") {
		t.Errorf("first-attempt keywords = %v, want %v", gateway.keywords, wantKw)
	}
}

func TestAdvanceChaseThenResume(t *testing.T) {
	// Turn 1 has no entity; turn 2 supplies it.
	vague := fullUpdate()
	vague.TargetEntity = nil

	normalizer := &fakeNormalizer{updates: []slots.Update{
		vague,
		{TargetEntity: &store.Entity{Normalized: "贵州茅台", Code: "600519"}},
	}}
	integrityFake := &fakeIntegrity{verdicts: []*integrity.Verdict{
		{
			IsSufficient:      false,
			MissingSlots:      []string{integrity.SlotTargetEntity},
			SuggestedQuestion: "请问您想查询哪家公司？",
			SuggestedOptions:  []string{"贵州茅台", "五粮液"},
		},
		sufficientIntegrity(),
	}}
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{
		{{SourceText: "好", Origin: "corpus"}},
	}}
	ctrl := newTestController(
		normalizer,
		integrityFake,
		&fakeEvaluator{},
		&fakeSufficiency{verdicts: []*sufficiency.Verdict{{SufficiencyVerdict: sufficiency.VerdictSufficient}}},
		gateway,
		DefaultConfig(),
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "三季度净利润多少")
	if err != nil {
		t.Fatalf("turn 1 error = %v", err)
	}
	if res.Status != store.StatusAwaitingUser {
		t.Fatalf("turn 1 Status = %s, want AWAITING_USER", res.Status)
	}
	if res.ChaseQuestion != "请问您想查询哪家公司？" {
		t.Errorf("ChaseQuestion = %q", res.ChaseQuestion)
	}
	if len(res.ChaseOptions) != 2 {
		t.Errorf("ChaseOptions = %v", res.ChaseOptions)
	}
	if session.AttemptCount != 0 {
		t.Errorf("AttemptCount = %d before any retrieval, want 0", session.AttemptCount)
	}

	res, err = ctrl.Advance(context.Background(), session, "贵州茅台")
	if err != nil {
		t.Fatalf("turn 2 error = %v", err)
	}
	if res.Status != store.StatusAnswerable {
		t.Fatalf("turn 2 Status = %s, want ANSWERABLE", res.Status)
	}
	if res.ChaseQuestion != "" || len(res.ChaseOptions) != 0 {
		t.Errorf("chase fields must clear on resume, got %q %v", res.ChaseQuestion, res.ChaseOptions)
	}
	// Slots from turn 1 survived the suspension.
	if res.Slots.TimeRange == nil || res.Slots.TimeRange.Year != 2023 {
		t.Errorf("TimeRange lost across suspension: %+v", res.Slots.TimeRange)
	}
}

func TestAdvanceDefaultChaseQuestion(t *testing.T) {
	vague := slots.Update{Intent: &store.Intent{Type: store.IntentDataQuery}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{vague}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{{
			IsSufficient: false,
			MissingSlots: []string{integrity.SlotTargetEntity, integrity.SlotTimeRange},
		}}},
		&fakeEvaluator{},
		&fakeSufficiency{},
		&fakeGateway{},
		DefaultConfig(),
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "净利润多少")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Status != store.StatusAwaitingUser {
		t.Fatalf("Status = %s, want AWAITING_USER", res.Status)
	}
	// Entity outranks time when both are missing.
	if res.ChaseQuestion != "请问您想查询哪家公司或标的？" {
		t.Errorf("ChaseQuestion = %q, want the entity chase", res.ChaseQuestion)
	}
}

func TestAdvanceExhaustsAttemptsAndBroadens(t *testing.T) {
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{nil, nil}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{fullUpdate()}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{},
		gateway,
		Config{MaxAttempts: 2, RetrievalTimeout: time.Second},
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "茅台三季度净利润")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Status != store.StatusFailed {
		t.Fatalf("Status = %s, want FAILED", res.Status)
	}
	if res.FailureReason != "no evidence found" {
		t.Errorf("FailureReason = %q, want %q", res.FailureReason, "no evidence found")
	}
	if session.AttemptCount != 2 {
		t.Errorf("AttemptCount = %d, want 2", session.AttemptCount)
	}
	if len(gateway.keywords) != 2 {
		t.Fatalf("gateway called %d times, want 2", len(gateway.keywords))
	}
	// Second attempt must drop the quarter.
	for _, kw := range gateway.keywords[1] {
		if kw == "Q3" {
			t.Errorf("second attempt still carries the quarter: %v", gateway.keywords[1])
		}
	}
}

func TestAdvanceMismatchFilteredCaveat(t *testing.T) {
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{
		{
			{SourceText: "错 五粮液的数据", Origin: "web"},
			{SourceText: "伪 五粮液的完整数据", Origin: "web"},
			{SourceText: "好 贵州茅台的数据", Origin: "corpus"},
		},
	}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{fullUpdate()}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{verdicts: []*sufficiency.Verdict{{SufficiencyVerdict: sufficiency.VerdictSufficient}}},
		gateway,
		DefaultConfig(),
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "茅台三季度净利润")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Status != store.StatusAnswerable {
		t.Fatalf("Status = %s, want ANSWERABLE", res.Status)
	}
	// Mismatched chunks stay out even when individually sufficient.
	if len(res.Evidence) != 1 {
		t.Errorf("Evidence = %+v, want only the matching chunk", res.Evidence)
	}
	if !strings.Contains(res.Caveats, "已过滤") {
		t.Errorf("Caveats = %q, want a filtered-mismatch note", res.Caveats)
	}
}

func TestAdvancePartialVerdictKeepsCaveatsVerbatim(t *testing.T) {
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{
		{{SourceText: "好", Origin: "corpus"}},
	}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{fullUpdate()}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{verdicts: []*sufficiency.Verdict{{
			SufficiencyVerdict: sufficiency.VerdictPartial,
			Caveats:            "仅覆盖前三季度，缺少10月数据。",
		}}},
		gateway,
		DefaultConfig(),
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "茅台今年净利润")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Status != store.StatusAnswerable {
		t.Fatalf("Status = %s, want ANSWERABLE on partial", res.Status)
	}
	if res.Caveats != "仅覆盖前三季度，缺少10月数据。" {
		t.Errorf("Caveats = %q, want the verdict's caveats verbatim", res.Caveats)
	}
}

func TestAdvanceInsufficientInteractiveChasesBack(t *testing.T) {
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{
		{{SourceText: "坏 不相关内容", Origin: "corpus"}, {SourceText: "好", Origin: "corpus"}},
	}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{fullUpdate()}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{verdicts: []*sufficiency.Verdict{{SufficiencyVerdict: sufficiency.VerdictInsufficient}}},
		gateway,
		Config{MaxAttempts: 1, RetrievalTimeout: time.Second},
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "茅台三季度净利润")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Status != store.StatusAwaitingUser {
		t.Fatalf("Status = %s, want AWAITING_USER for interactive session", res.Status)
	}
	if !strings.Contains(res.ChaseQuestion, "2023年Q3净利润") {
		t.Errorf("ChaseQuestion = %q, want it to name the missing points", res.ChaseQuestion)
	}
}

func TestAdvanceInsufficientNonInteractiveFails(t *testing.T) {
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{
		{{SourceText: "好", Origin: "corpus"}},
	}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{fullUpdate()}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{verdicts: []*sufficiency.Verdict{{SufficiencyVerdict: sufficiency.VerdictInsufficient}}},
		gateway,
		Config{MaxAttempts: 1, RetrievalTimeout: time.Second},
	)

	session := newSession()
	session.Interactive = false
	res, err := ctrl.Advance(context.Background(), session, "茅台三季度净利润")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Status != store.StatusFailed {
		t.Fatalf("Status = %s, want FAILED for non-interactive session", res.Status)
	}
}

func TestAdvanceCollaboratorFailureFails(t *testing.T) {
	infraErr := &collab.MalformedError{Collaborator: "normalizer", Raw: "garbage", Err: errors.New("no JSON object in response")}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{{}}, errs: []error{infraErr}},
		&fakeIntegrity{},
		&fakeEvaluator{},
		&fakeSufficiency{},
		&fakeGateway{},
		DefaultConfig(),
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "茅台")
	if err != nil {
		t.Fatalf("Advance() error = %v, infra failures terminate rather than error", err)
	}
	if res.Status != store.StatusFailed {
		t.Fatalf("Status = %s, want FAILED", res.Status)
	}
	if !strings.Contains(res.FailureReason, "collaborator failure") || !strings.Contains(res.FailureReason, "malformed") {
		t.Errorf("FailureReason = %q, want the raw collaborator error attached", res.FailureReason)
	}
}

func TestAdvanceCancellationPassesThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{{}}, errs: []error{context.Canceled}},
		&fakeIntegrity{},
		&fakeEvaluator{},
		&fakeSufficiency{},
		&fakeGateway{},
		DefaultConfig(),
	)

	session := newSession()
	_, err := ctrl.Advance(ctx, session, "茅台")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Advance() error = %v, want context.Canceled", err)
	}
	if session.Status == store.StatusFailed {
		t.Error("cancellation must not mark the session FAILED")
	}
}

func TestAdvanceTerminalSessionRejected(t *testing.T) {
	ctrl := newTestController(
		&fakeNormalizer{},
		&fakeIntegrity{},
		&fakeEvaluator{},
		&fakeSufficiency{},
		&fakeGateway{},
		DefaultConfig(),
	)

	session := newSession()
	session.Status = store.StatusAnswerable
	if _, err := ctrl.Advance(context.Background(), session, "再问一次"); err == nil {
		t.Fatal("Advance() on a terminal session must error")
	}
}

func TestAdvancePureConfirmationSkipsRetrieval(t *testing.T) {
	confirm := slots.Update{TargetEntity: &store.Entity{Normalized: "贵州茅台"}}
	gateway := &fakeGateway{}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{confirm}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{},
		gateway,
		DefaultConfig(),
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "就是贵州茅台")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Status != store.StatusAnswerable {
		t.Fatalf("Status = %s, want ANSWERABLE without retrieval", res.Status)
	}
	if gateway.calls != 0 {
		t.Errorf("gateway called %d times for a pure confirmation, want 0", gateway.calls)
	}
}

func TestAdvanceNeedsSearchForcesRetrieval(t *testing.T) {
	// No executable intent, but an unresolved alias demands a search pass.
	update := slots.Update{
		NeedsSearch:    true,
		SearchKeywords: []string{"某某科技 股票代码"},
	}
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{
		{{SourceText: "好", Origin: "web"}},
	}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{update}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{verdicts: []*sufficiency.Verdict{{SufficiencyVerdict: sufficiency.VerdictSufficient}}},
		gateway,
		DefaultConfig(),
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "某某科技怎么样")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if gateway.calls != 1 {
		t.Fatalf("gateway called %d times, want 1 (needs_search forces retrieval)", gateway.calls)
	}
	if strings.Join(gateway.keywords[0], " ") != "某某科技 股票代码" {
		t.Errorf("keywords = %v, want the normalizer's search keywords", gateway.keywords[0])
	}
	if res.Status != store.StatusAnswerable {
		t.Errorf("Status = %s, want ANSWERABLE", res.Status)
	}
}

func TestAdvanceInsufficientVerdictNeverExceedsBudget(t *testing.T) {
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{
		{{SourceText: "好", Origin: "corpus"}},
		{{SourceText: "好", Origin: "corpus"}},
		{{SourceText: "好", Origin: "corpus"}},
	}}
	suff := &fakeSufficiency{verdicts: []*sufficiency.Verdict{
		{SufficiencyVerdict: sufficiency.VerdictInsufficient},
		{SufficiencyVerdict: sufficiency.VerdictInsufficient},
		{SufficiencyVerdict: sufficiency.VerdictInsufficient},
	}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{fullUpdate()}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		suff,
		gateway,
		Config{MaxAttempts: 2, RetrievalTimeout: time.Second},
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "茅台三季度净利润")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if gateway.calls != 2 {
		t.Errorf("gateway called %d times, want exactly 2", gateway.calls)
	}
	if suff.calls != 2 {
		t.Errorf("sufficiency checked %d times, want exactly 2", suff.calls)
	}
	if res.Status != store.StatusAwaitingUser {
		t.Errorf("Status = %s, want AWAITING_USER after exhausting the budget", res.Status)
	}
}

func TestAdvanceAllChunksRejectedFails(t *testing.T) {
	// Retrieval keeps returning content, but every chunk is off-subject.
	gateway := &fakeGateway{batches: [][]retrieval.Chunk{
		{{SourceText: "错 五粮液的数据", Origin: "web"}},
		{{SourceText: "错 泸州老窖的数据", Origin: "web"}},
	}}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{fullUpdate()}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{},
		gateway,
		Config{MaxAttempts: 2, RetrievalTimeout: time.Second},
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "茅台三季度净利润")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Status != store.StatusFailed {
		t.Fatalf("Status = %s, want FAILED when nothing survives evaluation", res.Status)
	}
	if res.FailureReason != "no evidence found" {
		t.Errorf("FailureReason = %q, want %q", res.FailureReason, "no evidence found")
	}
	if len(res.Evidence) != 0 {
		t.Errorf("Evidence = %+v, want none", res.Evidence)
	}
}

func TestAdvanceFetchErrorSpendsAttempt(t *testing.T) {
	gateway := &fakeGateway{
		batches: [][]retrieval.Chunk{nil, {{SourceText: "好", Origin: "corpus"}}},
		errs:    []error{errors.New("tavily 500"), nil},
	}
	ctrl := newTestController(
		&fakeNormalizer{updates: []slots.Update{fullUpdate()}},
		&fakeIntegrity{verdicts: []*integrity.Verdict{sufficientIntegrity()}},
		&fakeEvaluator{},
		&fakeSufficiency{verdicts: []*sufficiency.Verdict{{SufficiencyVerdict: sufficiency.VerdictSufficient}}},
		gateway,
		Config{MaxAttempts: 2, RetrievalTimeout: time.Second},
	)

	session := newSession()
	res, err := ctrl.Advance(context.Background(), session, "茅台三季度净利润")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Status != store.StatusAnswerable {
		t.Fatalf("Status = %s, want ANSWERABLE on the second attempt", res.Status)
	}
	if session.AttemptCount != 2 {
		t.Errorf("AttemptCount = %d, want 2 (failed fetch spends an attempt)", session.AttemptCount)
	}
}
