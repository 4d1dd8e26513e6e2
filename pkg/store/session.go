package store

// Entity is a normalized reference to the instrument a query is about
type Entity struct {
	Normalized string `json:"normalized"`     // e.g. "贵州茅台"
	Code       string `json:"code,omitempty"` // e.g. "600519", may be empty
	Type       string `json:"type,omitempty"` // "company" | "index" | "concept"
}

// TimeRange is the historical period a query targets
type TimeRange struct {
	Year    int    `json:"year"`
	Quarter string `json:"quarter"` // "Q1" | "Q2" | "Q3" | "Q4" | "Year"
}

// Intent describes what the user wants done once the slots are filled
type Intent struct {
	Type       string   `json:"type"` // "data_query" | "comparison" | "analysis"
	RawMetrics []string `json:"raw_metrics,omitempty"`
}

// Intent types
const (
	IntentDataQuery  = "data_query"
	IntentComparison = "comparison"
	IntentAnalysis   = "analysis"
)

// Entity types
const (
	EntityCompany = "company"
	EntityIndex   = "index"
	EntityConcept = "concept"
)

// SlotSet is the accumulated understanding of the current query.
// It survives across turns; each turn's normalizer output is merged on top.
type SlotSet struct {
	TargetEntity *Entity    `json:"target_entity,omitempty"`
	TimeRange    *TimeRange `json:"time_range,omitempty"`
	Metrics      []string   `json:"metrics,omitempty"` // standardized names, first-seen order, no duplicates
	Intent       *Intent    `json:"intent,omitempty"`
	NeedsSearch  bool       `json:"needs_search"`

	// Keywords suggested by the normalizer when an alias or date reference
	// could not be resolved confidently. Meaningful while NeedsSearch is set.
	SearchKeywords []string `json:"search_keywords,omitempty"`

	// Latest rewritten form of the user's question.
	RewrittenQuery string `json:"rewritten_query,omitempty"`
}

// EvidenceChunk is one unit of retrieved content plus its evaluator verdict.
// The evidence set belongs to a single retrieval attempt and is rebuilt from
// scratch on every retry.
type EvidenceChunk struct {
	SourceText      string   `json:"source_text"`
	IsSufficient    bool     `json:"is_sufficient"`
	Reason          string   `json:"reason,omitempty"`
	MissingPoints   []string `json:"missing_points,omitempty"`
	SubjectMismatch bool     `json:"subject_mismatch,omitempty"`
}

// Session statuses
const (
	StatusCollecting          = "COLLECTING"
	StatusCheckingIntegrity   = "CHECKING_INTEGRITY"
	StatusAwaitingUser        = "AWAITING_USER"
	StatusRetrieving          = "RETRIEVING"
	StatusEvaluating          = "EVALUATING"
	StatusCheckingSufficiency = "CHECKING_SUFFICIENCY"
	StatusAnswerable          = "ANSWERABLE"
	StatusFailed              = "FAILED"
)

// Session is the live state of one conversation's resolution funnel.
// It is exclusively owned by the controller driving it and must round-trip
// through JSON unchanged so suspended sessions survive arbitrary real time.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Status string `json:"status"`

	Slots    SlotSet         `json:"slots"`
	Evidence []EvidenceChunk `json:"evidence,omitempty"`

	// Retrieval attempts used so far. Monotonic, capped by the configured
	// maximum; exhausting it is the only source of a "no evidence found"
	// failure.
	AttemptCount int `json:"attempt_count"`

	// Set when the funnel suspends to chase the user for a missing slot.
	ChaseQuestion string   `json:"chase_question,omitempty"`
	ChaseOptions  []string `json:"chase_options,omitempty"`

	// Set on terminal outcomes.
	Caveats       string `json:"caveats,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`

	// Interactive sessions may suspend to chase the user; non-interactive
	// ones fail instead once evidence runs out.
	Interactive bool `json:"interactive"`

	LastQuery string `json:"last_query,omitempty"`
}

// Terminal reports whether the session reached an end state.
func (s *Session) Terminal() bool {
	return s.Status == StatusAnswerable || s.Status == StatusFailed
}
