package models

// Intent is the classified strategy a query should follow.
type Intent string

const (
	// IntentRAG is direct lookup: retrieve, dedup, answer with citations.
	IntentRAG Intent = "rag"
	// IntentSummarize is cross-document budgeted summarization.
	IntentSummarize Intent = "summarize"
	// IntentReason is multi-step analysis over evidence fetched by lookup.
	IntentReason Intent = "reason"
)

// ParseIntent maps a classifier reply to an Intent. Anything outside the
// known set falls back to IntentRAG; the classifier is a language model and
// non-compliant output must never surface as an error.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentRAG, IntentSummarize, IntentReason:
		return Intent(s)
	default:
		return IntentRAG
	}
}

// QueryState is the orchestration state threaded through the pipeline. It is
// exclusively owned by one in-flight query and passed by value between
// stages. Intent is set exactly once by the router.
type QueryState struct {
	Question       string
	Intent         Intent
	CandidateFiles []string
	Evidence       []*Evidence
	Answer         string
}

// Answer is the response of the pipeline's single entry point.
type Answer struct {
	Intent   Intent      `json:"intent"`
	Text     string      `json:"answer"`
	Evidence []*Evidence `json:"evidence"`
	// Chained reports that the lookup stage fed the reasoning stage.
	Chained bool `json:"chained,omitempty"`
}
