package harness

// Result is the outcome of one scenario.
type Result struct {
	// Pass is true when every case met its expectations.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors lists every failed expectation, prefixed with the case name.
	Errors []string `json:"errors,omitempty"`
}

// CaseResult records what one case actually produced.
type CaseResult struct {
	Name        string   `json:"name"`
	Input       string   `json:"input"`
	Tree        string   `json:"tree"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Query       string   `json:"query,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
