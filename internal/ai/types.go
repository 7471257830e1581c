package ai

// Verdict is the safety judgement for one venue's reviews.
type Verdict struct {
	RedFlags []string `json:"red_flags"`
	Safe     bool     `json:"safe"`
	Summary  string   `json:"summary"`
}
