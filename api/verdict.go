package api

// Submission identifies an accepted submission on the judge.
type Submission struct {
	Account    string `json:"account"`
	TrackingID string `json:"tracking_id"`
	URL        string `json:"url"`
}

// Verdict is the judge's summary of a submission. Numeric fields are kept
// as the judge rendered them.
type Verdict struct {
	Text               string   `json:"text"`
	Score              string   `json:"score"`
	FullScore          string   `json:"full_score"`
	MaxExecutionTime   string   `json:"max_execution_time"`
	MaxMemory          string   `json:"max_memory"`
	SubtaskOrder       []string `json:"subtask_order"`
	CompilationMessage string   `json:"compilation_message"`
}
