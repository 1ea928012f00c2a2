package api

type SubmitStatus string

const (
	Accepted SubmitStatus = "accepted"
	Failed   SubmitStatus = "failed"
)

// SubmitResp is the complete, non-streaming outcome of a SubmitReq.
type SubmitResp struct {
	Uuid    string       `json:"uuid"`
	Problem string       `json:"problem"`
	Status  SubmitStatus `json:"status"`

	Submission   *Submission `json:"submission,omitempty"`
	ErrorMessage *string     `json:"error_message,omitempty"`

	// Verdict is the last verdict seen while watching.
	Verdict       *Verdict `json:"verdict,omitempty"`
	VerdictUpdates int     `json:"verdict_updates"`
	WatchFinished bool     `json:"watch_finished"`

	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`
}
