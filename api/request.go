package api

// SubmitReq asks the pool to submit Code to Problem on the judge.
// Problem is either a bare problem id ("APIO13_interference") or a
// problem view/submit URL.
type SubmitReq struct {
	Uuid string `json:"uuid"`

	Problem string `json:"problem"`
	Code    string `json:"code"`

	// Watch keeps polling the verdict after a successful submit.
	Watch bool `json:"watch"`

	// ResSqsUrl overrides the response queue for SQS transports.
	ResSqsUrl *string `json:"res_sqs_url,omitempty"`
}
