package ojuz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Value is a scalar the judge sends either as a json string or a number.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Value(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("unsupported verdict value %s", data)
	}
	*v = Value(strconv.FormatBool(b))
	return nil
}

// Verdict is the judge's summary of a submission.
type Verdict struct {
	CompilationMessage     string  `json:"compilation_message"`
	EvaluatingSubtaskOrder []Value `json:"evaluating_subtask_order"`
	FullScore              Value   `json:"full_score"`
	Score                  Value   `json:"score"`
	MaxExecutionTime       Value   `json:"max_execution_time"`
	MaxMemory              Value   `json:"max_memory"`
	Text                   string  `json:"text"`
}

// Pending reports whether the summary text still contains one of the
// in-progress markers.
func (v *Verdict) Pending(markers []string) bool {
	text := strings.ToLower(v.Text)
	for _, m := range markers {
		if m != "" && strings.Contains(text, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func (v *Verdict) Equal(o *Verdict) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.CompilationMessage == o.CompilationMessage &&
		slices.Equal(v.EvaluatingSubtaskOrder, o.EvaluatingSubtaskOrder) &&
		v.FullScore == o.FullScore &&
		v.Score == o.Score &&
		v.MaxExecutionTime == o.MaxExecutionTime &&
		v.MaxMemory == o.MaxMemory &&
		v.Text == o.Text
}

// QueryVerdict asks the judge for the summary of a submission. It may be
// called on a session that was never explicitly started.
func (s *Session) QueryVerdict(ctx context.Context, trackingID string) (*Verdict, error) {
	if err := s.AcquireConnection(); err != nil {
		return nil, err
	}

	// the summary endpoint wants a token, any form page will do
	token, err := s.FetchToken(ctx, s.site.TokenPageURL())
	if err != nil {
		return nil, fmt.Errorf("failed to get summary token: %w", err)
	}
	form := url.Values{
		"submission_id":   {trackingID},
		s.site.TokenField: {token},
	}
	summaryURL := s.site.SummaryURL()
	resp, err := s.post(ctx, summaryURL, form, map[string]string{
		"Referer":          s.site.SubmissionURL(trackingID),
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"X-Requested-With": "XMLHttpRequest",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, &ProtocolError{URL: summaryURL, Reason: fmt.Sprintf("status %d", resp.status)}
	}

	var v Verdict
	if err := json.Unmarshal(resp.body, &v); err != nil {
		return nil, &ProtocolError{URL: summaryURL, Reason: "bad summary json: " + err.Error()}
	}
	return &v, nil
}

// VerdictDetails returns the html of the per-test details table of a
// submission.
func (s *Session) VerdictDetails(ctx context.Context, trackingID string) (string, error) {
	pageURL := s.site.SubmissionURL(trackingID)
	resp, err := s.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", &ProtocolError{URL: pageURL, Reason: fmt.Sprintf("status %d", resp.status)}
	}
	return findElementHTML(resp.body, s.site.DetailsElementID, pageURL)
}
