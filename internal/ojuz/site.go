package ojuz

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Site holds every judge-specific path and marker the session relies on.
// The markers are heuristics over server-rendered text and are kept
// configurable for when the judge changes its pages.
type Site struct {
	BaseURL            string
	LoginPath          string
	ViewPagePrefix     string
	SubmitPagePrefix   string
	TokenField         string
	LoginSuccessMarker string
	Language           string
	SummaryPath        string
	TokenPage          string
	DetailsElementID   string
}

func DefaultSite() Site {
	return Site{
		BaseURL:            "https://oj.uz",
		LoginPath:          "/login?next=/?",
		ViewPagePrefix:     "/problem/view",
		SubmitPagePrefix:   "/problem/submit",
		TokenField:         "csrf_token",
		LoginSuccessMarker: "Sign out",
		Language:           "9", // C++17
		SummaryPath:        "/submission/summary/1",
		TokenPage:          "/problem/submit/APIO13_interference",
		DetailsElementID:   "submission_details",
	}
}

// Options tune retry behaviour of a single session.
type Options struct {
	LoginAttempts        int
	SoftBlockCooldown    time.Duration
	SoftBlockMaxCooldown time.Duration
	SoftBlockMaxAttempts int
	RequestTimeout       time.Duration
	UserAgent            string
}

func DefaultOptions() Options {
	return Options{
		LoginAttempts:        3,
		SoftBlockCooldown:    10 * time.Second,
		SoftBlockMaxCooldown: 2 * time.Minute,
		SoftBlockMaxAttempts: 5,
		RequestTimeout:       30 * time.Second,
		UserAgent:            "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:103.0) Gecko/20100101 Firefox/103.0",
	}
}

func (s Site) base() string { return strings.TrimRight(s.BaseURL, "/") }

// LoginURL is both the page carrying the login form and the POST target.
func (s Site) LoginURL() string { return s.base() + s.LoginPath }

// loginPagePrefix matches any landing on the login page regardless of the
// "next" query the judge appends.
func (s Site) loginPagePrefix() string { return s.base() + "/login" }

func (s Site) submitPagePrefix() string { return s.base() + s.SubmitPagePrefix }

func (s Site) SummaryURL() string { return s.base() + s.SummaryPath }

func (s Site) TokenPageURL() string { return s.base() + s.TokenPage }

func (s Site) SubmissionURL(trackingID string) string {
	return s.base() + "/submission/" + url.PathEscape(trackingID)
}

// SubmitURL derives the submission endpoint from a problem reference which
// is either a problem page URL or a bare problem identifier such as
// "IOI18_combo".
func (s Site) SubmitURL(problem string) (string, error) {
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return "", fmt.Errorf("empty problem reference")
	}
	if !strings.Contains(problem, "://") {
		return s.submitPagePrefix() + "/" + url.PathEscape(strings.Trim(problem, "/")), nil
	}
	u, err := url.Parse(problem)
	if err != nil {
		return "", fmt.Errorf("failed to parse problem url %s: %w", problem, err)
	}
	view := strings.Trim(s.ViewPagePrefix, "/")
	submit := strings.Trim(s.SubmitPagePrefix, "/")
	// just "view"->"submit" would be ambiguous
	u.Path = strings.Replace(u.Path, view, submit, 1)
	if !strings.Contains(u.Path, submit) {
		return "", fmt.Errorf("problem url %s is neither a view nor a submit page", problem)
	}
	return u.String(), nil
}
