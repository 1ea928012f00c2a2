package ojuz

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// Submission is a solution the judge accepted for evaluation.
type Submission struct {
	Account string `json:"account"`
	ID      string `json:"id"`
	URL     string `json:"url"`
}

type landing int

const (
	landingAccepted landing = iota
	landingLogin
	landingSubmitPage
)

func (l landing) String() string {
	switch l {
	case landingLogin:
		return "login"
	case landingSubmitPage:
		return "submit_page"
	default:
		return "accepted"
	}
}

// classifyLanding decides what the url the submit POST ended up on means.
// Login page: the session expired. Submit page: the judge silently
// refused the submission, usually rate limiting. Anything else is the new
// submission's page.
func (s Site) classifyLanding(u string) landing {
	switch {
	case strings.HasPrefix(u, s.loginPagePrefix()):
		return landingLogin
	case strings.HasPrefix(u, s.submitPagePrefix()):
		return landingSubmitPage
	default:
		return landingAccepted
	}
}

// Submit sends code to the problem and returns the created submission.
//
// When the session is not logged in and retryLogin is set, one login is
// attempted first. If the judge bounces us to the login page, one re-login
// and one more submit (without further re-logins) follow. ErrNotLoggedIn is
// the result when neither helps. A bounce back to the submit page is
// treated as a soft block and retried with growing cooldowns until
// SoftBlockMaxAttempts, after which ErrSoftBlocked is returned.
func (s *Session) Submit(ctx context.Context, problem, code string, retryLogin bool) (*Submission, error) {
	submitURL, err := s.site.SubmitURL(problem)
	if err != nil {
		return nil, err
	}

	blocked := 0
	for {
		if !s.Authenticated() {
			if !retryLogin {
				return nil, ErrNotLoggedIn
			}
			ok, err := s.Login(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrNotLoggedIn
			}
		}

		landed, err := s.postSolution(ctx, submitURL, code)
		if err != nil {
			return nil, err
		}

		switch s.site.classifyLanding(landed.String()) {
		case landingLogin:
			s.authenticated.Store(false)
			s.log.Warn("session expired during submit", "landing", landed.String())
			if !retryLogin {
				return nil, ErrNotLoggedIn
			}
			if _, err := s.Login(ctx); err != nil {
				return nil, err
			}
			return s.Submit(ctx, problem, code, false)

		case landingSubmitPage:
			blocked++
			if blocked >= s.opts.SoftBlockMaxAttempts {
				s.log.Error("judge keeps blocking the submission", "attempts", blocked)
				return nil, fmt.Errorf("%w after %d attempts", ErrSoftBlocked, blocked)
			}
			cooldown := s.cooldown(blocked)
			s.log.Warn("judge blocked the submission", "attempt", blocked, "cooldown", cooldown)
			if err := s.wait(ctx, cooldown); err != nil {
				return nil, err
			}

		default:
			id := trackingID(landed)
			if id == "" {
				return nil, &ProtocolError{URL: landed.String(), Reason: "no submission id in landing url"}
			}
			s.log.Info("submitted solution", "problem", problem, "submission", landed.String())
			return &Submission{
				Account: s.cred.Username,
				ID:      id,
				URL:     landed.String(),
			}, nil
		}
	}
}

func (s *Session) postSolution(ctx context.Context, submitURL, code string) (*url.URL, error) {
	token, err := s.FetchToken(ctx, submitURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get submit token: %w", err)
	}
	form := url.Values{
		"codes":           {"", ""},
		"language":        {s.site.Language},
		"code_1":          {code},
		s.site.TokenField: {token},
	}
	resp, err := s.post(ctx, submitURL, form, map[string]string{"Referer": submitURL})
	if err != nil {
		return nil, err
	}
	return resp.landing, nil
}

// cooldown for the n-th consecutive block, n >= 1.
func (s *Session) cooldown(n int) time.Duration {
	d := s.opts.SoftBlockCooldown
	for i := 1; i < n; i++ {
		d *= 2
		if s.opts.SoftBlockMaxCooldown > 0 && d >= s.opts.SoftBlockMaxCooldown {
			return s.opts.SoftBlockMaxCooldown
		}
	}
	if s.opts.SoftBlockMaxCooldown > 0 && d > s.opts.SoftBlockMaxCooldown {
		return s.opts.SoftBlockMaxCooldown
	}
	return d
}

func trackingID(u *url.URL) string {
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
