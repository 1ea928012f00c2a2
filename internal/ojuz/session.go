package ojuz

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/lmittmann/tint"
	"golang.org/x/net/publicsuffix"
)

// Credential is a judge account. It never changes for the lifetime of a
// session.
type Credential struct {
	Username string
	Password string
}

// Session is one account's cookie-bound connection to the judge.
//
// Authenticated is only a hint: the judge may expire the session at any
// time and we find out on the next submit.
type Session struct {
	cred Credential
	site Site
	opts Options
	log  *slog.Logger

	mu     sync.Mutex
	client *http.Client

	authenticated atomic.Bool

	// wait blocks for a soft-block cooldown; replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

func New(cred Credential, site Site, opts Options, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		cred: cred,
		site: site,
		opts: opts,
		log:  log.With("account", cred.Username),
		wait: sleepCtx,
	}
}

func (s *Session) Username() string { return s.cred.Username }

func (s *Session) Authenticated() bool { return s.authenticated.Load() }

func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// AcquireConnection sets up the cookie jar and transport if the session has
// none. Calling it on an open session is a no-op.
func (s *Session) AcquireConnection() error {
	_, err := s.httpClient()
	return err
}

func (s *Session) httpClient() (*http.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	s.client = &http.Client{
		Transport: gzhttp.Transport(transport),
		Jar:       jar,
		Timeout:   s.opts.RequestTimeout,
	}
	s.log.Debug("session started")
	return s.client, nil
}

// Close drops idle connections and the cookie jar. The session can be
// reopened with AcquireConnection but has to log in again.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return
	}
	s.client.CloseIdleConnections()
	s.client = nil
	s.authenticated.Store(false)
	s.log.Debug("session closed")
}

type response struct {
	status  int
	landing *url.URL
	body    []byte
}

func (s *Session) get(ctx context.Context, target string) (*response, error) {
	return s.do(ctx, http.MethodGet, target, nil, nil)
}

func (s *Session) post(ctx context.Context, target string, form url.Values, headers map[string]string) (*response, error) {
	return s.do(ctx, http.MethodPost, target, form, headers)
}

func (s *Session) do(ctx context.Context, method, target string, form url.Values, headers map[string]string) (*response, error) {
	client, err := s.httpClient()
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request %s %s: %w", method, target, err)
	}
	req.Header = mergeHeaders(s.opts.UserAgent, headers)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read " + method, URL: target, Err: err}
	}
	return &response{
		status:  resp.StatusCode,
		landing: resp.Request.URL,
		body:    data,
	}, nil
}

// Login posts the account credentials and records whether the judge now
// shows us as signed in. A rejected password is (false, nil); only network
// and page-shape problems are errors. The previous state is always
// overwritten.
func (s *Session) Login(ctx context.Context) (bool, error) {
	loginURL := s.site.LoginURL()
	token, err := s.FetchToken(ctx, loginURL)
	if err != nil {
		s.authenticated.Store(false)
		return false, fmt.Errorf("failed to get login token: %w", err)
	}

	form := url.Values{
		"next":             {"/?", "/?"},
		"email":            {s.cred.Username},
		"password":         {s.cred.Password},
		"submit":           {"Sign in"},
		s.site.TokenField: {token},
	}
	resp, err := s.post(ctx, loginURL, form, map[string]string{"Referer": loginURL})
	if err != nil {
		s.authenticated.Store(false)
		return false, err
	}

	ok := strings.Contains(string(resp.body), s.site.LoginSuccessMarker)
	s.authenticated.Store(ok)
	s.log.Info("login attempt", "logged_in", ok)
	return ok, nil
}

// LoginWithRetries calls Login until it succeeds or attempts run out.
// Errors of individual attempts are absorbed; the last one is returned only
// when no attempt succeeded.
func (s *Session) LoginWithRetries(ctx context.Context, attempts int) (bool, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		ok, err := s.Login(ctx)
		if ok {
			return true, nil
		}
		if err != nil {
			lastErr = err
			s.log.Warn("login attempt failed", "attempt", i+1, tint.Err(err))
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
	}
	return s.Authenticated(), lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
