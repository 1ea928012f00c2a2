// Package pool keeps one logged-in judge session per configured account and
// spreads submissions over them round-robin.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/programme-lv/ojuzman/internal/ojuz"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoUsableAccounts = errors.New("pool: could not log in with any of the configured accounts")
	ErrNotInitialized   = errors.New("pool: no logged in sessions")
)

type Manager struct {
	site ojuz.Site
	opts ojuz.Options
	log  *slog.Logger

	mu       sync.RWMutex
	created  []*ojuz.Session // every session ever opened, for Shutdown
	sessions []*ojuz.Session // logged in, configuration order

	byName *xsync.MapOf[string, *ojuz.Session]

	// submissions counts Submit calls; its value modulo the pool size picks
	// the session.
	submissions atomic.Uint64
}

func New(site ojuz.Site, opts ojuz.Options, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		site:   site,
		opts:   opts,
		log:    log,
		byName: xsync.NewMapOf[string, *ojuz.Session](),
	}
}

// Initialize logs in every account concurrently and keeps the ones that
// succeeded, in the order they were configured. Accounts that fail are not
// retried later. Sessions of a previous Initialize are closed first.
func (m *Manager) Initialize(ctx context.Context, creds []ojuz.Credential) error {
	if err := m.Shutdown(ctx); err != nil {
		return err
	}

	all := make([]*ojuz.Session, len(creds))
	for i, cred := range creds {
		all[i] = ojuz.New(cred, m.site, m.opts, m.log)
	}
	m.mu.Lock()
	m.created = append(m.created, all...)
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range all {
		g.Go(func() error {
			if err := s.AcquireConnection(); err != nil {
				return fmt.Errorf("failed to open session for %s: %w", s.Username(), err)
			}
			// login failures only exclude the account
			_, _ = s.LoginWithRetries(gctx, m.opts.LoginAttempts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logged := make([]*ojuz.Session, 0, len(all))
	usernames := make([]string, 0, len(all))
	for _, s := range all {
		if !s.Authenticated() {
			m.log.Warn("account could not log in", "account", s.Username())
			s.Close()
			continue
		}
		logged = append(logged, s)
		usernames = append(usernames, s.Username())
		m.byName.Store(s.Username(), s)
	}

	m.mu.Lock()
	m.sessions = logged
	m.mu.Unlock()

	if len(logged) == 0 {
		return ErrNoUsableAccounts
	}
	m.log.Info("accounts logged in and ready to use", "accounts", usernames)
	return nil
}

// Shutdown closes every session this manager opened and resets the
// round-robin counter. It is safe after a failed Initialize.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	created := m.created
	m.created = nil
	m.sessions = nil
	m.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, s := range created {
		g.Go(func() error {
			s.Close()
			return nil
		})
	}
	err := g.Wait()

	m.byName.Clear()
	m.submissions.Store(0)
	return err
}

func (m *Manager) snapshot() []*ojuz.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions
}

// next reserves the session for one submission. The counter is advanced
// with a single atomic add so concurrent callers never share a slot.
func (m *Manager) next() (*ojuz.Session, error) {
	sessions := m.snapshot()
	if len(sessions) == 0 {
		return nil, ErrNotInitialized
	}
	n := m.submissions.Add(1) - 1
	return sessions[n%uint64(len(sessions))], nil
}

// Submit hands the solution to the next session in round-robin order.
// Errors of that session are returned as is; there is no pool level
// retry.
func (m *Manager) Submit(ctx context.Context, problem, code string) (*ojuz.Submission, error) {
	s, err := m.next()
	if err != nil {
		return nil, err
	}
	m.log.Debug("routing submission", "account", s.Username(), "problem", problem)
	return s.Submit(ctx, problem, code, true)
}

// verdict lookups are not tied to an account but need a logged in one
func (m *Manager) first() (*ojuz.Session, error) {
	sessions := m.snapshot()
	if len(sessions) == 0 {
		return nil, ErrNotInitialized
	}
	return sessions[0], nil
}

func (m *Manager) QueryVerdict(ctx context.Context, trackingID string) (*ojuz.Verdict, error) {
	s, err := m.first()
	if err != nil {
		return nil, err
	}
	return s.QueryVerdict(ctx, trackingID)
}

func (m *Manager) VerdictDetails(ctx context.Context, trackingID string) (string, error) {
	s, err := m.first()
	if err != nil {
		return "", err
	}
	return s.VerdictDetails(ctx, trackingID)
}

func (m *Manager) Size() int { return len(m.snapshot()) }

// Usernames of the logged in sessions in round-robin order.
func (m *Manager) Usernames() []string {
	sessions := m.snapshot()
	res := make([]string, len(sessions))
	for i, s := range sessions {
		res[i] = s.Username()
	}
	return res
}

func (m *Manager) Session(username string) (*ojuz.Session, bool) {
	return m.byName.Load(username)
}
