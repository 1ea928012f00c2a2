package ojuz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/programme-lv/ojuzman/internal/ojuz"
	"github.com/programme-lv/ojuzman/internal/testutil/fakejudge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aliceCode = `#include <iostream>
int main() { std::cout << "hi" << std::endl; }
`

func newJudge(t *testing.T) *fakejudge.Judge {
	return fakejudge.New(t, map[string]string{
		"alice": "alice-pass",
		"bob":   "bob-pass",
	})
}

func testSite(judge *fakejudge.Judge) ojuz.Site {
	site := ojuz.DefaultSite()
	site.BaseURL = judge.URL()
	return site
}

func testOptions() ojuz.Options {
	opts := ojuz.DefaultOptions()
	opts.SoftBlockCooldown = time.Millisecond
	opts.SoftBlockMaxCooldown = 4 * time.Millisecond
	opts.RequestTimeout = 5 * time.Second
	return opts
}

func newSession(t *testing.T, judge *fakejudge.Judge, user, pass string) *ojuz.Session {
	s := ojuz.New(ojuz.Credential{Username: user, Password: pass}, testSite(judge), testOptions(), nil)
	require.NoError(t, s.AcquireConnection())
	t.Cleanup(s.Close)
	return s
}

func loggedIn(t *testing.T, judge *fakejudge.Judge) *ojuz.Session {
	s := newSession(t, judge, "alice", "alice-pass")
	ok, err := s.Login(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return s
}

func TestFetchTokenIsStable(t *testing.T) {
	judge := newJudge(t)
	s := newSession(t, judge, "alice", "alice-pass")
	ctx := context.Background()

	site := testSite(judge)
	first, err := s.FetchToken(ctx, site.LoginURL())
	require.NoError(t, err)
	second, err := s.FetchToken(ctx, site.LoginURL())
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestFetchTokenMissingField(t *testing.T) {
	judge := newJudge(t)
	judge.OmitTokens(true)
	s := newSession(t, judge, "alice", "alice-pass")

	_, err := s.FetchToken(context.Background(), testSite(judge).LoginURL())
	var perr *ojuz.ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, fakejudge.TokenField)
}

func TestLogin(t *testing.T) {
	judge := newJudge(t)
	s := newSession(t, judge, "alice", "alice-pass")
	require.False(t, s.Authenticated())

	ok, err := s.Login(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.Authenticated())
	assert.Equal(t, 1, judge.LoginPosts("alice"))
}

func TestLoginWrongPassword(t *testing.T) {
	judge := newJudge(t)
	s := newSession(t, judge, "alice", "wrong")

	ok, err := s.Login(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.Authenticated())
}

func TestLoginOverwritesPreviousState(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)

	judge.OmitTokens(true)
	ok, err := s.Login(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
	assert.False(t, s.Authenticated())
}

func TestLoginWithRetries(t *testing.T) {
	judge := newJudge(t)

	good := newSession(t, judge, "alice", "alice-pass")
	ok, err := good.LoginWithRetries(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, judge.LoginPosts("alice"))

	bad := newSession(t, judge, "bob", "nope")
	ok, err = bad.LoginWithRetries(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, judge.LoginPosts("bob"))
}

func TestLoginTransportError(t *testing.T) {
	site := ojuz.DefaultSite()
	site.BaseURL = "http://127.0.0.1:1"
	s := ojuz.New(ojuz.Credential{Username: "alice", Password: "x"}, site, testOptions(), nil)
	defer s.Close()

	ok, err := s.LoginWithRetries(context.Background(), 2)
	assert.False(t, ok)
	var terr *ojuz.TransportError
	require.ErrorAs(t, err, &terr)
}

func TestSubmitReturnsTrackingID(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)

	sub, err := s.Submit(context.Background(), judge.URL()+"/problem/view/IOI18_combo", aliceCode, true)
	require.NoError(t, err)
	assert.Equal(t, "4242", sub.ID)
	assert.Equal(t, "alice", sub.Account)
	assert.Equal(t, judge.URL()+"/submission/4242", sub.URL)

	got := judge.Received()
	require.Len(t, got, 1)
	assert.Equal(t, "IOI18_combo", got[0].Problem)
	assert.Equal(t, "9", got[0].Language)
	assert.Equal(t, aliceCode, got[0].Code)
}

func TestSubmitByProblemID(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)

	sub, err := s.Submit(context.Background(), "APIO13_robots", aliceCode, true)
	require.NoError(t, err)
	assert.Equal(t, "4242", sub.ID)
	assert.Equal(t, "APIO13_robots", judge.Received()[0].Problem)
}

func TestSubmitWithoutLoginRetryShortCircuits(t *testing.T) {
	judge := newJudge(t)
	s := newSession(t, judge, "alice", "alice-pass")

	sub, err := s.Submit(context.Background(), "IOI18_combo", aliceCode, false)
	require.ErrorIs(t, err, ojuz.ErrNotLoggedIn)
	assert.Nil(t, sub)
	assert.Zero(t, judge.TokenGets("/problem/submit/IOI18_combo"))
	assert.Zero(t, judge.SubmitPosts("alice"))
	assert.Zero(t, judge.LoginPosts("alice"))
}

func TestSubmitLogsInFirst(t *testing.T) {
	judge := newJudge(t)
	s := newSession(t, judge, "alice", "alice-pass")

	sub, err := s.Submit(context.Background(), "IOI18_combo", aliceCode, true)
	require.NoError(t, err)
	assert.Equal(t, "4242", sub.ID)
	assert.Equal(t, 1, judge.LoginPosts("alice"))
}

func TestSubmitFailedLoginIsNoResult(t *testing.T) {
	judge := newJudge(t)
	s := newSession(t, judge, "alice", "wrong")

	sub, err := s.Submit(context.Background(), "IOI18_combo", aliceCode, true)
	require.ErrorIs(t, err, ojuz.ErrNotLoggedIn)
	assert.Nil(t, sub)
	assert.Equal(t, 1, judge.LoginPosts("alice"))
	assert.Zero(t, judge.SubmitPosts("alice"))
}

// The client still believes it is logged in, the judge has dropped the
// session.
func TestSubmitRelogsOnceAfterExpiry(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)
	judge.Expire("alice")
	require.True(t, s.Authenticated())

	sub, err := s.Submit(context.Background(), "IOI18_combo", aliceCode, true)
	require.NoError(t, err)
	assert.Equal(t, "4242", sub.ID)
	assert.True(t, s.Authenticated())

	assert.Equal(t, 2, judge.LoginPosts("alice"), "initial login plus exactly one re-login")
	assert.Equal(t, 1, judge.SubmitPosts("alice"), "only the retried submit reaches the judge as a user")
}

func TestSubmitExpiryWithoutRetry(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)
	judge.Expire("alice")

	sub, err := s.Submit(context.Background(), "IOI18_combo", aliceCode, false)
	require.ErrorIs(t, err, ojuz.ErrNotLoggedIn)
	assert.Nil(t, sub)
	assert.False(t, s.Authenticated())
	assert.Equal(t, 1, judge.LoginPosts("alice"))
}

func TestSubmitRelogFailsAfterExpiry(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)
	judge.Expire("alice")
	judge.SetPassword("alice", "rotated")

	sub, err := s.Submit(context.Background(), "IOI18_combo", aliceCode, true)
	require.ErrorIs(t, err, ojuz.ErrNotLoggedIn)
	assert.Nil(t, sub)
	assert.False(t, s.Authenticated())
	assert.Equal(t, 2, judge.LoginPosts("alice"))
	assert.Zero(t, judge.SubmitPosts("alice"))
}

func TestSubmitSoftBlockThenAccepted(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)
	judge.BlockNext(2)

	sub, err := s.Submit(context.Background(), "IOI18_combo", aliceCode, true)
	require.NoError(t, err)
	assert.Equal(t, "4242", sub.ID)
	assert.Equal(t, 3, judge.SubmitPosts("alice"))
	assert.Len(t, judge.Received(), 1)
}

func TestSubmitSoftBlockGivesUp(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)
	judge.BlockNext(100)

	sub, err := s.Submit(context.Background(), "IOI18_combo", aliceCode, true)
	require.ErrorIs(t, err, ojuz.ErrSoftBlocked)
	assert.Nil(t, sub)
	assert.Equal(t, ojuz.DefaultOptions().SoftBlockMaxAttempts, judge.SubmitPosts("alice"))
	assert.Empty(t, judge.Received())
}

func TestSubmitSoftBlockHonoursContext(t *testing.T) {
	judge := newJudge(t)
	opts := testOptions()
	opts.SoftBlockCooldown = time.Hour
	opts.SoftBlockMaxCooldown = time.Hour
	s := ojuz.New(ojuz.Credential{Username: "alice", Password: "alice-pass"}, testSite(judge), opts, nil)
	defer s.Close()
	ok, err := s.Login(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	judge.BlockNext(1)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = s.Submit(ctx, "IOI18_combo", aliceCode, true)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 1, judge.SubmitPosts("alice"))
}

func TestSubmitBadProblemReference(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)

	_, err := s.Submit(context.Background(), "  ", aliceCode, true)
	require.Error(t, err)
	assert.Zero(t, judge.SubmitPosts("alice"))
}

func TestQueryVerdict(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)
	judge.SetVerdict("4242", `{
		"compilation_message": "ok",
		"evaluating_subtask_order": [1, "2"],
		"full_score": 100,
		"max_execution_time": "0.123",
		"max_memory": 2048,
		"score": 37.5,
		"text": "Accepted"
	}`)

	v, err := s.QueryVerdict(context.Background(), "4242")
	require.NoError(t, err)
	assert.Equal(t, "ok", v.CompilationMessage)
	assert.Equal(t, []ojuz.Value{"1", "2"}, v.EvaluatingSubtaskOrder)
	assert.Equal(t, ojuz.Value("100"), v.FullScore)
	assert.Equal(t, ojuz.Value("37.5"), v.Score)
	assert.Equal(t, ojuz.Value("0.123"), v.MaxExecutionTime)
	assert.Equal(t, ojuz.Value("2048"), v.MaxMemory)
	assert.Equal(t, "Accepted", v.Text)
	assert.Equal(t, 1, judge.SummaryHits())
}

func TestQueryVerdictOpensConnectionLazily(t *testing.T) {
	judge := newJudge(t)
	s := ojuz.New(ojuz.Credential{Username: "alice", Password: "alice-pass"}, testSite(judge), testOptions(), nil)
	defer s.Close()
	require.False(t, s.Connected())

	v, err := s.QueryVerdict(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, s.Connected())
	assert.True(t, v.Pending([]string{"pending"}))
}

func TestQueryVerdictBadJSON(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)
	judge.SetVerdict("7", `<html>oops</html>`)

	_, err := s.QueryVerdict(context.Background(), "7")
	var perr *ojuz.ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestVerdictDetails(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)
	sub, err := s.Submit(context.Background(), "IOI18_combo", aliceCode, true)
	require.NoError(t, err)

	table, err := s.VerdictDetails(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Contains(t, table, `id="submission_details"`)
	assert.Contains(t, table, "Accepted")

	_, err = s.VerdictDetails(context.Background(), "999999")
	var perr *ojuz.ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestCloseForgetsLogin(t *testing.T) {
	judge := newJudge(t)
	s := loggedIn(t, judge)

	s.Close()
	assert.False(t, s.Connected())
	assert.False(t, s.Authenticated())
	s.Close()

	require.NoError(t, s.AcquireConnection())
	assert.True(t, s.Connected())
}
