package submitter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal/ojuz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	kind string
	arg  string
}

type recorder struct {
	events []event
}

func (r *recorder) StartSubmit(problem string) { r.events = append(r.events, event{"start", problem}) }
func (r *recorder) FinishSubmit(sub *ojuz.Submission) {
	r.events = append(r.events, event{"finish", sub.ID})
}
func (r *recorder) FailSubmit(msg string)         { r.events = append(r.events, event{"fail", msg}) }
func (r *recorder) UpdateVerdict(v *ojuz.Verdict) { r.events = append(r.events, event{"verdict", v.Text}) }
func (r *recorder) FinishWatch()                  { r.events = append(r.events, event{"watch_done", ""}) }

type fakePool struct {
	submitErr error
	verdicts  []*ojuz.Verdict
	queryErrs []error
	polls     int
}

func (f *fakePool) Submit(ctx context.Context, problem, code string) (*ojuz.Submission, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &ojuz.Submission{Account: "alice", ID: "4242", URL: "https://oj.uz/submission/4242"}, nil
}

func (f *fakePool) QueryVerdict(ctx context.Context, id string) (*ojuz.Verdict, error) {
	i := f.polls
	f.polls++
	if i < len(f.queryErrs) && f.queryErrs[i] != nil {
		return nil, f.queryErrs[i]
	}
	if i >= len(f.verdicts) {
		i = len(f.verdicts) - 1
	}
	v := *f.verdicts[i]
	return &v, nil
}

func newTestSubmitter(p Pool, maxPolls int) *Submitter {
	s := New(p, WatchOptions{
		Interval:       time.Second,
		MaxPolls:       maxPolls,
		PendingMarkers: []string{"pending", "judging"},
	}, nil)
	s.wait = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return s
}

var req = api.SubmitReq{Uuid: "u-1", Problem: "APIO13_interference", Code: "int main(){}"}

func TestProcessWithoutWatch(t *testing.T) {
	p := &fakePool{}
	r := &recorder{}
	require.NoError(t, newTestSubmitter(p, 10).Process(context.Background(), req, r))

	assert.Equal(t, []event{{"start", "APIO13_interference"}, {"finish", "4242"}}, r.events)
	assert.Zero(t, p.polls)
}

func TestProcessSubmitFailure(t *testing.T) {
	p := &fakePool{submitErr: ojuz.ErrSoftBlocked}
	r := &recorder{}
	w := req
	w.Watch = true

	err := newTestSubmitter(p, 10).Process(context.Background(), w, r)

	require.ErrorIs(t, err, ojuz.ErrSoftBlocked)
	require.Len(t, r.events, 2)
	assert.Equal(t, "fail", r.events[1].kind)
	assert.Zero(t, p.polls)
}

func TestProcessRejectsEmptyRequest(t *testing.T) {
	r := &recorder{}
	err := newTestSubmitter(&fakePool{}, 10).Process(context.Background(), api.SubmitReq{Problem: "X"}, r)

	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, "fail", r.events[len(r.events)-1].kind)
}

func TestWatchStopsWhenFinalAndSkipsRepeats(t *testing.T) {
	p := &fakePool{verdicts: []*ojuz.Verdict{
		{Text: "Pending"},
		{Text: "Pending"},
		{Text: "Judging 3/10"},
		{Text: "Accepted", Score: "100"},
		{Text: "never reached"},
	}}
	r := &recorder{}
	w := req
	w.Watch = true

	require.NoError(t, newTestSubmitter(p, 10).Process(context.Background(), w, r))

	assert.Equal(t, 4, p.polls)
	assert.Equal(t, []event{
		{"start", "APIO13_interference"},
		{"finish", "4242"},
		{"verdict", "Pending"},
		{"verdict", "Judging 3/10"},
		{"verdict", "Accepted"},
		{"watch_done", ""},
	}, r.events)
}

func TestWatchGivesUpAfterMaxPolls(t *testing.T) {
	p := &fakePool{verdicts: []*ojuz.Verdict{{Text: "Pending"}}}
	r := &recorder{}
	w := req
	w.Watch = true

	require.NoError(t, newTestSubmitter(p, 3).Process(context.Background(), w, r))

	assert.Equal(t, 3, p.polls)
	assert.Equal(t, event{"verdict", "Pending"}, r.events[2])
	assert.Equal(t, event{"watch_done", ""}, r.events[len(r.events)-1])
	assert.Len(t, r.events, 4)
}

func TestWatchToleratesPollErrors(t *testing.T) {
	p := &fakePool{
		verdicts:  []*ojuz.Verdict{{Text: "Accepted"}},
		queryErrs: []error{errors.New("timeout"), errors.New("bad gateway")},
	}
	r := &recorder{}
	w := req
	w.Watch = true

	require.NoError(t, newTestSubmitter(p, 5).Process(context.Background(), w, r))

	assert.Equal(t, 3, p.polls)
	assert.Equal(t, event{"verdict", "Accepted"}, r.events[2])
}

func TestWatchHonoursCancellation(t *testing.T) {
	p := &fakePool{verdicts: []*ojuz.Verdict{{Text: "Pending"}}}
	r := &recorder{}
	w := req
	w.Watch = true

	ctx, cancel := context.WithCancel(context.Background())
	s := newTestSubmitter(p, 10)
	s.wait = func(ctx context.Context, d time.Duration) error {
		if p.polls == 2 {
			cancel()
		}
		return ctx.Err()
	}

	err := s.Process(ctx, w, r)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, p.polls)
	assert.Equal(t, event{"watch_done", ""}, r.events[len(r.events)-1])
}
