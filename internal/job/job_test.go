package job

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/bakehub/internal/async"
	"github.com/creamcroissant/bakehub/internal/notifier"
	"github.com/creamcroissant/bakehub/internal/repository"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingJob struct {
	mu    sync.Mutex
	runs  int
	name  string
	fails bool
}

func (j *countingJob) Name() string { return j.name }
func (j *countingJob) Run(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	if j.fails {
		return errors.New("boom")
	}
	return nil
}

func TestSchedulerRegisterAndRunNow(t *testing.T) {
	s := NewScheduler(quiet)
	a := &countingJob{name: "b.job"}
	b := &countingJob{name: "a.job", fails: true}
	require.NoError(t, s.Register("@every 1h", a))
	require.NoError(t, s.Register("0 0 * * *", b))
	assert.Error(t, s.Register("@every 1h", a))
	assert.Error(t, s.Register("not a spec", &countingJob{name: "c"}))
	assert.Error(t, s.Register("", &countingJob{name: "d"}))

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.job", entries[0].Name)
	assert.Equal(t, "@every 1h", entries[1].Spec)

	require.NoError(t, s.RunNow(context.Background(), "b.job"))
	assert.Equal(t, 1, a.runs)
	assert.Error(t, s.RunNow(context.Background(), "a.job"))
	assert.Error(t, s.RunNow(context.Background(), "missing"))

	s.Start()
	<-s.Stop().Done()
}

type flakyNotifier struct {
	failures map[string]int
	sent     []string
}

func (n *flakyNotifier) SendEmail(_ context.Context, req notifier.EmailRequest) error {
	if n.failures[req.To] > 0 {
		n.failures[req.To]--
		return errors.New("temporary")
	}
	n.sent = append(n.sent, req.To)
	return nil
}

func TestSendEmailJobRetries(t *testing.T) {
	q := async.NewNotificationQueue(0)
	q.EnqueueEmail(notifier.EmailRequest{To: "ok@x.io"})
	q.EnqueueEmail(notifier.EmailRequest{To: "flaky@x.io"})
	q.EnqueueEmail(notifier.EmailRequest{To: "down@x.io"})

	n := &flakyNotifier{failures: map[string]int{"flaky@x.io": 1, "down@x.io": 100}}
	j := NewSendEmailJob(q, n, quiet, 2)
	j.InitialInterval = time.Millisecond

	err := j.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"ok@x.io", "flaky@x.io"}, n.sent)
	assert.Equal(t, 1, q.PendingEmails())
}

func TestSendEmailJobAbandonsAfterMaxAttempts(t *testing.T) {
	q := async.NewNotificationQueue(0)
	q.EnqueueEmail(notifier.EmailRequest{To: "bounce@x.io"})

	n := &flakyNotifier{failures: map[string]int{"bounce@x.io": 100}}
	j := NewSendEmailJob(q, n, quiet, 0)
	j.InitialInterval = time.Millisecond
	j.MaxAttempts = 3

	for run := 1; run < 3; run++ {
		require.Error(t, j.Run(context.Background()))
		pending := q.DrainEmails()
		require.Len(t, pending, 1)
		assert.Equal(t, run, pending[0].Attempts)
		q.RequeueEmails(pending)
	}

	err := j.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 abandoned")
	assert.Zero(t, q.PendingEmails())
	assert.Empty(t, n.sent)
}

func TestSendEmailJobDropsWithoutTransport(t *testing.T) {
	q := async.NewNotificationQueue(0)
	q.EnqueueEmail(notifier.EmailRequest{To: "baker@x.io"})
	j := NewSendEmailJob(q, notifier.NewLoggerService(nil), quiet, 3)
	require.NoError(t, j.Run(context.Background()))
	assert.Zero(t, q.PendingEmails())
}

type fakeTokens struct {
	repository.TokenRepository
	before int64
}

func (f *fakeTokens) DeleteExpired(_ context.Context, before int64) (int64, error) {
	f.before = before
	return 2, nil
}

type fakeLoginLogs struct {
	repository.LoginLogRepository
	before int64
}

func (f *fakeLoginLogs) DeleteBefore(_ context.Context, before int64) (int64, error) {
	f.before = before
	return 1, nil
}

func TestCleanupJobs(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)

	tokens := &fakeTokens{}
	tj := NewTokenCleanupJob(tokens, quiet)
	tj.now = func() time.Time { return now }
	require.NoError(t, tj.Run(context.Background()))
	assert.Equal(t, now.Unix(), tokens.before)

	logs := &fakeLoginLogs{}
	lj := NewLoginLogCleanupJob(logs, 0, quiet)
	lj.now = func() time.Time { return now }
	require.NoError(t, lj.Run(context.Background()))
	assert.Equal(t, now.Add(-DefaultLoginLogRetention).Unix(), logs.before)

	assert.Error(t, (&TokenCleanupJob{}).Run(context.Background()))
}
