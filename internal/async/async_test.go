package async

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/bakehub/internal/notifier"
)

func TestNotificationQueue(t *testing.T) {
	q := NewNotificationQueue(2)
	q.EnqueueEmail(notifier.EmailRequest{To: "a@x.io"})
	q.EnqueueEmail(notifier.EmailRequest{})
	q.EnqueueEmail(notifier.EmailRequest{To: "b@x.io"})
	q.EnqueueEmail(notifier.EmailRequest{To: "c@x.io"})
	assert.Equal(t, 2, q.PendingEmails())
	assert.Equal(t, 1, q.Dropped())

	drained := q.DrainEmails()
	require.Len(t, drained, 2)
	assert.Equal(t, "b@x.io", drained[0].To)
	assert.Zero(t, q.PendingEmails())

	q.EnqueueEmail(notifier.EmailRequest{To: "d@x.io"})
	q.RequeueEmails(drained[:1])
	drained = q.DrainEmails()
	require.Len(t, drained, 2)
	assert.Equal(t, "b@x.io", drained[0].To)
	assert.Equal(t, "d@x.io", drained[1].To)
}

func TestRequeueKeepsCapacity(t *testing.T) {
	q := NewNotificationQueue(3)
	q.EnqueueEmail(notifier.EmailRequest{To: "new1@x.io"})
	q.EnqueueEmail(notifier.EmailRequest{To: "new2@x.io"})

	q.RequeueEmails([]notifier.EmailRequest{{To: "old1@x.io"}, {To: "old2@x.io"}})
	assert.Equal(t, 3, q.PendingEmails())
	assert.Equal(t, 1, q.Dropped())

	drained := q.DrainEmails()
	require.Len(t, drained, 3)
	assert.Equal(t, "old2@x.io", drained[0].To)
	assert.Equal(t, "new2@x.io", drained[2].To)
}

func TestQueueNotifier(t *testing.T) {
	q := NewNotificationQueue(0)
	n := NewQueueNotifier(q)
	require.NoError(t, n.SendEmail(context.Background(), notifier.EmailRequest{To: "baker@x.io", Subject: "hi"}))
	assert.Equal(t, 1, q.PendingEmails())
	assert.Error(t, n.SendEmail(context.Background(), notifier.EmailRequest{}))

	var nilNotifier *QueueNotifier
	assert.Error(t, nilNotifier.SendEmail(context.Background(), notifier.EmailRequest{To: "x@y.z"}))
}
