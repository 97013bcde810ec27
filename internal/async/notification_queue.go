// Package async buffers work handed off by request handlers to background jobs.
package async

import (
	"sync"

	"github.com/creamcroissant/bakehub/internal/notifier"
)

// NotificationQueue buffers outbound emails until the notify.email job drains them.
type NotificationQueue struct {
	mu       sync.Mutex
	emails   []notifier.EmailRequest
	capacity int
	dropped  int
}

// NewNotificationQueue returns a queue holding at most capacity emails;
// zero means unbounded.
func NewNotificationQueue(capacity int) *NotificationQueue {
	return &NotificationQueue{capacity: capacity}
}

// EnqueueEmail appends a request, dropping the oldest when full.
func (q *NotificationQueue) EnqueueEmail(req notifier.EmailRequest) {
	if q == nil || req.To == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && len(q.emails) >= q.capacity {
		q.emails = q.emails[1:]
		q.dropped++
	}
	q.emails = append(q.emails, req)
}

// DrainEmails returns all pending requests and clears the buffer.
func (q *NotificationQueue) DrainEmails() []notifier.EmailRequest {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.emails
	q.emails = nil
	return drained
}

// RequeueEmails puts undelivered requests back in front of the queue. The
// capacity still applies; the oldest requests are evicted first.
func (q *NotificationQueue) RequeueEmails(reqs []notifier.EmailRequest) {
	if q == nil || len(reqs) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	merged := make([]notifier.EmailRequest, 0, len(reqs)+len(q.emails))
	merged = append(append(merged, reqs...), q.emails...)
	if q.capacity > 0 && len(merged) > q.capacity {
		over := len(merged) - q.capacity
		q.dropped += over
		merged = merged[over:]
	}
	q.emails = merged
}

// PendingEmails reports buffered requests.
func (q *NotificationQueue) PendingEmails() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.emails)
}

// Dropped reports how many requests were evicted because the queue was full.
func (q *NotificationQueue) Dropped() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
