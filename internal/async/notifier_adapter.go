// 文件路径: internal/async/notifier_adapter.go
// 模块说明: 这是 internal 模块里的 notifier_adapter 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package async

import (
	"context"
	"fmt"

	"github.com/creamcroissant/bakehub/internal/notifier"
)

// QueueNotifier implements notifier.Service by enqueueing requests for the email job.
type QueueNotifier struct {
	queue *NotificationQueue
}

// NewQueueNotifier wraps queue as a notifier.Service.
func NewQueueNotifier(queue *NotificationQueue) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) SendEmail(_ context.Context, req notifier.EmailRequest) error {
	if n == nil || n.queue == nil {
		return fmt.Errorf("notification queue unavailable / 通知队列不可用")
	}
	if err := req.Validate(); err != nil {
		return err
	}
	n.queue.EnqueueEmail(req)
	return nil
}
