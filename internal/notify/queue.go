package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

// Publisher 由 *amqp.Channel 实现
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Queue 把通知发布到 RabbitMQ，由 notify-mailer 消费
type Queue struct {
	ch      Publisher
	queue   string
	timeout time.Duration
	now     func() time.Time
}

func NewQueue(ch Publisher, queue string, timeout time.Duration) *Queue {
	return &Queue{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
		now:     time.Now,
	}
}

func (q *Queue) Notify(kind domain.NotificationKind, message string) {
	n := domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: q.now(),
	}

	body, err := json.Marshal(n)
	if err != nil {
		slog.Error("通知序列化失败", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.ch.PublishWithContext(
		ctx,
		"",
		q.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    n.ID,
			Timestamp:    n.CreatedAt,
			Body:         body,
		},
	); err != nil {
		// 通知只是旁路，发布失败不能影响调用方
		slog.Error("无法发布通知", "queue", q.queue, "error", err)
	}
}
