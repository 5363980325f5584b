package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
	"github.com/wneessen/go-mail"
)

// Sender 由 *mail.Client 实现
type Sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

// Worker 把队列中的通知转成邮件发给固定的收件人
type Worker struct {
	from   string
	to     string
	sender Sender
}

func New(from, to string, sender Sender) *Worker {
	return &Worker{
		from:   from,
		to:     to,
		sender: sender,
	}
}

var subjects = map[domain.NotificationKind]string{
	domain.NotificationError:   "排班系统 - 操作失败",
	domain.NotificationSuccess: "排班系统 - 操作成功",
	domain.NotificationWarning: "排班系统 - 提醒",
}

// ErrDeliveriesClosed 表示 RabbitMQ 关闭了消息通道
var ErrDeliveriesClosed = errors.New("消息通道已关闭")

// Consume 逐条处理 msgs，直到 ctx 取消或通道关闭
func (w *Worker) Consume(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			w.Handle(msg)
		}
	}
}

// Handle 处理一条消息：格式错误的消息直接丢弃，发送失败的重新入队
func (w *Worker) Handle(msg amqp.Delivery) {
	slog.Info("收到通知", slog.String("message", string(msg.Body)))

	n := domain.Notification{}
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		slog.Error("通知反序列化失败", slog.String("error", err.Error()))
		_ = msg.Nack(false, false)
		return
	}

	m, err := w.build(n)
	if err != nil {
		slog.Error("无法构建邮件", slog.String("error", err.Error()))
		_ = msg.Nack(false, false)
		return
	}

	if err := w.sender.DialAndSend(m); err != nil {
		slog.Error("邮件发送失败", slog.String("error", err.Error()))
		_ = msg.Nack(false, true)
		return
	}

	_ = msg.Ack(false)
}

func (w *Worker) build(n domain.Notification) (*mail.Msg, error) {
	subject, ok := subjects[n.Kind]
	if !ok {
		return nil, fmt.Errorf("不支持的通知类型 %q", n.Kind)
	}

	m := mail.NewMsg()
	if err := m.From(w.from); err != nil {
		return nil, err
	}
	if err := m.To(w.to); err != nil {
		return nil, err
	}
	m.Subject(subject)

	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	m.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("%s\n\n时间：%s\n编号：%s", n.Message, createdAt.Format(time.DateTime), n.ID))

	return m, nil
}
