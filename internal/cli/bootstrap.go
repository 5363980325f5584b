package cli

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/engine"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/gateway"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/notify"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/repository"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/session"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/staging"
)

func (a *App) open(ctx context.Context) error {
	if a.engine != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	raw := a.Token
	if raw == "" {
		raw = a.cfg.Session.Token
	}
	sess, err := session.FromToken(raw)
	if err != nil {
		return fmt.Errorf("无法解析登录令牌: %w", err)
	}

	slot, err := a.openSlot(ctx)
	if err != nil {
		return err
	}
	a.slot = slot

	sink := notify.Sink(notify.NewLogger(a.logger))
	if a.cfg.RabbitMQ.DSN != "" {
		queue, err := a.openQueue()
		if err != nil {
			// 通知队列不可用时只影响邮件提醒
			a.logger.Warn("无法连接到 RabbitMQ，通知只写入日志", "error", err)
		} else {
			sink = notify.Fanout(sink, queue)
		}
	}

	a.gateway = gateway.New(a.cfg, sess)
	e, err := engine.New(a.gateway, sess, sink, staging.New(slot))
	if err != nil {
		return err
	}
	a.engine = e

	return nil
}

func (a *App) openSlot(ctx context.Context) (slotStore, error) {
	switch a.cfg.Staging.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", a.cfg.Redis.Host, a.cfg.Redis.Port),
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Staging.OperationTimeout)*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("无法连接到 redis: %w", err)
		}

		a.closers = append(a.closers, rdb.Close)
		return repository.NewRedisSlots(a.cfg, rdb), nil
	default:
		repo, err := repository.OpenSQLite(a.cfg)
		if err != nil {
			return nil, fmt.Errorf("无法打开本地数据库: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	}
}

func (a *App) openQueue() (*notify.Queue, error) {
	conn, err := amqp.Dial(a.cfg.RabbitMQ.DSN)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	q, err := ch.QueueDeclare(
		a.cfg.RabbitMQ.Queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	a.closers = append(a.closers, conn.Close, ch.Close)
	return notify.NewQueue(ch, q.Name, time.Duration(a.cfg.RabbitMQ.PublishTimeout)*time.Second), nil
}
