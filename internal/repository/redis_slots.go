package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/config"
)

// RedisSlots 把暂存数据放在 redis 中，多台设备可以共享同一个身份的暂存区
type RedisSlots struct {
	cfg *config.Config
	rdb *redis.Client
}

func NewRedisSlots(cfg *config.Config, rdb *redis.Client) *RedisSlots {
	return &RedisSlots{
		cfg: cfg,
		rdb: rdb,
	}
}

func (s *RedisSlots) key(scope string) string {
	return fmt.Sprintf("%s_%s", s.cfg.Redis.KeyPrefix, scope)
}

func (s *RedisSlots) Load(scope string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Staging.OperationTimeout)*time.Second)
	defer cancel()

	data, err := s.rdb.Get(ctx, s.key(scope)).Bytes()
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			return nil, nil
		default:
			return nil, err
		}
	}

	return data, nil
}

func (s *RedisSlots) Save(scope string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Staging.OperationTimeout)*time.Second)
	defer cancel()

	// 暂存数据需要一直保留到提交或取消，不设置过期时间
	return s.rdb.Set(ctx, s.key(scope), data, 0).Err()
}

func (s *RedisSlots) Delete(scope string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Staging.OperationTimeout)*time.Second)
	defer cancel()

	return s.rdb.Del(ctx, s.key(scope)).Err()
}
