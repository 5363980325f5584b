package engine

import (
	"errors"
	"log/slog"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/gateway"
)

type MutationOption func(*mutation)

type mutation struct {
	requireElevated bool
}

// RequireElevated 覆盖操作默认的管理员要求。排班默认需要管理员，约束默认不需要。
func RequireElevated(v bool) MutationOption {
	return func(m *mutation) {
		m.requireElevated = v
	}
}

func newMutation(defaultElevated bool, opts []MutationOption) mutation {
	m := mutation{requireElevated: defaultElevated}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

type capability struct {
	requireElevated bool
	// 非空时要求当前身份是本人或管理员
	subjectID string
}

// authorize 是所有修改操作唯一的权限检查入口，失败时已经发出通知
func (e *Engine) authorize(c capability) error {
	sess := e.Session()
	if sess != nil && sess.IsAdmin() {
		return nil
	}

	if c.requireElevated {
		e.sink.Notify(domain.NotificationError, msgUnauthorized)
		return domain.ErrAuthorizationDenied
	}

	if c.subjectID != "" {
		if sess == nil || !sess.IsAuthenticated() || sess.Username() != c.subjectID {
			e.sink.Notify(domain.NotificationError, msgConstraintUnauthorized)
			return domain.ErrAuthorizationDenied
		}
	}

	return nil
}

// reportFailure 为每一类失败发出不同的通知，forbidden 是 403 时使用的提示
func (e *Engine) reportFailure(err error, fallback, forbidden string) {
	slog.Error(fallback, "error", err)

	switch {
	case errors.Is(err, domain.ErrAuthorizationDenied):
		e.sink.Notify(domain.NotificationError, forbidden)
	case errors.Is(err, domain.ErrUnauthenticated):
		e.sink.Notify(domain.NotificationError, msgSessionExpired)
	case errors.Is(err, domain.ErrNotFound):
		e.sink.Notify(domain.NotificationError, fallback+"："+msgNotFound)
	default:
		if m := gateway.ServerMessage(err); m != "" {
			e.sink.Notify(domain.NotificationError, fallback+"："+m)
			return
		}
		if errors.Is(err, domain.ErrValidationConflict) {
			e.sink.Notify(domain.NotificationError, err.Error())
			return
		}
		e.sink.Notify(domain.NotificationError, fallback)
	}
}

// invalid 通知校验错误，返回原错误
func (e *Engine) invalid(err error) error {
	e.sink.Notify(domain.NotificationError, err.Error())
	return err
}
