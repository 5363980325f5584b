package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/notify"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/session"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/staging"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/utils"
)

// Remote 是服务器提供的操作，由 gateway.Client 实现
type Remote interface {
	FetchShifts(ctx context.Context) ([]domain.AssignedShift, error)
	SaveShifts(ctx context.Context, shifts []domain.AssignedShift) error
	DeleteShift(ctx context.Context, shift domain.ShiftKey) error
	SuggestShifts(ctx context.Context, req domain.SuggestRequest) ([]domain.AssignedShift, error)
	DeleteWeek(ctx context.Context, weekStart time.Time) error
	RecalculateScores(ctx context.Context) error

	FetchConstraints(ctx context.Context) ([]domain.Constraint, error)
	SaveConstraints(ctx context.Context, constraints []domain.Constraint) error
	DeleteConstraint(ctx context.Context, subjectID string, shift domain.ShiftKey) error

	FetchPresets(ctx context.Context) (*domain.PresetSettings, error)
	SavePreset(ctx context.Context, preset domain.ScoringPreset) error
	SelectPreset(ctx context.Context, name string) error
}

// Engine 维护已提交数据和暂存区之间的状态转换。
// 暂存操作是同步的，网络操作只阻塞调用它的 goroutine。
type Engine struct {
	sink      notify.Sink
	area      *staging.Area
	validator *utils.Validator
	bus       bus

	mu          sync.RWMutex
	remote      Remote
	session     session.Session
	shifts      []domain.AssignedShift
	constraints []domain.Constraint
	presets     domain.PresetSettings
}

func New(remote Remote, sess session.Session, sink notify.Sink, area *staging.Area) (*Engine, error) {
	v, err := utils.NewValidator()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		sink:      sink,
		area:      area,
		validator: v,
		remote:    remote,
		session:   sess,
		presets:   domain.PresetSettings{Presets: map[string]domain.ScoringPreset{}},
	}

	if err := area.SwitchScope(scopeOf(sess)); err != nil {
		return nil, err
	}

	return e, nil
}

// SwitchSession 切换到另一个身份：加载它的暂存区，清空缓存的已提交数据
func (e *Engine) SwitchSession(sess session.Session, remote Remote) error {
	e.mu.Lock()
	e.session = sess
	e.remote = remote
	e.shifts = nil
	e.constraints = nil
	e.presets = domain.PresetSettings{Presets: map[string]domain.ScoringPreset{}}
	e.mu.Unlock()

	err := e.area.SwitchScope(scopeOf(sess))

	for _, c := range []Concern{ConcernShifts, ConcernConstraints, ConcernPresets} {
		e.emit(CommittedChanged, c)
		e.emit(StagingChanged, c)
	}

	return err
}

func (e *Engine) Session() session.Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session
}

// Scope 返回当前暂存区所属的身份，匿名时为空
func (e *Engine) Scope() string {
	return e.area.Scope()
}

func (e *Engine) client() Remote {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.remote
}

// HasPending 表示暂存区中还有尚未提交的排班或约束
func (e *Engine) HasPending() bool {
	return e.area.Len() > 0
}

// Cancel 丢弃暂存区中的全部修改，不发送任何请求
func (e *Engine) Cancel() {
	e.area.Clear()
	e.emit(StagingChanged, ConcernShifts)
	e.emit(StagingChanged, ConcernConstraints)
	e.emit(StagingChanged, ConcernPresets)
}

func scopeOf(sess session.Session) string {
	if sess == nil || !sess.IsAuthenticated() {
		return ""
	}
	return sess.Username()
}
