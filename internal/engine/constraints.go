package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

const constraintKindTag = "required,oneof=CANT PREFERS_NOT PREFERS"

// AddConstraint 暂存 subjectID 在 shift 上的约束。非管理员只能为自己添加。
func (e *Engine) AddConstraint(subjectID string, shift domain.ShiftKey, kind domain.ConstraintKind, opts ...MutationOption) (domain.Constraint, error) {
	m := newMutation(false, opts)
	if err := e.validator.Var(subjectID, "required"); err != nil {
		return domain.Constraint{}, e.invalid(err)
	}
	if err := e.authorize(capability{requireElevated: m.requireElevated, subjectID: subjectID}); err != nil {
		return domain.Constraint{}, err
	}
	if err := e.validator.Var(string(kind), constraintKindTag); err != nil {
		return domain.Constraint{}, e.invalid(err)
	}

	staged := e.area.StageConstraint(subjectID, shift, kind)
	e.emit(StagingChanged, ConcernConstraints)
	return staged, nil
}

// RemoveConstraint 的处理方式和 Unassign 相同：暂存的直接丢弃，已提交的向服务器删除
func (e *Engine) RemoveConstraint(ctx context.Context, subjectID string, shift domain.ShiftKey, opts ...MutationOption) error {
	m := newMutation(false, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated, subjectID: subjectID}); err != nil {
		return err
	}
	return e.removeConstraint(ctx, subjectID, shift)
}

func (e *Engine) removeConstraint(ctx context.Context, subjectID string, shift domain.ShiftKey) error {
	if e.area.UnstageConstraint(shift, subjectID) {
		e.emit(StagingChanged, ConcernConstraints)
		return nil
	}

	if err := e.client().DeleteConstraint(ctx, subjectID, shift); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Error(msgRemoveConstraintFailed, "error", err, "subject", subjectID, "shift", shift.String())
			e.sink.Notify(domain.NotificationError, msgConstraintNotFound)
			return err
		}
		e.reportFailure(err, msgRemoveConstraintFailed, msgConstraintUnauthorized)
		return err
	}

	e.mu.Lock()
	e.constraints = dropConstraint(e.constraints, subjectID, shift)
	e.mu.Unlock()

	e.emit(CommittedChanged, ConcernConstraints)
	e.sink.Notify(domain.NotificationSuccess, msgRemoveConstraintSucceeded)
	return nil
}

// MoveConstraint 把约束从 From 移到 To。意图里没有约束类型时沿用起点的类型。
func (e *Engine) MoveConstraint(ctx context.Context, intent domain.MoveIntent, opts ...MutationOption) error {
	if err := e.validator.Struct(intent); err != nil {
		return e.invalid(err)
	}
	if intent.IsNoop() {
		return nil
	}

	m := newMutation(false, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated, subjectID: intent.SubjectID}); err != nil {
		return err
	}

	var kind domain.ConstraintKind
	if intent.Kind != nil {
		kind = *intent.Kind
	}

	if intent.From != nil {
		if origin, ok := e.ResolveConstraint(intent.SubjectID, *intent.From); ok && kind == "" {
			kind = origin.Kind
		}
	}

	if intent.To != nil {
		if err := e.validator.Var(string(kind), constraintKindTag); err != nil {
			return e.invalid(err)
		}
	}

	if intent.From != nil {
		if err := e.removeConstraint(ctx, intent.SubjectID, *intent.From); err != nil {
			return err
		}
	}

	if intent.To != nil {
		e.area.StageConstraint(intent.SubjectID, *intent.To, kind)
		e.emit(StagingChanged, ConcernConstraints)
	}

	return nil
}

// SaveConstraints 提交全部暂存的约束，非管理员只能提交自己的约束
func (e *Engine) SaveConstraints(ctx context.Context, opts ...MutationOption) error {
	m := newMutation(false, opts)

	pending := e.area.Constraints()
	if len(pending) == 0 {
		return e.authorize(capability{requireElevated: m.requireElevated})
	}

	seen := make(map[string]bool)
	for _, c := range pending {
		if seen[c.SubjectID] {
			continue
		}
		seen[c.SubjectID] = true
		if err := e.authorize(capability{requireElevated: m.requireElevated, subjectID: c.SubjectID}); err != nil {
			return err
		}
	}

	if err := e.client().SaveConstraints(ctx, pending); err != nil {
		e.reportFailure(err, msgSaveConstraintsFailed, msgConstraintUnauthorized)
		return err
	}

	e.mu.Lock()
	for _, c := range pending {
		e.constraints = upsertConstraint(e.constraints, c)
	}
	e.mu.Unlock()

	e.area.SettleConstraints(pending)

	e.emit(CommittedChanged, ConcernConstraints)
	e.emit(StagingChanged, ConcernConstraints)
	e.sink.Notify(domain.NotificationSuccess, msgSaveConstraintsSucceeded)
	return nil
}

func (e *Engine) CancelConstraints() {
	e.area.ClearConstraints()
	e.emit(StagingChanged, ConcernConstraints)
}

func (e *Engine) FetchConstraints(ctx context.Context) error {
	sess := e.Session()
	if sess == nil || !sess.IsAuthenticated() {
		return nil
	}

	constraints, err := e.client().FetchConstraints(ctx)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		slog.Warn("获取约束时登录已失效", "error", err)
		constraints = nil
	case err != nil:
		e.reportFailure(err, msgFetchConstraintsFailed, msgUnauthorized)
		return err
	}

	var committed []domain.Constraint
	for _, c := range constraints {
		committed = upsertConstraint(committed, c)
	}

	e.mu.Lock()
	e.constraints = committed
	e.mu.Unlock()

	e.emit(CommittedChanged, ConcernConstraints)
	return nil
}

// ResolveConstraint 返回 (subjectID, shift) 上生效的约束，暂存的优先
func (e *Engine) ResolveConstraint(subjectID string, shift domain.ShiftKey) (domain.Constraint, bool) {
	if c, ok := e.area.Constraint(subjectID, shift); ok {
		return c, true
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, c := range e.constraints {
		if c.Matches(subjectID, shift) {
			return c, true
		}
	}
	return domain.Constraint{}, false
}

// ConstraintsFor 列出 subjectID 的全部生效约束，subjectID 为空时列出所有人的
func (e *Engine) ConstraintsFor(subjectID string) []domain.Constraint {
	pending := e.area.Constraints()

	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []domain.Constraint
	for _, c := range pending {
		if subjectID == "" || c.SubjectID == subjectID {
			out = append(out, c)
		}
	}
	for _, c := range e.constraints {
		if subjectID != "" && c.SubjectID != subjectID {
			continue
		}
		shadowed := false
		for _, p := range pending {
			if p.Matches(c.SubjectID, c.Shift) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) CommittedConstraints() []domain.Constraint {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.Constraint, len(e.constraints))
	copy(out, e.constraints)
	return out
}

func (e *Engine) PendingConstraints() []domain.Constraint {
	return e.area.Constraints()
}
