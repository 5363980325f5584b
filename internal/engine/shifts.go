package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/utils"
)

// Assign 在暂存区中把班次分配给 subjectID，同一班次已有的暂存分配会被替换。
// preset 为空时使用当前预设。
func (e *Engine) Assign(shift domain.ShiftKey, subjectID string, preset *domain.ScoringPreset, opts ...MutationOption) (domain.AssignedShift, error) {
	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return domain.AssignedShift{}, err
	}
	if err := e.validator.Var(subjectID, "required"); err != nil {
		return domain.AssignedShift{}, e.invalid(err)
	}

	if preset == nil {
		if current, ok := e.CurrentPreset(); ok {
			preset = &current
		}
	}

	staged := e.area.StageAssignment(shift, subjectID, preset)
	e.emit(StagingChanged, ConcernShifts)
	return staged, nil
}

// ChangePreset 用另一个预设重新暂存已分配的班次，人员不变
func (e *Engine) ChangePreset(shift domain.ShiftKey, presetName string, opts ...MutationOption) (domain.AssignedShift, error) {
	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return domain.AssignedShift{}, err
	}

	current, ok := e.Resolve(shift)
	if !ok {
		e.sink.Notify(domain.NotificationError, msgShiftNotAssigned)
		return domain.AssignedShift{}, domain.ErrNotFound
	}

	e.mu.RLock()
	preset, ok := e.presets.Presets[presetName]
	e.mu.RUnlock()
	if !ok {
		e.sink.Notify(domain.NotificationError, msgPresetNotFound)
		return domain.AssignedShift{}, domain.ErrNotFound
	}

	staged := e.area.StageAssignment(shift, current.AssignedSubjectID, &preset)
	e.emit(StagingChanged, ConcernShifts)
	return staged, nil
}

// Unassign 撤销班次的分配：暂存的分配直接丢弃，不发请求；
// 否则向服务器发送删除请求，成功后才从已提交数据中移除。
func (e *Engine) Unassign(ctx context.Context, shift domain.ShiftKey, opts ...MutationOption) error {
	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return err
	}
	return e.unassign(ctx, shift)
}

func (e *Engine) unassign(ctx context.Context, shift domain.ShiftKey) error {
	if e.area.UnstageAssignment(shift) {
		e.emit(StagingChanged, ConcernShifts)
		return nil
	}

	if err := e.client().DeleteShift(ctx, shift); err != nil {
		e.reportFailure(err, msgUnassignFailed, msgUnauthorized)
		return err
	}

	e.mu.Lock()
	e.shifts = dropShift(e.shifts, shift)
	e.mu.Unlock()

	e.emit(CommittedChanged, ConcernShifts)
	e.sink.Notify(domain.NotificationSuccess, msgUnassignSucceeded)
	return nil
}

// MoveAssignment 按拖放意图先撤销起点的分配，再在终点暂存新的分配
func (e *Engine) MoveAssignment(ctx context.Context, intent domain.MoveIntent, opts ...MutationOption) error {
	if err := e.validator.Struct(intent); err != nil {
		return e.invalid(err)
	}
	if intent.IsNoop() {
		return nil
	}

	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return err
	}

	var preset *domain.ScoringPreset
	if intent.From != nil {
		if origin, ok := e.Resolve(*intent.From); ok {
			preset = origin.Preset
		}
		if err := e.unassign(ctx, *intent.From); err != nil {
			return err
		}
	}

	if intent.To != nil {
		if preset == nil {
			if current, ok := e.CurrentPreset(); ok {
				preset = &current
			}
		}
		e.area.StageAssignment(*intent.To, intent.SubjectID, preset)
		e.emit(StagingChanged, ConcernShifts)
	}

	return nil
}

// Resolve 返回班次当前生效的分配，暂存的优先
func (e *Engine) Resolve(shift domain.ShiftKey) (domain.AssignedShift, bool) {
	if s, ok := e.area.Assignment(shift); ok {
		return s, true
	}
	return e.Committed(shift)
}

func (e *Engine) Committed(shift domain.ShiftKey) (domain.AssignedShift, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, s := range e.shifts {
		if s.Same(shift) {
			return s.Clone(), true
		}
	}
	return domain.AssignedShift{}, false
}

func (e *Engine) IsOccupied(shift domain.ShiftKey) bool {
	_, ok := e.Resolve(shift)
	return ok
}

// ResolveAll 列出全部生效的分配，被暂存分配遮蔽的已提交分配不会出现
func (e *Engine) ResolveAll() []domain.AssignedShift {
	pending := e.area.Assignments()

	e.mu.RLock()
	defer e.mu.RUnlock()

	out := pending
	for _, s := range e.shifts {
		shadowed := false
		for _, p := range pending {
			if p.Same(s.ShiftKey) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, s.Clone())
		}
	}
	return out
}

func (e *Engine) CommittedShifts() []domain.AssignedShift {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneShifts(e.shifts)
}

func (e *Engine) PendingShifts() []domain.AssignedShift {
	return e.area.Assignments()
}

// SaveAssignments 提交全部暂存的分配。成功后合并进已提交数据，
// 失败时暂存区保持不变。
func (e *Engine) SaveAssignments(ctx context.Context, opts ...MutationOption) error {
	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return err
	}

	pending := e.area.Assignments()
	if len(pending) == 0 {
		return nil
	}

	if err := e.client().SaveShifts(ctx, pending); err != nil {
		e.reportFailure(err, msgSaveShiftsFailed, msgUnauthorized)
		return err
	}

	e.mu.Lock()
	for _, s := range pending {
		e.shifts = upsertShift(e.shifts, s)
	}
	e.mu.Unlock()

	// 请求期间又暂存的修改会保留下来
	e.area.SettleAssignments(pending)

	e.emit(CommittedChanged, ConcernShifts)
	e.emit(StagingChanged, ConcernShifts)
	e.sink.Notify(domain.NotificationSuccess, msgSaveShiftsSucceeded)
	slog.Info("排班已保存", "count", len(pending))
	return nil
}

func (e *Engine) CancelAssignments() {
	e.area.ClearAssignments()
	e.emit(StagingChanged, ConcernShifts)
}

// FetchShifts 从服务器刷新已提交的排班，暂存区不受影响。
// 未登录时不发请求；服务器返回 401 时清空已提交数据而不返回错误。
func (e *Engine) FetchShifts(ctx context.Context) error {
	sess := e.Session()
	if sess == nil || !sess.IsAuthenticated() {
		return nil
	}

	shifts, err := e.client().FetchShifts(ctx)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		slog.Warn("获取排班时登录已失效", "error", err)
		shifts = nil
	case err != nil:
		e.reportFailure(err, msgFetchShiftsFailed, msgUnauthorized)
		return err
	}

	var committed []domain.AssignedShift
	for _, s := range shifts {
		committed = upsertShift(committed, s)
	}

	e.mu.Lock()
	e.shifts = committed
	e.mu.Unlock()

	e.emit(CommittedChanged, ConcernShifts)
	return nil
}

// Suggest 向服务器请求建议排班，校验通过后整体替换暂存区中的分配
func (e *Engine) Suggest(ctx context.Context, subjectIDs []string, start, end time.Time, opts ...MutationOption) ([]domain.AssignedShift, error) {
	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return nil, err
	}

	req := domain.SuggestRequest{SubjectIDs: subjectIDs, StartDate: start, EndDate: end}
	if err := e.validator.Struct(req); err != nil {
		return nil, e.invalid(err)
	}

	shifts, err := e.client().SuggestShifts(ctx, req)
	if err != nil {
		e.reportFailure(err, msgSuggestFailed, msgUnauthorized)
		return nil, err
	}
	if err := utils.ValidateSuggestion(shifts, req); err != nil {
		e.reportFailure(err, msgSuggestFailed, msgUnauthorized)
		return nil, err
	}

	e.area.ReplaceAssignments(shifts)
	e.emit(StagingChanged, ConcernShifts)
	e.sink.Notify(domain.NotificationSuccess, msgSuggestSucceeded)
	return e.area.Assignments(), nil
}

// ResetWeek 删除服务器上从 weekStart 所在周日开始一周的排班，然后重新获取。
// 返回这一周仍在暂存区中的分配，由调用方决定是否保留。
func (e *Engine) ResetWeek(ctx context.Context, weekStart time.Time, opts ...MutationOption) ([]domain.AssignedShift, error) {
	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return nil, err
	}

	start := domain.WeekStart(weekStart)
	if err := e.client().DeleteWeek(ctx, start); err != nil {
		e.reportFailure(err, msgResetFailed, msgUnauthorized)
		return nil, err
	}
	e.sink.Notify(domain.NotificationSuccess, msgResetSucceeded)

	fetchErr := e.FetchShifts(ctx)

	var staged []domain.AssignedShift
	for _, s := range e.area.Assignments() {
		if domain.InWeek(s.Date, start) {
			staged = append(staged, s)
		}
	}
	return staged, fetchErr
}

func (e *Engine) RecalculateScores(ctx context.Context, opts ...MutationOption) error {
	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return err
	}

	if err := e.client().RecalculateScores(ctx); err != nil {
		e.reportFailure(err, msgRecalculateFailed, msgUnauthorized)
		return err
	}

	e.sink.Notify(domain.NotificationSuccess, msgRecalculateDone)
	return nil
}
