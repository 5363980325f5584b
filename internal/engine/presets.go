package engine

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func (e *Engine) FetchPresets(ctx context.Context) error {
	sess := e.Session()
	if sess == nil || !sess.IsAuthenticated() {
		return nil
	}

	settings, err := e.client().FetchPresets(ctx)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		slog.Warn("获取预设时登录已失效", "error", err)
		settings = nil
	case err != nil:
		e.reportFailure(err, msgFetchPresetsFailed, msgUnauthorized)
		return err
	}

	next := domain.PresetSettings{Presets: map[string]domain.ScoringPreset{}}
	if settings != nil {
		for name, p := range settings.Presets {
			next.Presets[name] = p.Clone()
		}
		next.Current = settings.Current
	}

	e.mu.Lock()
	e.presets = next
	e.mu.Unlock()

	e.emit(CommittedChanged, ConcernPresets)
	return nil
}

// Presets 返回已提交预设的副本
func (e *Engine) Presets() domain.PresetSettings {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := domain.PresetSettings{
		Presets: make(map[string]domain.ScoringPreset, len(e.presets.Presets)),
		Current: e.presets.Current,
	}
	for name, p := range e.presets.Presets {
		out.Presets[name] = p.Clone()
	}
	return out
}

func (e *Engine) CurrentPreset() (domain.ScoringPreset, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, ok := e.presets.CurrentPreset()
	if !ok {
		return domain.ScoringPreset{}, false
	}
	return p.Clone(), true
}

// SavePreset 创建或覆盖同名预设，成功后重新获取预设列表
func (e *Engine) SavePreset(ctx context.Context, preset domain.ScoringPreset, opts ...MutationOption) error {
	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return err
	}
	if err := e.validator.Struct(preset); err != nil {
		return e.invalid(err)
	}

	if err := e.client().SavePreset(ctx, preset); err != nil {
		e.reportFailure(err, msgSavePresetFailed, msgUnauthorized)
		return err
	}

	e.mu.Lock()
	presets := maps.Clone(e.presets.Presets)
	if presets == nil {
		presets = map[string]domain.ScoringPreset{}
	}
	presets[preset.Name] = preset.Clone()
	e.presets.Presets = presets
	e.mu.Unlock()

	e.emit(CommittedChanged, ConcernPresets)
	e.sink.Notify(domain.NotificationSuccess, msgSavePresetSucceeded)

	// 重新获取失败时已经通知过，本地结果仍然有效
	_ = e.FetchPresets(ctx)
	return nil
}

func (e *Engine) SelectPreset(ctx context.Context, name string, opts ...MutationOption) error {
	m := newMutation(true, opts)
	if err := e.authorize(capability{requireElevated: m.requireElevated}); err != nil {
		return err
	}
	if err := e.validator.Var(name, "required"); err != nil {
		return e.invalid(err)
	}

	if err := e.client().SelectPreset(ctx, name); err != nil {
		e.reportFailure(err, msgSelectPresetFailed, msgUnauthorized)
		return err
	}

	e.mu.Lock()
	e.presets.Current = name
	e.mu.Unlock()

	e.emit(CommittedChanged, ConcernPresets)
	e.sink.Notify(domain.NotificationSuccess, msgSelectPresetDone)
	return nil
}

// DraftPresetFromName 以已有预设为起点开始编辑，name 不存在时开始一个空预设
func (e *Engine) DraftPresetFromName(name string) domain.ScoringPreset {
	e.mu.RLock()
	base, ok := e.presets.Presets[name]
	e.mu.RUnlock()

	draft := domain.ScoringPreset{Name: name}
	if ok {
		draft = base.Clone()
	}
	return e.DraftPreset(draft)
}

func (e *Engine) DraftPreset(preset domain.ScoringPreset) domain.ScoringPreset {
	e.area.SetDraft(preset)
	e.emit(StagingChanged, ConcernPresets)
	return preset.Clone()
}

func (e *Engine) Draft() (domain.ScoringPreset, bool) {
	return e.area.Draft()
}

func (e *Engine) SetDraftWeight(day string, kind domain.ShiftKind, weight float64) (domain.ScoringPreset, error) {
	draft, ok := e.area.Draft()
	if !ok {
		e.sink.Notify(domain.NotificationError, msgNoDraft)
		return domain.ScoringPreset{}, domain.ErrNotFound
	}

	if err := e.validator.Struct(domain.ShiftWeight{Day: day, Kind: kind, Weight: weight}); err != nil {
		return domain.ScoringPreset{}, e.invalid(err)
	}

	draft.SetWeight(day, kind, weight)
	return e.DraftPreset(draft), nil
}

// SaveDraft 提交正在编辑的预设，成功后丢弃草稿
func (e *Engine) SaveDraft(ctx context.Context, opts ...MutationOption) error {
	draft, ok := e.area.Draft()
	if !ok {
		e.sink.Notify(domain.NotificationError, msgNoDraft)
		return domain.ErrNotFound
	}

	if err := e.SavePreset(ctx, draft, opts...); err != nil {
		return err
	}

	e.area.ClearDraft()
	e.emit(StagingChanged, ConcernPresets)
	return nil
}

func (e *Engine) DiscardDraft() {
	e.area.ClearDraft()
	e.emit(StagingChanged, ConcernPresets)
}
