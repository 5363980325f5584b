package staging

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

// Slot 是按身份划分的持久化存储。Load 在没有数据时返回 nil, nil。
type Slot interface {
	Load(scope string) ([]byte, error)
	Save(scope string, data []byte) error
}

const documentVersion = 1

type document struct {
	Version     int                    `json:"version"`
	Scope       string                 `json:"scope"`
	SavedAt     int64                  `json:"savedAt"` // unix 毫秒
	Assignments []domain.AssignedShift `json:"assignments"`
	Constraints []domain.Constraint    `json:"constraints"`
	Draft       *domain.ScoringPreset  `json:"draft,omitempty"`
}

// Area 保存尚未提交到服务器的修改，每次修改后写入当前身份的 slot
type Area struct {
	mu   sync.Mutex
	slot Slot
	now  func() time.Time

	scope       string
	assignments []domain.AssignedShift
	constraints []domain.Constraint
	draft       *domain.ScoringPreset
}

func New(slot Slot) *Area {
	return &Area{slot: slot, now: time.Now}
}

func (a *Area) Scope() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scope
}

// SwitchScope 丢弃内存中的暂存数据并加载 scope 对应的 slot，scope 为空时不做持久化
func (a *Area) SwitchScope(scope string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.scope = scope
	a.assignments = nil
	a.constraints = nil
	a.draft = nil

	if scope == "" || a.slot == nil {
		return nil
	}

	data, err := a.slot.Load(scope)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("暂存数据已损坏，已忽略", "scope", scope, "error", err)
		return nil
	}
	if doc.Scope != scope {
		slog.Warn("暂存数据不属于当前身份，已忽略", "scope", scope, "owner", doc.Scope)
		return nil
	}

	for _, s := range doc.Assignments {
		s.IsPending = true
		a.assignments = replaceAssignment(a.assignments, s)
	}
	for _, c := range doc.Constraints {
		c.IsPending = true
		a.constraints = replaceConstraint(a.constraints, c)
	}
	a.draft = doc.Draft

	return nil
}

func (a *Area) StageAssignment(shift domain.ShiftKey, subjectID string, preset *domain.ScoringPreset) domain.AssignedShift {
	a.mu.Lock()
	defer a.mu.Unlock()

	staged := domain.AssignedShift{
		ShiftKey:          shift,
		AssignedSubjectID: subjectID,
		Preset:            preset,
		IsPending:         true,
	}.Clone()
	a.assignments = replaceAssignment(a.assignments, staged)
	a.persist()

	return staged.Clone()
}

// UnstageAssignment 返回 false 表示暂存区中没有这个班次，调用方需要删除服务器上的数据
func (a *Area) UnstageAssignment(shift domain.ShiftKey) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.assignments)
	a.assignments = removeAssignment(a.assignments, shift)
	if len(a.assignments) == n {
		return false
	}
	a.persist()
	return true
}

func (a *Area) Assignment(shift domain.ShiftKey) (domain.AssignedShift, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range a.assignments {
		if s.Same(shift) {
			return s.Clone(), true
		}
	}
	return domain.AssignedShift{}, false
}

func (a *Area) Assignments() []domain.AssignedShift {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneAssignments(a.assignments)
}

// ReplaceAssignments 用 shifts 整体覆盖暂存的排班
func (a *Area) ReplaceAssignments(shifts []domain.AssignedShift) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.assignments = nil
	for _, s := range shifts {
		s.IsPending = true
		a.assignments = replaceAssignment(a.assignments, s.Clone())
	}
	a.persist()
}

// SettleAssignments 移除已经成功提交的条目，提交期间又被修改过的条目保留
func (a *Area) SettleAssignments(sent []domain.AssignedShift) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.assignments[:0:0]
	for _, s := range a.assignments {
		if !containsAssignment(sent, s) {
			kept = append(kept, s)
		}
	}
	a.assignments = kept
	a.persist()
}

func (a *Area) ClearAssignments() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.assignments = nil
	a.persist()
}

func (a *Area) StageConstraint(subjectID string, shift domain.ShiftKey, kind domain.ConstraintKind) domain.Constraint {
	a.mu.Lock()
	defer a.mu.Unlock()

	staged := domain.Constraint{
		SubjectID: subjectID,
		Shift:     shift,
		Kind:      kind,
		IsPending: true,
	}
	a.constraints = replaceConstraint(a.constraints, staged)
	a.persist()

	return staged
}

func (a *Area) UnstageConstraint(shift domain.ShiftKey, subjectID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.constraints)
	a.constraints = removeConstraint(a.constraints, subjectID, shift)
	if len(a.constraints) == n {
		return false
	}
	a.persist()
	return true
}

func (a *Area) Constraint(subjectID string, shift domain.ShiftKey) (domain.Constraint, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.constraints {
		if c.Matches(subjectID, shift) {
			return c, true
		}
	}
	return domain.Constraint{}, false
}

func (a *Area) Constraints() []domain.Constraint {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.Constraint, len(a.constraints))
	copy(out, a.constraints)
	return out
}

func (a *Area) SettleConstraints(sent []domain.Constraint) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.constraints[:0:0]
	for _, c := range a.constraints {
		if !containsConstraint(sent, c) {
			kept = append(kept, c)
		}
	}
	a.constraints = kept
	a.persist()
}

func (a *Area) ClearConstraints() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.constraints = nil
	a.persist()
}

func (a *Area) SetDraft(preset domain.ScoringPreset) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := preset.Clone()
	a.draft = &p
	a.persist()
}

func (a *Area) Draft() (domain.ScoringPreset, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.draft == nil {
		return domain.ScoringPreset{}, false
	}
	return a.draft.Clone(), true
}

func (a *Area) ClearDraft() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draft = nil
	a.persist()
}

// Clear 丢弃全部暂存数据
func (a *Area) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.assignments = nil
	a.constraints = nil
	a.draft = nil
	a.persist()
}

func (a *Area) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.assignments) + len(a.constraints)
}

// Encode 返回当前暂存数据的序列化结果，与写入 slot 的内容相同（不含保存时间）
func (a *Area) Encode() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.encode(0)
}

func (a *Area) encode(savedAt int64) ([]byte, error) {
	doc := document{
		Version:     documentVersion,
		Scope:       a.scope,
		SavedAt:     savedAt,
		Assignments: a.assignments,
		Constraints: a.constraints,
		Draft:       a.draft,
	}
	if doc.Assignments == nil {
		doc.Assignments = []domain.AssignedShift{}
	}
	if doc.Constraints == nil {
		doc.Constraints = []domain.Constraint{}
	}
	return json.Marshal(doc)
}

// persist 必须在持有锁时调用。写入失败只记录日志，内存中的修改仍然有效。
func (a *Area) persist() {
	if a.scope == "" || a.slot == nil {
		return
	}

	data, err := a.encode(a.now().UnixMilli())
	if err != nil {
		slog.Error("暂存数据序列化失败", "scope", a.scope, "error", err)
		return
	}
	if err := a.slot.Save(a.scope, data); err != nil {
		slog.Error("无法保存暂存数据", "scope", a.scope, "error", err)
	}
}
