package engine

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/staging"
)

type fakeRemote struct {
	mu sync.Mutex

	shifts      []domain.AssignedShift
	constraints []domain.Constraint
	presets     *domain.PresetSettings
	suggestion  []domain.AssignedShift

	errs  map[string]error
	calls map[string]int

	savedShifts      [][]domain.AssignedShift
	savedConstraints [][]domain.Constraint
	deletedShifts    []domain.ShiftKey
	deletedWeeks     []time.Time
	savedPresets     []domain.ScoringPreset

	// onSaveShifts 在 SaveShifts 返回前执行，模拟请求期间的并发修改
	onSaveShifts func()
	// slowFetch 在 FetchConstraints 和 FetchPresets 返回前执行，模拟较慢的请求
	slowFetch func(ctx context.Context) error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeRemote) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.errs[op]
}

func (f *fakeRemote) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) FetchShifts(context.Context) ([]domain.AssignedShift, error) {
	if err := f.record("FetchShifts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AssignedShift(nil), f.shifts...), nil
}

func (f *fakeRemote) SaveShifts(_ context.Context, shifts []domain.AssignedShift) error {
	if f.onSaveShifts != nil {
		f.onSaveShifts()
	}
	if err := f.record("SaveShifts"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedShifts = append(f.savedShifts, shifts)
	return nil
}

func (f *fakeRemote) DeleteShift(_ context.Context, shift domain.ShiftKey) error {
	if err := f.record("DeleteShift"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedShifts = append(f.deletedShifts, shift)
	return nil
}

func (f *fakeRemote) SuggestShifts(context.Context, domain.SuggestRequest) ([]domain.AssignedShift, error) {
	if err := f.record("SuggestShifts"); err != nil {
		return nil, err
	}
	return f.suggestion, nil
}

func (f *fakeRemote) DeleteWeek(_ context.Context, weekStart time.Time) error {
	if err := f.record("DeleteWeek"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedWeeks = append(f.deletedWeeks, weekStart)
	return nil
}

func (f *fakeRemote) RecalculateScores(context.Context) error {
	return f.record("RecalculateScores")
}

func (f *fakeRemote) FetchConstraints(ctx context.Context) ([]domain.Constraint, error) {
	if err := f.record("FetchConstraints"); err != nil {
		return nil, err
	}
	if f.slowFetch != nil {
		if err := f.slowFetch(ctx); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Constraint(nil), f.constraints...), nil
}

func (f *fakeRemote) SaveConstraints(_ context.Context, constraints []domain.Constraint) error {
	if err := f.record("SaveConstraints"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedConstraints = append(f.savedConstraints, constraints)
	return nil
}

func (f *fakeRemote) DeleteConstraint(context.Context, string, domain.ShiftKey) error {
	return f.record("DeleteConstraint")
}

func (f *fakeRemote) FetchPresets(ctx context.Context) (*domain.PresetSettings, error) {
	if err := f.record("FetchPresets"); err != nil {
		return nil, err
	}
	if f.slowFetch != nil {
		if err := f.slowFetch(ctx); err != nil {
			return nil, err
		}
	}
	return f.presets, nil
}

func (f *fakeRemote) SavePreset(_ context.Context, preset domain.ScoringPreset) error {
	if err := f.record("SavePreset"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedPresets = append(f.savedPresets, preset)
	return nil
}

func (f *fakeRemote) SelectPreset(context.Context, string) error {
	return f.record("SelectPreset")
}

type fakeSession struct {
	username string
	admin    bool
}

func (s fakeSession) IsAuthenticated() bool    { return s.username != "" }
func (s fakeSession) IsAdmin() bool            { return s.admin }
func (s fakeSession) Username() string         { return s.username }
func (s fakeSession) AuthHeaders() http.Header { return http.Header{} }

var (
	admin     = fakeSession{username: "admin", admin: true}
	alice     = fakeSession{username: "alice"}
	anonymous = fakeSession{}
)

type notice struct {
	Kind    domain.NotificationKind
	Message string
}

type recordingSink struct {
	mu      sync.Mutex
	notices []notice
}

func (s *recordingSink) Notify(kind domain.NotificationKind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, notice{Kind: kind, Message: message})
}

func (s *recordingSink) all() []notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notice(nil), s.notices...)
}

func (s *recordingSink) last() notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notices) == 0 {
		return notice{}
	}
	return s.notices[len(s.notices)-1]
}

type fixture struct {
	engine *Engine
	remote *fakeRemote
	sink   *recordingSink
	slot   *staging.MemorySlot
	area   *staging.Area
}

func newFixture(t *testing.T, sess fakeSession) *fixture {
	t.Helper()

	f := &fixture{
		remote: newFakeRemote(),
		sink:   &recordingSink{},
		slot:   staging.NewMemorySlot(),
	}
	f.area = staging.New(f.slot)

	e, err := New(f.remote, sess, f.sink, f.area)
	require.NoError(t, err)
	f.engine = e
	return f
}

func day(d int, kind domain.ShiftKind) domain.ShiftKey {
	return domain.NewShiftKey(time.Date(2024, 6, d, 9, 0, 0, 0, time.UTC), kind)
}

func committed(key domain.ShiftKey, subjectID string) domain.AssignedShift {
	return domain.AssignedShift{ShiftKey: key, AssignedSubjectID: subjectID}
}
