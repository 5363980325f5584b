package engine

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/gateway"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/staging"
)

func TestAssignReplacesPendingOnSameShift(t *testing.T) {
	f := newFixture(t, admin)
	key := day(10, domain.ShiftKindDay)

	_, err := f.engine.Assign(key, "alice", nil)
	require.NoError(t, err)
	_, err = f.engine.Assign(key, "bob", nil)
	require.NoError(t, err)

	pending := f.engine.PendingShifts()
	require.Len(t, pending, 1)
	assert.Equal(t, "bob", pending[0].AssignedSubjectID)

	resolved, ok := f.engine.Resolve(key)
	require.True(t, ok)
	assert.Equal(t, "bob", resolved.AssignedSubjectID)
	assert.True(t, resolved.IsPending)
	assert.Empty(t, f.engine.CommittedShifts())
}

func TestAssignUsesCurrentPreset(t *testing.T) {
	f := newFixture(t, admin)
	f.remote.presets = &domain.PresetSettings{
		Presets: map[string]domain.ScoringPreset{
			"默认": {Name: "默认", Weights: []domain.ShiftWeight{{Day: "Sunday", Kind: domain.ShiftKindDay, Weight: 2}}},
		},
		Current: "默认",
	}
	require.NoError(t, f.engine.FetchPresets(context.Background()))

	staged, err := f.engine.Assign(day(10, domain.ShiftKindDay), "alice", nil)
	require.NoError(t, err)
	require.NotNil(t, staged.Preset)
	assert.Equal(t, "默认", staged.Preset.Name)

	explicit := domain.ScoringPreset{Name: "周末"}
	staged, err = f.engine.Assign(day(11, domain.ShiftKindDay), "alice", &explicit)
	require.NoError(t, err)
	assert.Equal(t, "周末", staged.Preset.Name)
}

func TestAssignRequiresAdmin(t *testing.T) {
	f := newFixture(t, alice)

	_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "alice", nil)
	require.ErrorIs(t, err, domain.ErrAuthorizationDenied)

	assert.Equal(t, []notice{{Kind: domain.NotificationError, Message: msgUnauthorized}}, f.sink.all())
	assert.Empty(t, f.engine.PendingShifts())
	assert.Empty(t, f.remote.calls)
}

func TestAssignRequireElevatedOverride(t *testing.T) {
	f := newFixture(t, alice)

	_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "alice", nil, RequireElevated(false))
	require.NoError(t, err)
	assert.Len(t, f.engine.PendingShifts(), 1)
}

func TestAssignRejectsEmptySubject(t *testing.T) {
	f := newFixture(t, admin)

	_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "", nil)
	require.ErrorIs(t, err, domain.ErrValidationConflict)
	assert.Equal(t, domain.NotificationError, f.sink.last().Kind)
	assert.Empty(t, f.engine.PendingShifts())
}

func TestUnassignPendingSkipsNetwork(t *testing.T) {
	f := newFixture(t, admin)
	key := day(10, domain.ShiftKindDay)
	_, err := f.engine.Assign(key, "alice", nil)
	require.NoError(t, err)

	require.NoError(t, f.engine.Unassign(context.Background(), key))

	assert.Empty(t, f.engine.PendingShifts())
	assert.Zero(t, f.remote.count("DeleteShift"))
}

func TestShiftIdentityAcrossOffsets(t *testing.T) {
	f := newFixture(t, admin)
	local := domain.NewShiftKey(time.Date(2024, 6, 11, 0, 0, 0, 0, time.FixedZone("CST", 8*3600)), domain.ShiftKindDay)
	echoed := domain.NewShiftKey(local.Date.UTC(), domain.ShiftKindDay)

	_, err := f.engine.Assign(local, "bob", nil)
	require.NoError(t, err)
	f.remote.shifts = []domain.AssignedShift{committed(echoed, "alice")}
	require.NoError(t, f.engine.FetchShifts(context.Background()))

	resolved, ok := f.engine.Resolve(echoed)
	require.True(t, ok)
	assert.Equal(t, "bob", resolved.AssignedSubjectID)
	assert.Len(t, f.engine.ResolveAll(), 1)

	require.NoError(t, f.engine.Unassign(context.Background(), echoed))
	assert.Empty(t, f.engine.PendingShifts())
	assert.Zero(t, f.remote.count("DeleteShift"))
}

func TestUnassignCommittedIssuesOneDelete(t *testing.T) {
	f := newFixture(t, admin)
	key := day(10, domain.ShiftKindDay)
	f.remote.shifts = []domain.AssignedShift{committed(key, "alice")}
	require.NoError(t, f.engine.FetchShifts(context.Background()))

	require.NoError(t, f.engine.Unassign(context.Background(), key))

	assert.Equal(t, 1, f.remote.count("DeleteShift"))
	require.Len(t, f.remote.deletedShifts, 1)
	assert.True(t, f.remote.deletedShifts[0].Same(key))
	assert.Empty(t, f.engine.CommittedShifts())
	assert.Equal(t, notice{Kind: domain.NotificationSuccess, Message: msgUnassignSucceeded}, f.sink.last())
}

func TestUnassignFailureKeepsCommitted(t *testing.T) {
	f := newFixture(t, admin)
	key := day(10, domain.ShiftKindDay)
	f.remote.shifts = []domain.AssignedShift{committed(key, "alice")}
	require.NoError(t, f.engine.FetchShifts(context.Background()))

	f.remote.fail("DeleteShift", &gateway.Error{Op: "删除排班", Status: http.StatusInternalServerError, Message: "数据库错误", Err: domain.ErrTransportFailure})

	err := f.engine.Unassign(context.Background(), key)
	require.ErrorIs(t, err, domain.ErrTransportFailure)

	assert.Len(t, f.engine.CommittedShifts(), 1)
	assert.Equal(t, notice{Kind: domain.NotificationError, Message: msgUnassignFailed + "：数据库错误"}, f.sink.last())
}

func TestSaveAssignmentsMergesAndClearsStaging(t *testing.T) {
	f := newFixture(t, admin)
	f.remote.shifts = []domain.AssignedShift{committed(day(10, domain.ShiftKindDay), "alice")}
	require.NoError(t, f.engine.FetchShifts(context.Background()))

	_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "bob", nil)
	require.NoError(t, err)
	_, err = f.engine.Assign(day(11, domain.ShiftKindNight), "carol", nil)
	require.NoError(t, err)

	require.NoError(t, f.engine.SaveAssignments(context.Background()))

	require.Len(t, f.remote.savedShifts, 1)
	assert.Len(t, f.remote.savedShifts[0], 2)
	assert.Empty(t, f.engine.PendingShifts())

	got := f.engine.CommittedShifts()
	require.Len(t, got, 2)
	for _, s := range got {
		assert.False(t, s.IsPending)
	}
	first, ok := f.engine.Committed(day(10, domain.ShiftKindDay))
	require.True(t, ok)
	assert.Equal(t, "bob", first.AssignedSubjectID)
	assert.Equal(t, notice{Kind: domain.NotificationSuccess, Message: msgSaveShiftsSucceeded}, f.sink.last())
}

func TestSaveAssignmentsFailureLeavesStagingUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "forbidden",
			err:     &gateway.Error{Op: "保存排班", Status: http.StatusForbidden, Err: domain.ErrAuthorizationDenied},
			message: msgUnauthorized,
		},
		{
			name:    "server message",
			err:     &gateway.Error{Op: "保存排班", Status: http.StatusInternalServerError, Message: "班次冲突", Err: domain.ErrTransportFailure},
			message: msgSaveShiftsFailed + "：班次冲突",
		},
		{
			name:    "transport",
			err:     &gateway.Error{Op: "保存排班", Err: domain.ErrTransportFailure},
			message: msgSaveShiftsFailed,
		},
		{
			name:    "session expired",
			err:     &gateway.Error{Op: "保存排班", Status: http.StatusUnauthorized, Err: domain.ErrUnauthenticated},
			message: msgSessionExpired,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, admin)
			f.remote.shifts = []domain.AssignedShift{committed(day(10, domain.ShiftKindDay), "alice")}
			require.NoError(t, f.engine.FetchShifts(context.Background()))
			_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "bob", nil)
			require.NoError(t, err)

			before, err := f.area.Encode()
			require.NoError(t, err)
			committedBefore := f.engine.CommittedShifts()

			f.remote.fail("SaveShifts", tt.err)
			err = f.engine.SaveAssignments(context.Background())
			require.Error(t, err)

			after, err := f.area.Encode()
			require.NoError(t, err)
			assert.Equal(t, before, after)
			assert.Equal(t, committedBefore, f.engine.CommittedShifts())
			assert.Equal(t, notice{Kind: domain.NotificationError, Message: tt.message}, f.sink.last())
		})
	}
}

func TestSaveAssignmentsKeepsEditsMadeDuringRequest(t *testing.T) {
	f := newFixture(t, admin)
	key := day(10, domain.ShiftKindDay)
	_, err := f.engine.Assign(key, "bob", nil)
	require.NoError(t, err)

	f.remote.onSaveShifts = func() {
		f.area.StageAssignment(key, "carol", nil)
	}

	require.NoError(t, f.engine.SaveAssignments(context.Background()))

	saved, ok := f.engine.Committed(key)
	require.True(t, ok)
	assert.Equal(t, "bob", saved.AssignedSubjectID)

	pending := f.engine.PendingShifts()
	require.Len(t, pending, 1)
	assert.Equal(t, "carol", pending[0].AssignedSubjectID)
}

func TestSaveAssignmentsWithNothingPending(t *testing.T) {
	f := newFixture(t, admin)

	require.NoError(t, f.engine.SaveAssignments(context.Background()))
	assert.Zero(t, f.remote.count("SaveShifts"))
	assert.Empty(t, f.sink.all())
}

func TestCancelAssignments(t *testing.T) {
	f := newFixture(t, admin)
	f.remote.shifts = []domain.AssignedShift{committed(day(10, domain.ShiftKindDay), "alice")}
	require.NoError(t, f.engine.FetchShifts(context.Background()))
	_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "bob", nil)
	require.NoError(t, err)

	f.engine.CancelAssignments()

	assert.Empty(t, f.engine.PendingShifts())
	resolved, ok := f.engine.Resolve(day(10, domain.ShiftKindDay))
	require.True(t, ok)
	assert.Equal(t, "alice", resolved.AssignedSubjectID)
	assert.Empty(t, f.remote.savedShifts)
}

func TestFetchShifts(t *testing.T) {
	t.Run("anonymous skips request", func(t *testing.T) {
		f := newFixture(t, anonymous)
		require.NoError(t, f.engine.FetchShifts(context.Background()))
		assert.Zero(t, f.remote.count("FetchShifts"))
	})

	t.Run("unauthenticated empties committed", func(t *testing.T) {
		f := newFixture(t, admin)
		f.remote.shifts = []domain.AssignedShift{committed(day(10, domain.ShiftKindDay), "alice")}
		require.NoError(t, f.engine.FetchShifts(context.Background()))

		f.remote.fail("FetchShifts", &gateway.Error{Op: "获取排班", Status: http.StatusUnauthorized, Err: domain.ErrUnauthenticated})
		require.NoError(t, f.engine.FetchShifts(context.Background()))
		assert.Empty(t, f.engine.CommittedShifts())
	})

	t.Run("failure keeps committed", func(t *testing.T) {
		f := newFixture(t, admin)
		f.remote.shifts = []domain.AssignedShift{committed(day(10, domain.ShiftKindDay), "alice")}
		require.NoError(t, f.engine.FetchShifts(context.Background()))

		f.remote.fail("FetchShifts", &gateway.Error{Op: "获取排班", Err: domain.ErrTransportFailure})
		require.ErrorIs(t, f.engine.FetchShifts(context.Background()), domain.ErrTransportFailure)
		assert.Len(t, f.engine.CommittedShifts(), 1)
		assert.Equal(t, domain.NotificationError, f.sink.last().Kind)
	})

	t.Run("staging survives fetch", func(t *testing.T) {
		f := newFixture(t, admin)
		_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "bob", nil)
		require.NoError(t, err)
		f.remote.shifts = []domain.AssignedShift{committed(day(10, domain.ShiftKindDay), "alice")}

		require.NoError(t, f.engine.FetchShifts(context.Background()))

		resolved, ok := f.engine.Resolve(day(10, domain.ShiftKindDay))
		require.True(t, ok)
		assert.Equal(t, "bob", resolved.AssignedSubjectID)
	})

	t.Run("duplicate keys collapse", func(t *testing.T) {
		f := newFixture(t, admin)
		f.remote.shifts = []domain.AssignedShift{
			committed(day(10, domain.ShiftKindDay), "alice"),
			committed(domain.NewShiftKey(time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC), domain.ShiftKindDay), "bob"),
		}

		require.NoError(t, f.engine.FetchShifts(context.Background()))
		got := f.engine.CommittedShifts()
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].AssignedSubjectID)
	})
}

func TestSuggestReplacesStaging(t *testing.T) {
	f := newFixture(t, admin)
	_, err := f.engine.Assign(day(12, domain.ShiftKindNight), "dave", nil)
	require.NoError(t, err)

	f.remote.suggestion = []domain.AssignedShift{
		committed(day(9, domain.ShiftKindDay), "alice"),
		committed(day(10, domain.ShiftKindDay), "bob"),
		committed(day(10, domain.ShiftKindNight), "alice"),
	}

	got, err := f.engine.Suggest(context.Background(), []string{"alice", "bob"}, day(9, domain.ShiftKindDay).Date, day(15, domain.ShiftKindDay).Date)
	require.NoError(t, err)

	assert.Len(t, got, 3)
	pending := f.engine.PendingShifts()
	require.Len(t, pending, 3)
	for _, s := range pending {
		assert.True(t, s.IsPending)
	}
	_, ok := f.engine.Resolve(day(12, domain.ShiftKindNight))
	assert.False(t, ok)
}

func TestSuggestRejectsInvalidResponse(t *testing.T) {
	f := newFixture(t, admin)
	_, err := f.engine.Assign(day(12, domain.ShiftKindNight), "dave", nil)
	require.NoError(t, err)
	before, err := f.area.Encode()
	require.NoError(t, err)

	f.remote.suggestion = []domain.AssignedShift{committed(day(20, domain.ShiftKindDay), "alice")}

	_, err = f.engine.Suggest(context.Background(), []string{"alice"}, day(9, domain.ShiftKindDay).Date, day(15, domain.ShiftKindDay).Date)
	require.ErrorIs(t, err, domain.ErrValidationConflict)

	after, err := f.area.Encode()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, domain.NotificationError, f.sink.last().Kind)
}

func TestSuggestValidatesRequest(t *testing.T) {
	f := newFixture(t, admin)

	_, err := f.engine.Suggest(context.Background(), nil, day(9, domain.ShiftKindDay).Date, day(15, domain.ShiftKindDay).Date)
	require.ErrorIs(t, err, domain.ErrValidationConflict)

	_, err = f.engine.Suggest(context.Background(), []string{"alice"}, day(15, domain.ShiftKindDay).Date, day(9, domain.ShiftKindDay).Date)
	require.ErrorIs(t, err, domain.ErrValidationConflict)

	assert.Zero(t, f.remote.count("SuggestShifts"))
}

func TestResetWeek(t *testing.T) {
	f := newFixture(t, admin)
	_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "alice", nil)
	require.NoError(t, err)
	_, err = f.engine.Assign(day(17, domain.ShiftKindDay), "bob", nil)
	require.NoError(t, err)

	staged, err := f.engine.ResetWeek(context.Background(), day(12, domain.ShiftKindDay).Date)
	require.NoError(t, err)

	require.Len(t, f.remote.deletedWeeks, 1)
	assert.True(t, f.remote.deletedWeeks[0].Equal(time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, f.remote.count("FetchShifts"))

	require.Len(t, staged, 1)
	assert.Equal(t, "alice", staged[0].AssignedSubjectID)
	assert.Contains(t, f.sink.all(), notice{Kind: domain.NotificationSuccess, Message: msgResetSucceeded})
}

func TestResetWeekFailureSkipsFetch(t *testing.T) {
	f := newFixture(t, admin)
	f.remote.fail("DeleteWeek", &gateway.Error{Op: "重置一周排班", Status: http.StatusForbidden, Err: domain.ErrAuthorizationDenied})

	_, err := f.engine.ResetWeek(context.Background(), day(12, domain.ShiftKindDay).Date)
	require.ErrorIs(t, err, domain.ErrAuthorizationDenied)

	assert.Zero(t, f.remote.count("FetchShifts"))
	assert.Equal(t, []notice{{Kind: domain.NotificationError, Message: msgUnauthorized}}, f.sink.all())
}

func TestMoveAssignment(t *testing.T) {
	from := day(10, domain.ShiftKindDay)
	to := day(11, domain.ShiftKindNight)

	t.Run("committed origin", func(t *testing.T) {
		f := newFixture(t, admin)
		f.remote.shifts = []domain.AssignedShift{committed(from, "alice")}
		require.NoError(t, f.engine.FetchShifts(context.Background()))

		require.NoError(t, f.engine.MoveAssignment(context.Background(), domain.MoveIntent{SubjectID: "alice", From: &from, To: &to}))

		assert.Equal(t, 1, f.remote.count("DeleteShift"))
		assert.Empty(t, f.engine.CommittedShifts())
		moved, ok := f.engine.Resolve(to)
		require.True(t, ok)
		assert.Equal(t, "alice", moved.AssignedSubjectID)
	})

	t.Run("same shift is a no-op", func(t *testing.T) {
		f := newFixture(t, admin)
		same := from
		require.NoError(t, f.engine.MoveAssignment(context.Background(), domain.MoveIntent{SubjectID: "alice", From: &from, To: &same}))
		assert.Empty(t, f.remote.calls)
		assert.Empty(t, f.engine.PendingShifts())
	})

	t.Run("failed unassign does not assign", func(t *testing.T) {
		f := newFixture(t, admin)
		f.remote.fail("DeleteShift", &gateway.Error{Op: "删除排班", Err: domain.ErrTransportFailure})

		err := f.engine.MoveAssignment(context.Background(), domain.MoveIntent{SubjectID: "alice", From: &from, To: &to})
		require.ErrorIs(t, err, domain.ErrTransportFailure)
		assert.Empty(t, f.engine.PendingShifts())
	})

	t.Run("missing subject", func(t *testing.T) {
		f := newFixture(t, admin)
		err := f.engine.MoveAssignment(context.Background(), domain.MoveIntent{To: &to})
		require.ErrorIs(t, err, domain.ErrValidationConflict)
	})
}

func TestChangePreset(t *testing.T) {
	f := newFixture(t, admin)
	key := day(10, domain.ShiftKindDay)
	f.remote.shifts = []domain.AssignedShift{committed(key, "alice")}
	f.remote.presets = &domain.PresetSettings{
		Presets: map[string]domain.ScoringPreset{"周末": {Name: "周末"}},
	}
	require.NoError(t, f.engine.Refresh(context.Background()))

	staged, err := f.engine.ChangePreset(key, "周末")
	require.NoError(t, err)
	assert.Equal(t, "alice", staged.AssignedSubjectID)
	assert.Equal(t, "周末", staged.Preset.Name)

	_, err = f.engine.ChangePreset(key, "不存在")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.ChangePreset(day(11, domain.ShiftKindDay), "周末")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, notice{Kind: domain.NotificationError, Message: msgShiftNotAssigned}, f.sink.last())
}

func TestResolveAllShadowsCommitted(t *testing.T) {
	f := newFixture(t, admin)
	f.remote.shifts = []domain.AssignedShift{
		committed(day(10, domain.ShiftKindDay), "alice"),
		committed(day(11, domain.ShiftKindDay), "alice"),
	}
	require.NoError(t, f.engine.FetchShifts(context.Background()))
	_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "bob", nil)
	require.NoError(t, err)

	all := f.engine.ResolveAll()
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[0].AssignedSubjectID)
	assert.True(t, all[0].IsPending)
	assert.Equal(t, "alice", all[1].AssignedSubjectID)
	assert.True(t, f.engine.IsOccupied(day(11, domain.ShiftKindDay)))
	assert.False(t, f.engine.IsOccupied(day(12, domain.ShiftKindDay)))
}

func TestRecalculateScores(t *testing.T) {
	f := newFixture(t, admin)
	require.NoError(t, f.engine.RecalculateScores(context.Background()))
	assert.Equal(t, notice{Kind: domain.NotificationSuccess, Message: msgRecalculateDone}, f.sink.last())

	f.remote.fail("RecalculateScores", domain.ErrTransportFailure)
	require.Error(t, f.engine.RecalculateScores(context.Background()))
	assert.Equal(t, notice{Kind: domain.NotificationError, Message: msgRecalculateFailed}, f.sink.last())
}

func TestStagingSurvivesRestart(t *testing.T) {
	f := newFixture(t, admin)
	_, err := f.engine.Assign(day(10, domain.ShiftKindDay), "alice", nil)
	require.NoError(t, err)
	_, err = f.engine.AddConstraint("alice", day(11, domain.ShiftKindNight), domain.ConstraintCant)
	require.NoError(t, err)

	restarted, err := New(newFakeRemote(), admin, &recordingSink{}, staging.New(f.slot))
	require.NoError(t, err)

	pending := restarted.PendingShifts()
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].AssignedSubjectID)
	constraints := restarted.PendingConstraints()
	require.Len(t, constraints, 1)
	assert.True(t, constraints[0].Shift.Same(day(11, domain.ShiftKindNight)))
	assert.True(t, restarted.HasPending())
}
