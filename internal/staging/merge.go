package staging

import (
	"reflect"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func replaceAssignment(list []domain.AssignedShift, s domain.AssignedShift) []domain.AssignedShift {
	return append(removeAssignment(list, s.ShiftKey), s)
}

func removeAssignment(list []domain.AssignedShift, shift domain.ShiftKey) []domain.AssignedShift {
	out := list[:0:0]
	for _, s := range list {
		if !s.Same(shift) {
			out = append(out, s)
		}
	}
	return out
}

func containsAssignment(list []domain.AssignedShift, s domain.AssignedShift) bool {
	for _, other := range list {
		if other.Same(s.ShiftKey) && other.AssignedSubjectID == s.AssignedSubjectID && reflect.DeepEqual(other.Preset, s.Preset) {
			return true
		}
	}
	return false
}

func cloneAssignments(list []domain.AssignedShift) []domain.AssignedShift {
	out := make([]domain.AssignedShift, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}

func replaceConstraint(list []domain.Constraint, c domain.Constraint) []domain.Constraint {
	return append(removeConstraint(list, c.SubjectID, c.Shift), c)
}

func removeConstraint(list []domain.Constraint, subjectID string, shift domain.ShiftKey) []domain.Constraint {
	out := list[:0:0]
	for _, c := range list {
		if !c.Matches(subjectID, shift) {
			out = append(out, c)
		}
	}
	return out
}

func containsConstraint(list []domain.Constraint, c domain.Constraint) bool {
	for _, other := range list {
		if other.Matches(c.SubjectID, c.Shift) && other.Kind == c.Kind {
			return true
		}
	}
	return false
}
