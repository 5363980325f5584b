package engine

import "github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"

func upsertShift(list []domain.AssignedShift, s domain.AssignedShift) []domain.AssignedShift {
	s = s.Clone()
	s.IsPending = false
	for i := range list {
		if list[i].Same(s.ShiftKey) {
			list[i] = s
			return list
		}
	}
	return append(list, s)
}

func dropShift(list []domain.AssignedShift, shift domain.ShiftKey) []domain.AssignedShift {
	out := list[:0]
	for _, s := range list {
		if !s.Same(shift) {
			out = append(out, s)
		}
	}
	return out
}

func upsertConstraint(list []domain.Constraint, c domain.Constraint) []domain.Constraint {
	c.IsPending = false
	for i := range list {
		if list[i].Matches(c.SubjectID, c.Shift) {
			list[i] = c
			return list
		}
	}
	return append(list, c)
}

func dropConstraint(list []domain.Constraint, subjectID string, shift domain.ShiftKey) []domain.Constraint {
	out := list[:0]
	for _, c := range list {
		if !c.Matches(subjectID, shift) {
			out = append(out, c)
		}
	}
	return out
}

func cloneShifts(list []domain.AssignedShift) []domain.AssignedShift {
	out := make([]domain.AssignedShift, 0, len(list))
	for _, s := range list {
		out = append(out, s.Clone())
	}
	return out
}
