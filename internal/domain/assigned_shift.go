package domain

import "time"

type AssignedShift struct {
	ShiftKey
	AssignedSubjectID string         `json:"assignedUsername"`
	Preset            *ScoringPreset `json:"preset,omitempty"`
	IsPending         bool           `json:"isPending"`
}

func (s AssignedShift) Key() ShiftKey {
	return s.ShiftKey
}

// Clone 深拷贝预设快照，防止暂存区和已提交数据共享同一份权重
func (s AssignedShift) Clone() AssignedShift {
	if s.Preset != nil {
		p := s.Preset.Clone()
		s.Preset = &p
	}
	return s
}

type SuggestRequest struct {
	SubjectIDs []string  `json:"userIds" validate:"required,min=1,dive,required"`
	StartDate  time.Time `json:"startDate" validate:"required"`
	EndDate    time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
}
