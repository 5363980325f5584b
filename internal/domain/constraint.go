package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ConstraintKind string

const (
	ConstraintCant       ConstraintKind = "CANT"
	ConstraintPrefersNot ConstraintKind = "PREFERS_NOT"
	ConstraintPrefers    ConstraintKind = "PREFERS"
)

var constraintKindAliases = map[string]ConstraintKind{
	"CANT":        ConstraintCant,
	"PREFERS_NOT": ConstraintPrefersNot,
	"PREFERS":     ConstraintPrefers,
	"לא יכול":     ConstraintCant,
	"מעדיף שלא":   ConstraintPrefersNot,
	"מעדיף":       ConstraintPrefers,
}

func ParseConstraintKind(s string) (ConstraintKind, error) {
	kind, ok := constraintKindAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("无效的约束类型 %q", s)
	}
	return kind, nil
}

func (k *ConstraintKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, err := ParseConstraintKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

type Constraint struct {
	SubjectID string         `json:"userId"`
	Shift     ShiftKey       `json:"shift"`
	Kind      ConstraintKind `json:"constraintType"`
	IsPending bool           `json:"isPending"`
}

// Matches 以 (subjectID, ShiftKey) 作为约束的唯一标识
func (c Constraint) Matches(subjectID string, shift ShiftKey) bool {
	return c.SubjectID == subjectID && c.Shift.Same(shift)
}
