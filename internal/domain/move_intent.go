package domain

import (
	"encoding/json"
	"fmt"
)

// MoveIntent 描述一次拖放：把 SubjectID 从 From 移到 To。
// From 为空表示从人员列表拖入，To 为空表示拖出班表，即撤销。
type MoveIntent struct {
	SubjectID string          `validate:"required"`
	Kind      *ConstraintKind `validate:"omitempty,oneof=CANT PREFERS_NOT PREFERS"`
	From      *ShiftKey
	To        *ShiftKey
}

// IsNoop 表示起点和终点是同一个班次，或者两端都为空
func (m MoveIntent) IsNoop() bool {
	if m.From == nil && m.To == nil {
		return true
	}
	return SameShift(m.From, m.To)
}

type transferPayload struct {
	User *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	UserID         string          `json:"userId"`
	ConstraintType *ConstraintKind `json:"constraintType"`
	FromShift      *ShiftKey       `json:"fromShift"`
}

// DecodeMoveIntent 解析拖放时写入的 JSON，目标班次由放下的位置决定
func DecodeMoveIntent(data []byte, to *ShiftKey) (MoveIntent, error) {
	var payload transferPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return MoveIntent{}, fmt.Errorf("无法解析拖放数据: %w", err)
	}

	intent := MoveIntent{
		SubjectID: payload.UserID,
		Kind:      payload.ConstraintType,
		From:      payload.FromShift,
		To:        to,
	}
	if payload.User != nil {
		intent.SubjectID = Subject{ID: payload.User.ID, Name: payload.User.Name}.Identity()
	}
	if intent.From != nil && intent.From.Date.IsZero() {
		return MoveIntent{}, fmt.Errorf("拖放数据中的起始班次缺少日期")
	}
	return intent, nil
}
