package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ShiftKind string

const (
	ShiftKindDay   ShiftKind = "DAY"
	ShiftKindNight ShiftKind = "NIGHT"
)

// 旧版客户端使用本地化的班次名称
var shiftKindAliases = map[string]ShiftKind{
	"DAY":   ShiftKindDay,
	"NIGHT": ShiftKindNight,
	"יום":   ShiftKindDay,
	"לילה":  ShiftKindNight,
	"白班":    ShiftKindDay,
	"夜班":    ShiftKindNight,
}

func ParseShiftKind(s string) (ShiftKind, error) {
	kind, ok := shiftKindAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("无效的班次类型 %q", s)
	}
	return kind, nil
}

func (k *ShiftKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, err := ParseShiftKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ShiftKey 以日历日期和班次类型标识一个班次，时刻与时区偏移不参与比较。
type ShiftKey struct {
	Date time.Time `json:"date"`
	Kind ShiftKind `json:"type"`
}

func NewShiftKey(date time.Time, kind ShiftKind) ShiftKey {
	return ShiftKey{Date: date, Kind: kind}
}

// ParseShiftKey 接受 2006-01-02 或 RFC3339 格式的日期
func ParseShiftKey(date, kind string) (ShiftKey, error) {
	k, err := ParseShiftKind(kind)
	if err != nil {
		return ShiftKey{}, err
	}
	d, err := time.ParseInLocation(time.DateOnly, date, Location)
	if err != nil {
		d, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return ShiftKey{}, fmt.Errorf("无效的日期 %q", date)
		}
	}
	return ShiftKey{Date: d, Kind: k}, nil
}

// SameShift 判断两个班次是否为同一个班次，任一为 nil 时返回 false。
// 所有涉及班次的查找、替换与删除都必须通过它进行比较。
func SameShift(a, b *ShiftKey) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind == b.Kind && CalendarDay(a.Date).Equal(CalendarDay(b.Date))
}

func (k ShiftKey) Same(other ShiftKey) bool {
	return SameShift(&k, &other)
}

func (k ShiftKey) Day() string {
	return CalendarDay(k.Date).Format(time.DateOnly)
}

func (k ShiftKey) String() string {
	return k.Day() + "/" + string(k.Kind)
}
