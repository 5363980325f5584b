package domain

type ShiftWeight struct {
	Day    string    `json:"day" validate:"required"`
	Kind   ShiftKind `json:"shiftType" validate:"required,oneof=DAY NIGHT"`
	Weight float64   `json:"weight" validate:"min=0"`
}

type ScoringPreset struct {
	Name    string        `json:"name" validate:"required"`
	Weights []ShiftWeight `json:"weights" validate:"dive"`
}

func (p ScoringPreset) Clone() ScoringPreset {
	weights := make([]ShiftWeight, len(p.Weights))
	copy(weights, p.Weights)
	return ScoringPreset{Name: p.Name, Weights: weights}
}

// SetWeight 按 (day, kind) 替换或追加权重
func (p *ScoringPreset) SetWeight(day string, kind ShiftKind, weight float64) {
	for i, w := range p.Weights {
		if w.Day == day && w.Kind == kind {
			p.Weights[i].Weight = weight
			return
		}
	}
	p.Weights = append(p.Weights, ShiftWeight{Day: day, Kind: kind, Weight: weight})
}

func (p ScoringPreset) WeightFor(day string, kind ShiftKind) (float64, bool) {
	for _, w := range p.Weights {
		if w.Day == day && w.Kind == kind {
			return w.Weight, true
		}
	}
	return 0, false
}

// PresetSettings 是服务器上保存的全部预设以及当前预设
type PresetSettings struct {
	Presets map[string]ScoringPreset `json:"presets"`
	Current string                   `json:"currentPreset"`
	// 部分服务器版本只返回当前预设对象
	CurrentObject *ScoringPreset `json:"currentPresetObject,omitempty"`
}

func (s PresetSettings) CurrentPreset() (ScoringPreset, bool) {
	p, ok := s.Presets[s.Current]
	return p, ok
}
