package signals

import (
	"math"

	"bigfive/pkg/tokentmpl"
)

const (
	tokKey   tokentmpl.Token = "key"
	tokLevel tokentmpl.Token = "level"
)

var fallbackLine = tokentmpl.MustParse("{key}: {level} level.", tokKey, tokLevel)

// snapshotCopy is the per-level line for the four headline signals.
var snapshotCopy = map[string]map[Level]string{
	"T": {
		LevelHigh:   "Threat: Pain avoidance runs hot; you scan for risks first.",
		LevelMedium: "Threat: You notice risk and plan around it when needed.",
		LevelLow:    "Threat: Signal stays low; you move without much caution.",
	},
	"P": {
		LevelHigh:   "Pursuit: Strong exploration/build drive; you move proactively.",
		LevelMedium: "Pursuit: Moderate; you move when the case is clear.",
		LevelLow:    "Pursuit: Exploration lower; you hold back until safe.",
	},
	"S": {
		LevelHigh:   "Social Buffer: You bond and soothe easily; steadying in teams.",
		LevelMedium: "Social Buffer: Capacity to bond and soothe is moderate.",
		LevelLow:    "Social Buffer: Buffer runs low; you self‑regulate more than co‑regulate.",
	},
	"D": {
		LevelHigh:   "Dominance/Drive: You push forward and assert control often.",
		LevelMedium: "Dominance/Drive: You can take charge when needed.",
		LevelLow:    "Dominance/Drive: Low; you rarely push or direct others.",
	},
}

// Line is one rendered signal reading.
type Line struct {
	Key     string  `json:"key"`
	Value   float64 `json:"value"`
	Percent int     `json:"percent"`
	Level   Level   `json:"level"`
	Text    string  `json:"text"`
}

// Snapshot renders the headline signals T, P, S and D.
func Snapshot(s Signals) []Line {
	keys := []struct {
		key   string
		value float64
	}{
		{"T", s.T}, {"P", s.P}, {"S", s.S}, {"D", s.D},
	}
	lines := make([]Line, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, lineFor(k.key, k.value))
	}
	return lines
}

func lineFor(key string, v float64) Line {
	lvl := LevelOf(v)
	text, ok := snapshotCopy[key][lvl]
	if !ok {
		// every token is supplied, so Render cannot fail
		text, _ = fallbackLine.Render(map[tokentmpl.Token]string{
			tokKey:   key,
			tokLevel: lvlLower(lvl),
		})
	}
	return Line{
		Key:     key,
		Value:   v,
		Percent: int(math.Floor(v*100 + 0.5)),
		Level:   lvl,
		Text:    text,
	}
}

func lvlLower(l Level) string {
	switch l {
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	}
	return "low"
}
