package pow

import "fmt"

// Level names a fixed difficulty preset.
type Level int

const (
	VeryEasy Level = iota
	Easy
	Medium
	Hard
	VeryHard
)

var levelBits = map[Level]uint32{
	VeryEasy: 0x207fffff,
	Easy:     0x1f0fffff,
	Medium:   0x1e0fffff,
	Hard:     0x1d0fffff,
	VeryHard: 0x1c0fffff,
}

var levelNames = map[Level]string{
	VeryEasy: "very-easy",
	Easy:     "easy",
	Medium:   "medium",
	Hard:     "hard",
	VeryHard: "very-hard",
}

// Bits returns the compact value for the level. Unknown levels map to
// MinDifficultyBits.
func (l Level) Bits() uint32 {
	if b, ok := levelBits[l]; ok {
		return b
	}
	return MinDifficultyBits
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel maps a level name back to its Level.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}
