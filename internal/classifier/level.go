package classifier

import (
	"fmt"
	"strings"
)

// Level is a classification pass. Higher levels run with more context
// (matches committed by earlier passes) and unlock more classifiers.
type Level int

const (
	LevelInitial Level = iota
	LevelIntermediate
	LevelFull
	LevelExtra
)

var levelNames = map[Level]string{
	LevelInitial:      "initial",
	LevelIntermediate: "intermediate",
	LevelFull:         "full",
	LevelExtra:        "extra",
}

// Levels returns every level in ascending order.
func Levels() []Level {
	return []Level{LevelInitial, LevelIntermediate, LevelFull, LevelExtra}
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= LevelInitial && l <= LevelExtra
}

// Next returns the level following l, or false when l is the last one.
func (l Level) Next() (Level, bool) {
	if !l.Valid() || l == LevelExtra {
		return l, false
	}
	return l + 1, true
}

// ParseLevel converts a level name (case-insensitive) into a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
