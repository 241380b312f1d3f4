package phaser

import (
	"fmt"
	"strings"
)

// Phase represents the signal shown by a traffic light
type Phase int

const (
	// Red means stop
	Red Phase = iota
	// Green means go
	Green
)

// String returns the lowercase name of the phase
func (p Phase) String() string {
	switch p {
	case Red:
		return "red"
	case Green:
		return "green"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Toggle returns the opposite phase
func (p Phase) Toggle() Phase {
	if p == Red {
		return Green
	}
	return Red
}

// Valid reports whether p is one of the known phases
func (p Phase) Valid() bool {
	return p == Red || p == Green
}

// ParsePhase converts a name such as "red" or "GREEN" into a Phase
func ParsePhase(name string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "red":
		return Red, nil
	case "green":
		return Green, nil
	default:
		return Red, NewConfigurationError("phase", fmt.Sprintf("unknown phase %q", name))
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, NewConfigurationError("phase", fmt.Sprintf("invalid phase value %d", int(p)))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
