package distraction

import (
	"fmt"
	"strings"
)

// Level is the driver's current distraction level, ordered by severity.
type Level int

const (
	Safe Level = iota
	Warning
	Critical
	Severe
)

var levelNames = [...]string{"safe", "warning", "critical", "severe"}

// String returns the lower-case level name.
func (l Level) String() string {
	if l < Safe || l > Severe {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Rank returns the severity rank (0 for Safe through 3 for Severe).
func (l Level) Rank() int { return int(l) }

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool { return l >= Safe && l <= Severe }

// MarshalText encodes the level by name so JSON payloads stay readable.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("distraction: invalid level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a level name (case-insensitive) into a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return Safe, fmt.Errorf("distraction: unknown level %q", s)
}

// Consequence is the advisory action attached to a level. The alert
// renderer decides how to carry it out.
type Consequence string

const (
	ConsequenceNone         Consequence = "none"
	ConsequenceAdvisory     Consequence = "advisory"
	ConsequenceEscalated    Consequence = "escalated"
	ConsequenceIntervention Consequence = "intervention"
)

var consequences = [...]Consequence{
	ConsequenceNone,
	ConsequenceAdvisory,
	ConsequenceEscalated,
	ConsequenceIntervention,
}

var consequenceText = map[Consequence]string{
	ConsequenceNone:         "No action required",
	ConsequenceAdvisory:     "Visual and audible advisory to driver",
	ConsequenceEscalated:    "Escalated audible alert with haptic feedback",
	ConsequenceIntervention: "System intervention recommended",
}

var recommendations = [...]string{
	"Stay focused on the road",
	"Keep your eyes on the road",
	"Pull over safely if possible",
	"Immediate driver attention required",
}

// Consequence maps the level to its fixed advisory code.
func (l Level) Consequence() Consequence {
	if !l.Valid() {
		return ConsequenceNone
	}
	return consequences[l]
}

// Recommendation returns the message shown to the driver at this level.
func (l Level) Recommendation() string {
	if !l.Valid() {
		return ""
	}
	return recommendations[l]
}

// Description returns a human-readable description of the consequence.
func (c Consequence) Description() string {
	if text, ok := consequenceText[c]; ok {
		return text
	}
	return "Unknown"
}
