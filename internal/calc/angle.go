package calc

import (
	"fmt"
	"math"
	"strings"
)

// AngleMode selects the unit trigonometric arguments are read in.
type AngleMode int

const (
	Degrees AngleMode = iota
	Radians
	Gradians
)

var angleModeLabels = [...]string{
	Degrees:  "deg",
	Radians:  "rad",
	Gradians: "grad",
}

func (m AngleMode) String() string {
	if m < Degrees || m > Gradians {
		return fmt.Sprintf("AngleMode(%d)", int(m))
	}
	return angleModeLabels[m]
}

// Next returns the mode that follows m in the deg → rad → grad cycle.
func (m AngleMode) Next() AngleMode {
	return (m + 1) % AngleMode(len(angleModeLabels))
}

// ToRadians converts an angle expressed in m to radians.
func (m AngleMode) ToRadians(angle float64) float64 {
	switch m {
	case Degrees:
		return angle * (math.Pi / 180)
	case Gradians:
		return angle * (math.Pi / 200)
	default:
		return angle
	}
}

func (m AngleMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *AngleMode) UnmarshalText(text []byte) error {
	mode, err := ParseAngleMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseAngleMode accepts the short labels as well as the spelled-out names.
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deg", "degree", "degrees":
		return Degrees, nil
	case "rad", "radian", "radians":
		return Radians, nil
	case "grad", "gradian", "gradians":
		return Gradians, nil
	}
	return Degrees, fmt.Errorf("unknown angle mode %q", s)
}
