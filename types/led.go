package types

// ------------------------
// LED
// ------------------------

// LEDMode is the blink pattern of the status LED.
type LEDMode uint8

const (
	LEDOff LEDMode = iota
	LEDSlow
	LEDFast
)

func (m LEDMode) String() string {
	switch m {
	case LEDSlow:
		return "slow"
	case LEDFast:
		return "fast"
	default:
		return "off"
	}
}

func (m LEDMode) MarshalJSON() ([]byte, error) { return []byte(`"` + m.String() + `"`), nil }

// ParseLEDMode maps a console/config word to a mode. Matching is exact and
// case-sensitive.
func ParseLEDMode(s string) (LEDMode, bool) {
	switch s {
	case "off":
		return LEDOff, true
	case "slow":
		return LEDSlow, true
	case "fast":
		return LEDFast, true
	}
	return LEDOff, false
}

// LEDState is published (retained) whenever the mode changes.
type LEDState struct {
	Mode LEDMode `json:"mode"`
}
