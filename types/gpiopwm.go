package types

// ------------------------
// Input pulls
// ------------------------

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	default:
		return "none"
	}
}

// ------------------------
// Interrupts
// ------------------------

// InterruptKind selects the edge or level an input interrupt fires on.
type InterruptKind uint8

const (
	RisingEdge InterruptKind = iota
	FallingEdge
	BothEdge
	HighLevel
	LowLevel
)

func (k InterruptKind) String() string {
	switch k {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	case BothEdge:
		return "both"
	case HighLevel:
		return "high"
	case LowLevel:
		return "low"
	default:
		return "unknown"
	}
}

// ------------------------
// Button
// ------------------------

type ButtonState uint8

const (
	ButtonNone ButtonState = iota
	ButtonPressed
	ButtonReleased
)

func (s ButtonState) String() string {
	switch s {
	case ButtonPressed:
		return "pressed"
	case ButtonReleased:
		return "released"
	default:
		return "none"
	}
}

// ------------------------
// PWM
// ------------------------

// PWMTop is the counter wrap the platform configures for every PWM output.
const PWMTop uint16 = 65535
