package types

// ------------------------
// Serial
// ------------------------

type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "none"
	}
}

func (p Parity) MarshalJSON() ([]byte, error) { return []byte(`"` + p.String() + `"`), nil }

type StopBits uint8

const (
	StopBitsHalf StopBits = iota
	StopBitsOne
	StopBitsOneAndHalf
	StopBitsTwo
)

type FlowControl uint8

const (
	FlowNone FlowControl = iota
	FlowRTSCTS
	FlowXonXoff
)

// UARTConfig describes the console port handed to the UART capability.
type UARTConfig struct {
	Name     string      `json:"name" yaml:"name"`
	Baud     uint32      `json:"baud" yaml:"baud"`
	DataBits uint8       `json:"data_bits" yaml:"data_bits"` // 5..9
	StopBits StopBits    `json:"stop_bits" yaml:"stop_bits"`
	Parity   Parity      `json:"parity" yaml:"parity"`
	Flow     FlowControl `json:"flow" yaml:"flow"`
}

// DefaultUART matches the console wiring: 115200 8N1, no flow control.
func DefaultUART() UARTConfig {
	return UARTConfig{
		Name:     "Uart",
		Baud:     115200,
		DataBits: 8,
		StopBits: StopBitsOne,
		Parity:   ParityNone,
		Flow:     FlowNone,
	}
}
