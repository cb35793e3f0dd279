//go:build !(rp2040 || rp2350)

package platform

// Sim is the host platform with its simulation handles exposed.
type Sim struct {
	*Host
	UART  *HostUART
	Radio *SimRadio
}

func NewSim() *Sim {
	return &Sim{Host: NewHost(), UART: NewHostUART("uart0"), Radio: NewSimRadio()}
}

func (s *Sim) Bundle() Bundle {
	return Bundle{Caps: s.Host, UART: s.UART, Radio: s.Radio, Buses: s.Host}
}

// Default returns a fresh simulated platform.
func Default() Bundle { return NewSim().Bundle() }
