//go:build !(rp2040 || rp2350)

package platform

import (
	"sync"

	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/types"
)

// SimRadio is a scriptable halcore.Radio. By default every call succeeds and
// Connect reports LinkUp.
type SimRadio struct {
	mu      sync.Mutex
	inited  bool
	sta     bool
	link    types.LinkStatus
	Network string // SSID that accepts connections; empty accepts any

	// FailConnect makes Connect report the given code instead of joining.
	FailConnect types.LinkStatus
}

var _ halcore.Radio = (*SimRadio)(nil)

func NewSimRadio() *SimRadio { return &SimRadio{} }

func (r *SimRadio) Init() error {
	r.mu.Lock()
	r.inited = true
	r.mu.Unlock()
	return nil
}

func (r *SimRadio) EnableSTA() error {
	r.mu.Lock()
	r.sta = true
	r.mu.Unlock()
	return nil
}

func (r *SimRadio) DisableSTA() error {
	r.mu.Lock()
	r.sta, r.link = false, types.LinkDown
	r.mu.Unlock()
	return nil
}

func (r *SimRadio) Connect(ssid, _ string, _ types.Auth) (types.LinkStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case !r.inited || !r.sta:
		r.link = types.LinkFail
	case r.FailConnect.Failed():
		r.link = r.FailConnect
	case r.Network != "" && ssid != r.Network:
		r.link = types.LinkNoNet
	default:
		r.link = types.LinkUp
	}
	return r.link, nil
}

func (r *SimRadio) LinkStatus() types.LinkStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.link
}

func (r *SimRadio) Drop() error {
	r.mu.Lock()
	r.inited, r.sta, r.link = false, false, types.LinkDown
	r.mu.Unlock()
	return nil
}
