package halcore

import (
	"errors"
	"strings"
	"testing"

	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
)

func TestNewConfigNilRole(t *testing.T) {
	c := NewConfig("Relay1", nil)
	if _, ok := c.Role.(NotInitialized); !ok || c.Role.Kind() != KindNotInitialized {
		t.Fatalf("role %#v", c.Role)
	}
	if c.Interrupt != nil {
		t.Fatal("fresh config carries an interrupt")
	}
}

func TestConfigEqualByName(t *testing.T) {
	a := NewConfig("Led", Output{Pin: 1})
	b := NewConfig("Led", PWMOutput{Pin: 13})
	if !a.Equal(b) {
		t.Fatal("same name with different roles must be equal")
	}
	if a.Equal(NewConfig("Led2", Output{Pin: 1})) {
		t.Fatal("different names compared equal")
	}
}

func TestValidName(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"", false},
		{"Btn", true},
		{strings.Repeat("x", MaxNameLen), true},
		{strings.Repeat("x", MaxNameLen+1), false},
	}
	for _, c := range cases {
		if got := ValidName(c.name); got != c.ok {
			t.Errorf("ValidName(len %d) = %v", len(c.name), got)
		}
	}
}

func TestRoleKinds(t *testing.T) {
	cases := []struct {
		role Role
		want string
	}{
		{NotInitialized{}, "not_initialized"},
		{Input{}, "input"},
		{AnalogInput{}, "analog_input"},
		{Output{}, "output"},
		{PWMOutput{}, "pwm_output"},
		{Passthrough{}, "passthrough"},
	}
	for _, c := range cases {
		if got := c.role.Kind().String(); got != c.want {
			t.Errorf("%T kind = %s, want %s", c.role, got, c.want)
		}
	}
	if RoleKind(200).String() != "not_initialized" {
		t.Fatal("unknown kind")
	}
}

func TestUnsupportedReportsEverythingAbsent(t *testing.T) {
	var u Unsupported
	cfg := NewConfig("x", Input{})
	errs := []error{
		u.Init(),
		u.ConfigureInput(cfg, nil, 0, types.PullUp, 0),
		u.ConfigureAnalog(cfg, nil, 0, 0, 0),
		u.ConfigureOutput(cfg, nil, 0, 0),
		u.ConfigurePWM(cfg, nil, 0, 0),
		u.ConfigurePassthrough(cfg, nil, 0, nil),
		u.Deinit(),
	}
	if _, err := u.Read(cfg, nil, 0); err != nil {
		errs = append(errs, err)
	} else {
		t.Fatal("Read succeeded")
	}
	for i, err := range errs {
		if !errors.Is(err, halerr.ErrUnsupported) {
			t.Errorf("call %d: %v", i, err)
		}
	}
	if u.Write(cfg, nil, 0, 1) || u.SetPWM(cfg, nil, 0, 1) ||
		u.SetInterrupt(cfg, nil, 0, types.RisingEdge, func() {}, true) ||
		u.EnableInterrupt(cfg, nil, 0, true) {
		t.Fatal("boolean capability reported success")
	}
}

func TestNoRadio(t *testing.T) {
	var r NoRadio
	for _, err := range []error{r.Init(), r.EnableSTA(), r.DisableSTA()} {
		if !errors.Is(err, halerr.ErrUnsupported) {
			t.Fatalf("err %v", err)
		}
	}
	if st, err := r.Connect("garden", "", types.AuthWpa2); st != types.LinkFail || !errors.Is(err, halerr.ErrUnsupported) {
		t.Fatalf("connect %s %v", st, err)
	}
	if r.LinkStatus() != types.LinkDown || r.Drop() != nil {
		t.Fatal("link state")
	}
}
