package wifi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hhgarden-go/errcode"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
	"hhgarden-go/x/timex"
)

type fakeRadio struct {
	mu         sync.Mutex
	calls      []string
	initErr    error
	enableErr  error
	connect    []types.LinkStatus // consumed per call; last value repeats
	connectErr error
	link       types.LinkStatus
}

func (r *fakeRadio) rec(s string) { r.mu.Lock(); r.calls = append(r.calls, s); r.mu.Unlock() }

func (r *fakeRadio) Init() error       { r.rec("init"); return r.initErr }
func (r *fakeRadio) EnableSTA() error  { r.rec("enable"); return r.enableErr }
func (r *fakeRadio) DisableSTA() error { r.rec("disable"); return nil }
func (r *fakeRadio) Drop() error       { r.rec("drop"); return nil }
func (r *fakeRadio) LinkStatus() types.LinkStatus {
	r.rec("link")
	return r.link
}
func (r *fakeRadio) Connect(ssid, pw string, auth types.Auth) (types.LinkStatus, error) {
	r.rec("connect " + ssid + " " + auth.String())
	st := types.LinkUp
	if len(r.connect) > 0 {
		st = r.connect[0]
		if len(r.connect) > 1 {
			r.connect = r.connect[1:]
		}
	}
	return st, r.connectErr
}

type edge struct{ from, to types.WifiStatus }

func record(f *FSM) *[]edge {
	var edges []edge
	f.SetOnStatusChange(func(from, to types.WifiStatus) { edges = append(edges, edge{from, to}) })
	return &edges
}

var creds = Credentials{SSID: "garden", Password: "secret", Auth: types.AuthWpa2}

func newFSM(r *fakeRadio, opts ...Option) (*FSM, *timex.Manual) {
	clk := timex.NewManual(time.Unix(0, 0))
	return New(r, creds, append([]Option{WithClock(clk)}, opts...)...), clk
}

func TestFullCycle(t *testing.T) {
	r := &fakeRadio{link: types.LinkUp}
	f, clk := newFSM(r)
	edges := record(f)

	start := clk.Now()
	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []edge{
		{types.WifiDisabled, types.WifiEnabling},
		{types.WifiEnabling, types.WifiEnabled},
		{types.WifiEnabled, types.WifiConnecting},
		{types.WifiConnecting, types.WifiConnected},
		{types.WifiConnected, types.WifiDisconnecting},
		{types.WifiDisconnecting, types.WifiDisabled},
	}
	if len(*edges) != len(want) {
		t.Fatalf("edges = %v", *edges)
	}
	for i := range want {
		if (*edges)[i] != want[i] {
			t.Fatalf("edge %d = %v, want %v", i, (*edges)[i], want[i])
		}
	}
	cur, prev := f.Status()
	if cur != types.WifiDisabled || prev != types.WifiDisconnecting {
		t.Fatalf("status = %s/%s", cur, prev)
	}
	// One step delay after each of the five intermediate transitions.
	if got := clk.Now().Sub(start); got != 5*DefaultStep {
		t.Fatalf("elapsed %v", got)
	}
	wantCalls := []string{"init", "enable", "connect garden wpa2", "link", "disable"}
	for i, c := range wantCalls {
		if r.calls[i] != c {
			t.Fatalf("radio call %d = %q, want %q", i, r.calls[i], c)
		}
	}
}

func TestRestartAfterCycleSkipsInit(t *testing.T) {
	r := &fakeRadio{link: types.LinkUp}
	f, _ := newFSM(r)
	_ = f.Run(context.Background())
	r.calls = nil
	if err := f.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.calls[0] != "enable" {
		t.Fatalf("radio re-initialised: %v", r.calls)
	}
}

func TestConnectFailureRetriesThenRecovers(t *testing.T) {
	r := &fakeRadio{
		link:    types.LinkUp,
		connect: []types.LinkStatus{types.LinkBadAuth, types.LinkNoNet, types.LinkUp},
	}
	f, _ := newFSM(r)
	edges := record(f)
	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []edge{
		{types.WifiDisabled, types.WifiEnabling},
		{types.WifiEnabling, types.WifiEnabled},
		{types.WifiEnabled, types.WifiConnecting},
		{types.WifiConnecting, types.WifiError},
		{types.WifiError, types.WifiConnecting},
		{types.WifiConnecting, types.WifiError},
		{types.WifiError, types.WifiConnecting},
		{types.WifiConnecting, types.WifiConnected},
		{types.WifiConnected, types.WifiDisconnecting},
		{types.WifiDisconnecting, types.WifiDisabled},
	}
	if len(*edges) != len(want) {
		t.Fatalf("edges = %v", *edges)
	}
	for i := range want {
		if (*edges)[i] != want[i] {
			t.Fatalf("edge %d = %v, want %v", i, (*edges)[i], want[i])
		}
	}
}

func TestRetriesExhaustedFoldsToDisabled(t *testing.T) {
	r := &fakeRadio{connectErr: errors.New("timeout"), connect: []types.LinkStatus{types.LinkFail}}
	f, _ := newFSM(r, WithMaxRetries(2))
	edges := record(f)

	err := f.Run(context.Background())
	if !errors.Is(err, ErrGaveUp) {
		t.Fatalf("Run: %v", err)
	}
	last := (*edges)[len(*edges)-1]
	if last != (edge{types.WifiError, types.WifiDisabled}) {
		t.Fatalf("last edge %v", last)
	}
	var connects, errorsIn int
	for _, e := range *edges {
		if e.to == types.WifiError {
			errorsIn++
		}
	}
	for _, c := range r.calls {
		if c == "connect garden wpa2" {
			connects++
		}
	}
	if connects != 3 || errorsIn != 3 {
		t.Fatalf("connects=%d errors=%d", connects, errorsIn)
	}
	if r.calls[len(r.calls)-1] != "drop" {
		t.Fatalf("radio not dropped: %v", r.calls)
	}

	// The next run must bring the radio up again.
	r.calls, r.connectErr, r.connect, r.link = nil, nil, nil, types.LinkUp
	if err := f.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.calls[0] != "init" {
		t.Fatalf("expected re-init, got %v", r.calls)
	}
}

func TestInitAndLinkFaultsRouteToError(t *testing.T) {
	r := &fakeRadio{initErr: errors.New("no chip")}
	f, _ := newFSM(r, WithMaxRetries(0))
	edges := record(f)
	if err := f.Run(context.Background()); !errors.Is(err, ErrGaveUp) {
		t.Fatalf("Run: %v", err)
	}
	if (*edges)[0] != (edge{types.WifiDisabled, types.WifiError}) {
		t.Fatalf("edges %v", *edges)
	}

	r2 := &fakeRadio{link: types.LinkNoIP}
	f2, _ := newFSM(r2, WithMaxRetries(0))
	edges2 := record(f2)
	_ = f2.Run(context.Background())
	found := false
	for _, e := range *edges2 {
		if e == (edge{types.WifiConnected, types.WifiError}) {
			found = true
		}
	}
	if !found {
		t.Fatalf("link loss not routed to Error: %v", *edges2)
	}
}

func TestConnectKeepsReturnCode(t *testing.T) {
	r := &fakeRadio{connect: []types.LinkStatus{types.LinkBadAuth}}
	f, _ := newFSM(r)
	err := f.connect()
	if ret, ok := errcode.ReturnCode(err); !ok || ret != int32(types.LinkBadAuth) {
		t.Fatalf("ret %d %v", ret, ok)
	}
}

type blockingClock struct{ timex.Manual }

func (c *blockingClock) Sleep(ctx context.Context, d time.Duration) bool {
	<-ctx.Done()
	return false
}

func TestCancelStopsAtSuspensionPoint(t *testing.T) {
	r := &fakeRadio{link: types.LinkUp}
	f := New(r, creds, WithClock(&blockingClock{}))
	ctx, cancel := context.WithCancel(context.Background())
	if err := f.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := f.Start(ctx); !errors.Is(err, halerr.ErrAlreadyRunning) {
		t.Fatalf("second start: %v", err)
	}
	cancel()
	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
	if !errors.Is(f.Err(), context.Canceled) {
		t.Fatalf("Err = %v", f.Err())
	}
	if cur, _ := f.Status(); cur != types.WifiEnabling {
		t.Fatalf("stopped in %s", cur)
	}
}

func TestCredentialsValidate(t *testing.T) {
	long := "0123456789abcdef0123456789abcdefX"
	for _, c := range []Credentials{{SSID: ""}, {SSID: long}, {SSID: "x", Password: long}} {
		if err := c.Validate(); !errors.Is(err, halerr.ErrInvalidName) {
			t.Fatalf("%+v: %v", c, err)
		}
	}
	f := New(&fakeRadio{}, Credentials{})
	if err := f.Start(context.Background()); err == nil {
		t.Fatal("start with empty ssid must fail")
	}
}
