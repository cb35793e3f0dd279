package types

// WifiStatus is one state of the radio connection state machine.
type WifiStatus uint8

const (
	WifiDisabled WifiStatus = iota
	WifiEnabling
	WifiEnabled
	WifiConnecting
	WifiConnected
	WifiDisconnecting
	WifiError
)

func (s WifiStatus) String() string {
	switch s {
	case WifiDisabled:
		return "Disabled"
	case WifiEnabling:
		return "Enabling"
	case WifiEnabled:
		return "Enabled"
	case WifiConnecting:
		return "Connecting"
	case WifiConnected:
		return "Connected"
	case WifiDisconnecting:
		return "Disconnecting"
	case WifiError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Auth is the security mode used to join a network. The numeric values are
// persisted in the device configuration.
type Auth uint8

const (
	AuthOpen Auth = iota
	AuthWep
	AuthWpa
	AuthWpa2
	AuthWpa2Mixed
	AuthWpa3
	AuthWpa2Wpa3
)

// AuthFromUint8 decodes a stored auth value; unknown values fall back to Open.
func AuthFromUint8(v uint8) Auth {
	if v > uint8(AuthWpa2Wpa3) {
		return AuthOpen
	}
	return Auth(v)
}

func (a Auth) String() string {
	switch a {
	case AuthWep:
		return "wep"
	case AuthWpa:
		return "wpa"
	case AuthWpa2:
		return "wpa2"
	case AuthWpa2Mixed:
		return "wpa2_mixed"
	case AuthWpa3:
		return "wpa3"
	case AuthWpa2Wpa3:
		return "wpa2_wpa3"
	default:
		return "open"
	}
}

// LinkStatus is the radio's report of the station interface.
type LinkStatus int32

const (
	LinkDown    LinkStatus = 0
	LinkJoin    LinkStatus = 1  // associated, no IP yet
	LinkNoIP    LinkStatus = 2  // associated, DHCP failed
	LinkUp      LinkStatus = 3  // associated with an IP address
	LinkFail    LinkStatus = -1 // connection failed
	LinkNoNet   LinkStatus = -2 // no matching SSID
	LinkBadAuth LinkStatus = -3 // authentication failure
)

func (l LinkStatus) Failed() bool { return l < 0 }

func (l LinkStatus) String() string {
	switch l {
	case LinkDown:
		return "down"
	case LinkJoin:
		return "join"
	case LinkNoIP:
		return "noip"
	case LinkUp:
		return "up"
	case LinkFail:
		return "fail"
	case LinkNoNet:
		return "nonet"
	case LinkBadAuth:
		return "badauth"
	default:
		return "unknown"
	}
}

// ParseAuth decodes the configuration spelling of an auth mode.
func ParseAuth(s string) (Auth, bool) {
	for a := AuthOpen; a <= AuthWpa2Wpa3; a++ {
		if a.String() == s {
			return a, true
		}
	}
	return AuthOpen, false
}
