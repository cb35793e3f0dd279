package halerr

import "testing"

func TestErrorsAreStableStrings(t *testing.T) {
	cases := map[string]error{
		"not_found":       ErrNotFound,
		"invalid_type":    ErrInvalidType,
		"out_of_index":    ErrOutOfIndex,
		"out_of_memory":   ErrOutOfMemory,
		"unsupported":     ErrUnsupported,
		"rejected":        ErrRejected,
		"no_interrupt":    ErrNoInterrupt,
		"already_running": ErrAlreadyRunning,
		"invalid_name":    ErrInvalidName,
	}
	for want, e := range cases {
		if e == nil || e.Error() != want {
			t.Fatalf("error %q mismatch: got %#v", want, e)
		}
	}
}
