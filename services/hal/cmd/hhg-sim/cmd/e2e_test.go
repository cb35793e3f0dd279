//go:build !(rp2040 || rp2350)

package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func TestSimE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "pin write relay",
			args:        []string{"pin", "write", "Relay1", "1"},
			wantContain: []string{"Relay1 (GP6) role=output level=1"},
		},
		{
			name:        "pin read adc",
			args:        []string{"pin", "read", "InternalTemp"},
			wantContain: []string{"InternalTemp = 876"},
		},
		{
			name:        "pin pwm",
			args:        []string{"pin", "pwm", "LedGreen", "1000"},
			wantContain: []string{"duty=1000"},
		},
		{
			name:    "write to input",
			args:    []string{"pin", "write", "Btn", "1"},
			wantErr: true,
		},
		{
			name:        "button press",
			args:        []string{"button", "press", "Btn", "--gap", "60ms"},
			wantContain: []string{"hal/button/Btn/click", "pressed", "Btn state=released"},
		},
		{
			name:        "wifi cycle",
			args:        []string{"wifi", "cycle", "--fail-connect=false"},
			wantContain: []string{"Disabled      -> Enabling", "Connected     -> Disconnecting", "final Disabled (previous Disconnecting)"},
		},
		{
			name:        "wifi gives up",
			args:        []string{"wifi", "cycle", "--fail-connect"},
			wantErr:     true,
			wantContain: []string{"Connecting    -> Error", "Error         -> Disabled"},
		},
		{
			name:        "run briefly",
			args:        []string{"run", "--for", "50ms"},
			wantContain: []string{"hal/state"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HHG_WIFI_STEP", "1ms")
			t.Setenv("HHG_WIFI_BACKOFF", "1ms")
			t.Setenv("HHG_WIFI_MAX_RETRIES", "1")

			old := os.Stdout
			r, w, _ := os.Pipe()
			os.Stdout = w
			var buf bytes.Buffer
			done := make(chan struct{})
			go func() {
				buf.ReadFrom(r)
				close(done)
			}()

			configPath, verbose = "", false
			failConnect, wifiSSID = false, ""
			pressCount, pressGap = 1, 80*time.Millisecond
			runFor = 0
			rootCmd.SetArgs(tt.args)
			err := rootCmd.Execute()

			w.Close()
			os.Stdout = old
			<-done
			output := buf.String()

			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}
