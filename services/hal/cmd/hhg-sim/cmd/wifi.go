//go:build !(rp2040 || rp2350)

package cmd

import (
	"fmt"

	"hhgarden-go/services/hal/config"
	"hhgarden-go/types"

	"github.com/spf13/cobra"
)

var (
	failConnect bool
	wifiSSID    string
)

var wifiCmd = &cobra.Command{
	Use:   "wifi",
	Short: "Drive the Wi-Fi state machine against the simulated radio",
}

var wifiCycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one connect/disconnect cycle and print every transition",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := boot(cmd.Context(), func(c *config.Config) {
			c.Wifi.Enabled = false
			if wifiSSID != "" {
				c.Wifi.SSID = wifiSSID
			}
			if c.Wifi.SSID == "" {
				c.Wifi.SSID = "garden"
			}
		})
		if err != nil {
			return err
		}
		defer s.close()
		if failConnect {
			s.sim.Radio.FailConnect = types.LinkBadAuth
		}

		fsm := s.app.Wifi()
		fsm.SetOnStatusChange(func(from, to types.WifiStatus) {
			fmt.Printf("%-13s -> %s\n", from, to)
		})
		err = fsm.Run(cmd.Context())
		cur, prev := fsm.Status()
		fmt.Printf("final %s (previous %s)\n", cur, prev)
		return err
	},
}

func init() {
	rootCmd.AddCommand(wifiCmd)
	wifiCmd.AddCommand(wifiCycleCmd)
	wifiCycleCmd.Flags().BoolVar(&failConnect, "fail-connect", false, "make every connect attempt fail with bad auth")
	wifiCycleCmd.Flags().StringVar(&wifiSSID, "ssid", "", "network to join (default from config)")
}
