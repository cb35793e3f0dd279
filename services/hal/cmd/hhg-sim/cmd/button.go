//go:build !(rp2040 || rp2350)

package cmd

import (
	"fmt"
	"time"

	"hhgarden-go/services/hal"
	"hhgarden-go/services/hal/internal/halcore"

	"github.com/spf13/cobra"
)

var (
	pressCount int
	pressGap   time.Duration
)

var buttonCmd = &cobra.Command{
	Use:   "button",
	Short: "Simulate button activity",
}

var buttonPressCmd = &cobra.Command{
	Use:   "press <name>",
	Short: "Press and release a button, printing the debounced clicks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := boot(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer s.close()
		pin, err := pinNumber(s, args[0])
		if err != nil {
			return err
		}
		sub := s.conn.Subscribe(hal.TopicButtonClick(args[0]))
		for i := 0; i < pressCount; i++ {
			s.sim.Press(pin)
			time.Sleep(pressGap)
		}
		for {
			select {
			case m := <-sub.Channel():
				printMessage(m)
			case <-time.After(100 * time.Millisecond):
				b, _ := s.app.Button(args[0])
				if b != nil {
					fmt.Printf("%s state=%s\n", args[0], b.State())
				}
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(buttonCmd)
	buttonCmd.AddCommand(buttonPressCmd)
	buttonPressCmd.Flags().IntVar(&pressCount, "count", 1, "number of presses")
	buttonPressCmd.Flags().DurationVar(&pressGap, "gap", 80*time.Millisecond, "time between presses")
}

func boardPin(r halcore.Role) (uint32, bool) {
	switch v := r.(type) {
	case halcore.Input:
		return v.Pin, true
	case halcore.Output:
		return v.Pin, true
	case halcore.PWMOutput:
		return v.Pin, true
	case halcore.AnalogInput:
		return v.Pin, true
	}
	return 0, false
}
