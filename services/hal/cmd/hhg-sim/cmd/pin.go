//go:build !(rp2040 || rp2350)

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Drive or sample a named peripheral through the registry",
}

var pinWriteCmd = &cobra.Command{
	Use:   "write <name> <value>",
	Short: "Write an output",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		s, err := boot(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.app.Gpio().Write(args[0], uint32(v)); err != nil {
			return err
		}
		return showPin(s, args[0])
	},
}

var pinReadCmd = &cobra.Command{
	Use:   "read <name>",
	Short: "Read an input or analog channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := boot(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer s.close()
		v, err := s.app.Gpio().Read(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s = %d\n", args[0], v)
		return nil
	},
}

var pinPWMCmd = &cobra.Command{
	Use:   "pwm <name> <duty>",
	Short: "Set a PWM duty in 0..65535",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil {
			return fmt.Errorf("duty: %w", err)
		}
		s, err := boot(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.app.Gpio().SetPWM(args[0], uint16(d)); err != nil {
			return err
		}
		return showPin(s, args[0])
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)
	pinCmd.AddCommand(pinWriteCmd, pinReadCmd, pinPWMCmd)
}

func showPin(s *session, name string) error {
	pin, err := pinNumber(s, name)
	if err != nil {
		return err
	}
	p, _ := s.sim.Pin(pin)
	fmt.Printf("%s (GP%d) role=%s level=%d duty=%d\n", name, pin, p.Role, p.Level, p.Duty)
	return nil
}

func pinNumber(s *session, name string) (uint32, error) {
	cfg, ok := s.app.Board().Find(name)
	if !ok {
		return 0, fmt.Errorf("%s: not on board %s", name, s.app.Board().Name)
	}
	pin, ok := boardPin(cfg.Role)
	if !ok {
		return 0, fmt.Errorf("%s: %s has no pin", name, cfg.Role.Kind())
	}
	return pin, nil
}
