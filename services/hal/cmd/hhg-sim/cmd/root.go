//go:build !(rp2040 || rp2350)

package cmd

import (
	"context"
	"fmt"
	"os"

	"hhgarden-go/bus"
	"hhgarden-go/services/hal"
	"hhgarden-go/services/hal/config"
	"hhgarden-go/services/hal/internal/platform"
	"hhgarden-go/x/logx"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "hhg-sim",
	Short: "Garden controller simulator",
	Long: `Boots the garden controller core on a simulated board so the registry,
button and UART bridges and the Wi-Fi state machine can be exercised from
a terminal.

Examples:
  hhg-sim run --for 10s                       # boot and print every bus event
  hhg-sim pin write Relay1 1                  # drive an output
  hhg-sim button press Btn --count 3          # simulate presses
  hhg-sim wifi cycle --fail-connect           # watch the FSM retry and give up
  hhg-sim console --port /dev/ttyUSB0         # feed a real serial port into the UART bridge`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			logx.Use(l)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (HHG_* env vars override)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging to stderr")
}

// session is one booted app on a fresh simulated board.
type session struct {
	app  *hal.App
	sim  *platform.Sim
	bus  *bus.Bus
	conn *bus.Connection
}

func boot(ctx context.Context, tweak func(*config.Config)) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if tweak != nil {
		tweak(&cfg)
	}
	board, err := hal.LoadBoard(cfg)
	if err != nil {
		return nil, err
	}
	sim := platform.NewSim()
	b := bus.NewBus(256)
	app, err := hal.New(cfg, board, sim.Bundle(), b)
	if err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	return &session{app: app, sim: sim, bus: b, conn: b.NewConnection("cli")}, nil
}

func (s *session) close() error {
	s.conn.Disconnect()
	return s.app.Close()
}

func printMessage(m *bus.Message) {
	switch p := m.Payload.(type) {
	case []byte:
		fmt.Printf("%-28s %q\n", m.Topic, p)
	default:
		fmt.Printf("%-28s %v\n", m.Topic, p)
	}
}
