//go:build !(rp2040 || rp2350)

package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"hhgarden-go/bus"

	"github.com/spf13/cobra"
)

var runFor time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the controller and print bus events until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if runFor > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runFor)
			defer cancel()
		}

		s, err := boot(ctx, nil)
		if err != nil {
			return err
		}
		sub := s.conn.Subscribe(bus.T("hal", "#"))
		for {
			select {
			case <-ctx.Done():
				return s.close()
			case m := <-sub.Channel():
				printMessage(m)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVar(&runFor, "for", 0, "stop after this long (0 = until interrupted)")
}
