//go:build !(rp2040 || rp2350)

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"hhgarden-go/services/hal"

	"github.com/spf13/cobra"
	"github.com/tarm/serial"
)

var (
	consolePort string
	consoleBaud int
	consoleEcho bool
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Feed a real serial port into the simulated UART bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := serial.OpenPort(&serial.Config{
			Name:        consolePort,
			Baud:        consoleBaud,
			ReadTimeout: 100 * time.Millisecond,
		})
		if err != nil {
			return fmt.Errorf("failed to open serial port %s: %w", consolePort, err)
		}
		defer port.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		s, err := boot(ctx, nil)
		if err != nil {
			return err
		}
		defer s.close()

		tag := s.app.UART().Tag()
		sub := s.conn.Subscribe(hal.TopicUARTRX(tag))
		go func() {
			buf := make([]byte, 64)
			for ctx.Err() == nil {
				n, err := port.Read(buf)
				if n > 0 {
					s.sim.UART.Inject(buf[:n])
				}
				if err != nil && n == 0 {
					time.Sleep(10 * time.Millisecond)
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				fmt.Printf("dropped %d bytes\n", s.app.UART().Drops())
				return nil
			case m := <-sub.Channel():
				data, _ := m.Payload.([]byte)
				printMessage(m)
				if consoleEcho {
					if _, err := port.Write(data); err != nil {
						return err
					}
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().StringVarP(&consolePort, "port", "p", "", "serial device, e.g. /dev/ttyUSB0")
	consoleCmd.Flags().IntVar(&consoleBaud, "baud", 115200, "baud rate")
	consoleCmd.Flags().BoolVar(&consoleEcho, "echo", false, "write each received batch back to the port")
	consoleCmd.MarkFlagRequired("port")
}
