//go:build !(rp2040 || rp2350)

// Command hhg-sim runs the garden controller against the simulated platform.
package main

import "hhgarden-go/services/hal/cmd/hhg-sim/cmd"

func main() {
	cmd.Execute()
}
