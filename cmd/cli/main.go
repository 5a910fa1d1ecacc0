// tracestat - Simulation Trace Statistics
//
// tracestat summarizes circuit compromise and relay composition from
// trace logs written by an onion-routing network simulator.
package main

import (
	"os"

	"tracestat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
