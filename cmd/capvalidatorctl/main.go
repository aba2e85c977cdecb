// Command capvalidatorctl is the operator tool for this validator: it runs
// the per-size key ceremony, renders a genesis descriptor's commitment, and
// can simulate a small run of empty blocks against a freshly built genesis
// state for smoke-testing a key set before it goes live.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "capvalidatorctl",
	Short: "Operator tooling for the cap-chain validator",
	Long: `capvalidatorctl manages the artifacts a validator node needs before it can
join consensus: Groth16 proving/verifying keys for each supported note
shape, and the genesis descriptor that binds them to a chain id.`,
}

func main() {
	rootCmd.AddCommand(
		setupCmd(),
		genesisCmd(),
		simulateCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
