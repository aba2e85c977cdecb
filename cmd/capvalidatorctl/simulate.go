package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/cap-chain/validator/pkg/block"
	"github.com/cap-chain/validator/pkg/config"
	"github.com/cap-chain/validator/pkg/recordtree"
	"github.com/cap-chain/validator/pkg/validator"
)

func simulateCmd() *cobra.Command {
	var genesisPath string
	var blocks int

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Apply a run of empty blocks to a genesis state and print the resulting commitments",
		Long: `simulate is a smoke test for a freshly generated genesis descriptor: it
builds the described validator state and advances it through a run of
empty blocks, printing the state commitment after each one. It never
constructs real transactions; exercising the note path end to end is the
job of the prover-side tooling outside this module.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var vks *validator.VerifierKeySet
			if genesisPath != "" {
				g, err := config.LoadGenesis(genesisPath)
				if err != nil {
					return err
				}
				vks, err = buildVerifierKeySet(g)
				if err != nil {
					return fmt.Errorf("simulate: %w", err)
				}
			} else {
				vks = &validator.VerifierKeySet{}
			}

			tree := recordtree.New()
			state := validator.New(*vks, tree)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "genesis: %s\n", hexutil.Encode(state.Commit().Bytes()))

			for i := 0; i < blocks; i++ {
				now := state.PrevCommitTime + 1
				if _, err := state.ValidateAndApply(now, block.NewElaboratedBlock()); err != nil {
					return fmt.Errorf("simulate: apply block %d: %w", i+1, err)
				}
				fmt.Fprintf(out, "block %d (now=%d): %s\n", i+1, now, hexutil.Encode(state.Commit().Bytes()))
			}

			if err := validator.VerifyStateInvariants(state); err != nil {
				return fmt.Errorf("simulate: final state invariants: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&genesisPath, "genesis", "", "path to a genesis descriptor (omit to simulate with no verifying keys)")
	cmd.Flags().IntVar(&blocks, "blocks", 5, "number of empty blocks to apply")

	return cmd
}
