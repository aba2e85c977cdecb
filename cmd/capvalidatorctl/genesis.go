package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/cap-chain/validator/pkg/cap"
	"github.com/cap-chain/validator/pkg/config"
	"github.com/cap-chain/validator/pkg/keyset"
	"github.com/cap-chain/validator/pkg/recordtree"
	"github.com/cap-chain/validator/pkg/validator"
)

func genesisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Inspect and describe a genesis descriptor",
	}
	cmd.AddCommand(genesisDescribeCmd())
	return cmd
}

func genesisDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <genesis.yaml>",
		Short: "Load a genesis descriptor, build its verifying key set, and print the genesis state commitment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := config.LoadGenesis(args[0])
			if err != nil {
				return err
			}
			vks, err := buildVerifierKeySet(g)
			if err != nil {
				return fmt.Errorf("genesis describe: %w", err)
			}
			tree := recordtree.New()
			state := validator.New(*vks, tree)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "chain_id: %s\n", g.ChainID)
			if vks.Mint != nil {
				fmt.Fprintf(out, "mint key: (0,%d)\n", vks.Mint.NumOutputs())
			}
			if vks.Xfr != nil {
				fmt.Fprintf(out, "transfer sizes: %v\n", vks.Xfr.Sizes())
			}
			if vks.Freeze != nil {
				fmt.Fprintf(out, "freeze sizes: %v\n", vks.Freeze.Sizes())
			}
			digest := state.Commit()
			fmt.Fprintf(out, "genesis state commitment: %s\n", hexutil.Encode(digest.Bytes()))
			return nil
		},
	}
	return cmd
}

// buildVerifierKeySet reads every verifying key a genesis descriptor
// references and assembles them into the key set a validator.State needs.
func buildVerifierKeySet(g *config.GenesisDescriptor) (*validator.VerifierKeySet, error) {
	vks := &validator.VerifierKeySet{}

	if g.Mint != "" {
		vk, err := readVerifyingKey(g.Mint, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("mint key: %w", err)
		}
		vks.Mint = vk
	}

	if len(g.Transfer) > 0 {
		keys := make([]*cap.VerifyingKey, 0, len(g.Transfer))
		for _, d := range g.Transfer {
			vk, err := readVerifyingKey(d.Path, d.NumInputs, d.NumOutputs)
			if err != nil {
				return nil, fmt.Errorf("transfer key (%d,%d): %w", d.NumInputs, d.NumOutputs, err)
			}
			keys = append(keys, vk)
		}
		ks, err := keyset.New(keyset.OrderByInputs{}, keys)
		if err != nil {
			return nil, fmt.Errorf("transfer keys: %w", err)
		}
		vks.Xfr = ks
	}

	if len(g.Freeze) > 0 {
		keys := make([]*cap.VerifyingKey, 0, len(g.Freeze))
		for _, d := range g.Freeze {
			vk, err := readVerifyingKey(d.Path, d.NumInputs, d.NumOutputs)
			if err != nil {
				return nil, fmt.Errorf("freeze key (%d,%d): %w", d.NumInputs, d.NumOutputs, err)
			}
			keys = append(keys, vk)
		}
		ks, err := keyset.New(keyset.OrderByOutputs{}, keys)
		if err != nil {
			return nil, fmt.Errorf("freeze keys: %w", err)
		}
		vks.Freeze = ks
	}

	return vks, nil
}

func readVerifyingKey(path string, numInputs, numOutputs int) (*cap.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cap.ReadVerifyingKey(numInputs, numOutputs, f)
}
