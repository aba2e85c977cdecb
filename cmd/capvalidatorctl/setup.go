package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cap-chain/validator/pkg/cap"
)

func setupCmd() *cobra.Command {
	var kind string
	var numInputs, numOutputs int
	var outDir string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Run the Groth16 trusted setup for one note shape",
		Long: `setup compiles the note circuit for the given (kind, inputs, outputs) shape
and runs a fresh Groth16 key-generation ceremony, writing the resulting
proving and verifying keys to out-dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch kind {
			case "mint", "transfer", "freeze":
			default:
				return fmt.Errorf("--kind must be one of mint/transfer/freeze, got %q", kind)
			}
			if numInputs < 0 || numOutputs < 1 {
				return fmt.Errorf("--inputs must be >= 0 and --outputs >= 1")
			}
			if kind == "mint" && numInputs != 0 {
				return fmt.Errorf("mint notes always have 0 inputs")
			}

			pk, vk, err := cap.Setup(numInputs, numOutputs)
			if err != nil {
				return fmt.Errorf("setup: %w", err)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("setup: create out-dir: %w", err)
			}
			base := fmt.Sprintf("%s_%d_%d", kind, numInputs, numOutputs)

			pkPath := filepath.Join(outDir, base+".pk")
			pkFile, err := os.Create(pkPath)
			if err != nil {
				return fmt.Errorf("setup: create %s: %w", pkPath, err)
			}
			defer pkFile.Close()
			if _, err := pk.WriteProvingKey(pkFile); err != nil {
				return fmt.Errorf("setup: write %s: %w", pkPath, err)
			}

			vkPath := filepath.Join(outDir, base+".vk")
			vkFile, err := os.Create(vkPath)
			if err != nil {
				return fmt.Errorf("setup: create %s: %w", vkPath, err)
			}
			defer vkFile.Close()
			if _, err := vk.WriteVerifyingKey(vkFile); err != nil {
				return fmt.Errorf("setup: write %s: %w", vkPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", pkPath, vkPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "transfer", "note kind: mint, transfer, or freeze")
	cmd.Flags().IntVar(&numInputs, "inputs", 1, "number of spent records")
	cmd.Flags().IntVar(&numOutputs, "outputs", 2, "number of produced records")
	cmd.Flags().StringVar(&outDir, "out-dir", "./keys", "directory to write the key pair into")

	return cmd
}
