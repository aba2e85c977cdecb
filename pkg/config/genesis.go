package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeySizeDescriptor names one arity a transfer or freeze verifying key
// supports, and the path to the key file on disk.
type KeySizeDescriptor struct {
	NumInputs  int    `yaml:"num_inputs"`
	NumOutputs int    `yaml:"num_outputs"`
	Path       string `yaml:"path"`
}

// GenesisDescriptor describes everything needed to construct a validator's
// genesis state: the chain it belongs to and the verifying keys it accepts
// transactions against. cmd/capvalidatorctl reads this file to build a
// validator.VerifierKeySet.
type GenesisDescriptor struct {
	ChainID string `yaml:"chain_id"`

	Mint string `yaml:"mint_key"`

	Transfer []KeySizeDescriptor `yaml:"transfer_keys"`
	Freeze   []KeySizeDescriptor `yaml:"freeze_keys"`
}

// LoadGenesis reads and parses a genesis descriptor from path. Genesis
// descriptors are treated as fixed artifacts of the network's launch, not
// environment-dependent, so no $VAR expansion happens here.
func LoadGenesis(path string) (*GenesisDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read genesis descriptor %s: %w", path, err)
	}
	var g GenesisDescriptor
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("config: parse genesis descriptor %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks the descriptor is well-formed enough to build a key set
// from: a chain id is present, and no two entries of the same key kind
// claim the same size.
func (g *GenesisDescriptor) Validate() error {
	if g.ChainID == "" {
		return fmt.Errorf("config: genesis descriptor missing chain_id")
	}
	if err := checkDistinctSizes(g.Transfer); err != nil {
		return fmt.Errorf("config: transfer_keys: %w", err)
	}
	if err := checkDistinctSizes(g.Freeze); err != nil {
		return fmt.Errorf("config: freeze_keys: %w", err)
	}
	return nil
}

func checkDistinctSizes(entries []KeySizeDescriptor) error {
	seen := make(map[[2]int]bool, len(entries))
	for _, e := range entries {
		key := [2]int{e.NumInputs, e.NumOutputs}
		if seen[key] {
			return fmt.Errorf("duplicate size (%d,%d)", e.NumInputs, e.NumOutputs)
		}
		seen[key] = true
	}
	return nil
}
