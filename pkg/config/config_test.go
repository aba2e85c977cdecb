package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"VALIDATOR_LISTEN_ADDR", "VALIDATOR_DATA_DIR", "VALIDATOR_CHAIN_ID",
		"VALIDATOR_LOG_LEVEL", "VALIDATOR_GENESIS_PATH",
	} {
		os.Unsetenv(k)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ChainID == "" || cfg.ListenAddr == "" || cfg.LogLevel == "" {
		t.Fatalf("expected non-empty defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadRespectsEnv(t *testing.T) {
	t.Setenv("VALIDATOR_CHAIN_ID", "test-chain")
	t.Setenv("VALIDATOR_LOG_LEVEL", "debug")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ChainID != "test-chain" || cfg.LogLevel != "debug" {
		t.Fatalf("expected env overrides applied, got %+v", cfg)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := &Config{ListenAddr: "tcp://0.0.0.0:1", ChainID: "c", LogLevel: "verbose"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected rejection of unknown log level")
	}
}

func TestLoadGenesisRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.yaml")
	contents := `
chain_id: cap-chain-devnet
mint_key: ./keys/mint.vk
transfer_keys:
  - num_inputs: 1
    num_outputs: 2
    path: ./keys/xfr_1_2.vk
  - num_inputs: 2
    num_outputs: 2
    path: ./keys/xfr_2_2.vk
freeze_keys:
  - num_inputs: 1
    num_outputs: 1
    path: ./keys/freeze_1_1.vk
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	g, err := LoadGenesis(path)
	if err != nil {
		t.Fatalf("LoadGenesis: %v", err)
	}
	if g.ChainID != "cap-chain-devnet" {
		t.Fatalf("unexpected chain id %q", g.ChainID)
	}
	if len(g.Transfer) != 2 || len(g.Freeze) != 1 {
		t.Fatalf("unexpected key counts: %+v", g)
	}
}

func TestLoadGenesisRejectsDuplicateSizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.yaml")
	contents := `
chain_id: c
transfer_keys:
  - num_inputs: 1
    num_outputs: 1
    path: a
  - num_inputs: 1
    num_outputs: 1
    path: b
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadGenesis(path); err == nil {
		t.Fatalf("expected rejection of duplicate transfer key sizes")
	}
}

func TestLoadGenesisMissingChainID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.yaml")
	if err := os.WriteFile(path, []byte("mint_key: x\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadGenesis(path); err == nil {
		t.Fatalf("expected rejection of missing chain_id")
	}
}
