package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/R3E-Network/nft_layer/internal/account"
	"github.com/R3E-Network/nft_layer/internal/config"
	"github.com/R3E-Network/nft_layer/internal/deploy"
)

// run executes the root command in-process with a fresh memory store.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", "", "--log-level", "error"}, args...))
	t.Cleanup(func() { resetFlags(rootCmd) })
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestAccountsCommand(t *testing.T) {
	out, err := run(t, "accounts", "-n", "3")
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	first, err := account.At(config.Default().Accounts.Seed, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(lines[0], first.String()) {
		t.Errorf("first line %q does not contain %s", lines[0], first.String())
	}
}

func TestDeployWithUpgrade(t *testing.T) {
	out, err := run(t, "deploy", "--salt", "cli", "--base-uri", "ipfs://abc/", "--royalty", "10", "--upgrade")
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	deployer, err := account.At(config.Default().Accounts.Seed, 0)
	if err != nil {
		t.Fatal(err)
	}
	addr := deploy.ContractAddress(deployer.Address, "cli")
	if !strings.Contains(out, "Proxy deployed at:") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if manager == nil {
		t.Fatal("manager not initialized")
	}
	p, err := manager.Proxy(context.Background(), addr)
	if err != nil {
		t.Fatalf("proxy lookup: %v", err)
	}
	if p.Implementation() != "v1" || p.BaseURI() != "ipfs://abc/" || p.RoyaltyPercentage() != 10 {
		t.Errorf("unexpected proxy state: %s %s %d", p.Implementation(), p.BaseURI(), p.RoyaltyPercentage())
	}
}

func TestDeployRejectsBadRoyalty(t *testing.T) {
	if _, err := run(t, "deploy", "--royalty", "150"); err == nil {
		t.Fatal("expected error for royalty above 100")
	}
}

func TestHistoryNeedsPostgres(t *testing.T) {
	_, err := run(t, "history", "NNLi44dJNXtDNSBkofB48aTVYtb1zZrNEs")
	if err == nil || !strings.Contains(err.Error(), "postgres") {
		t.Fatalf("err = %v, want postgres driver error", err)
	}
}
