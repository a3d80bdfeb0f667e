package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/nft_layer/internal/account"
	"github.com/R3E-Network/nft_layer/internal/nft"
)

// resolveAccount maps an account index or address to an account.
func resolveAccount(ref string) (nft.Address, error) {
	return account.Resolve(cfg.Accounts.Seed, ref)
}

func openProxy(cmd *cobra.Command, ref string) (*nft.Proxy, error) {
	addr, err := nft.ParseAddress(ref)
	if err != nil {
		return nil, err
	}
	return manager.Proxy(cmd.Context(), addr)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
