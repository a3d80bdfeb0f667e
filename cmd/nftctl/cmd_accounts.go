package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/nft_layer/internal/account"
)

var accountsCount int

// accountsCmd lists the development accounts, like a local node's signers.
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the deterministic development accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := cfg.Accounts.Count
		if accountsCount > 0 {
			n = accountsCount
		}
		accounts, err := account.Derive(cfg.Accounts.Seed, n)
		if err != nil {
			return err
		}

		if jsonOutput {
			rows := make([]map[string]any, 0, len(accounts))
			for _, acc := range accounts {
				rows = append(rows, map[string]any{
					"index":       acc.Index,
					"address":     acc.String(),
					"script_hash": "0x" + acc.Address.StringLE(),
					"public_key":  acc.PublicKey,
				})
			}
			return printJSON(cmd, rows)
		}
		for _, acc := range accounts {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", acc.Index, acc.String())
		}
		return nil
	},
}

func init() {
	accountsCmd.Flags().IntVarP(&accountsCount, "count", "n", 0, "number of accounts (default accounts.count)")
}
