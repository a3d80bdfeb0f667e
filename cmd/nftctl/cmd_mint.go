package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/nft_layer/internal/nft"
)

var (
	mintFrom  string
	mintValue string

	ownerMintFrom string
)

var mintCmd = &cobra.Command{
	Use:   "mint <proxy-address>",
	Short: "Public mint of one token, paying --value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProxy(cmd, args[0])
		if err != nil {
			return err
		}
		caller, err := resolveAccount(mintFrom)
		if err != nil {
			return err
		}
		payment, err := nft.ParseNative(mintValue)
		if err != nil {
			return err
		}
		id, err := p.Mint(cmd.Context(), caller, payment)
		if err != nil {
			return err
		}
		return printMinted(cmd, p, id)
	},
}

var ownerMintCmd = &cobra.Command{
	Use:   "owner-mint <proxy-address>",
	Short: "Free mint of one token to the owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProxy(cmd, args[0])
		if err != nil {
			return err
		}
		caller, err := resolveAccount(ownerMintFrom)
		if err != nil {
			return err
		}
		id, err := p.OwnerMint(cmd.Context(), caller)
		if err != nil {
			return err
		}
		return printMinted(cmd, p, id)
	},
}

func printMinted(cmd *cobra.Command, p *nft.Proxy, id uint64) error {
	uri, err := p.TokenURI(id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, map[string]any{
			"token_id":     id,
			"uri":          uri,
			"total_supply": p.TotalSupply(),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Minted token %d (%s), total supply %d/%d\n", id, uri, p.TotalSupply(), p.MaxSupply())
	return nil
}

func init() {
	mintCmd.Flags().StringVar(&mintFrom, "from", "1", "minter account index or address")
	mintCmd.Flags().StringVar(&mintValue, "value", "0.01", "payment in native units")
	ownerMintCmd.Flags().StringVar(&ownerMintFrom, "from", "0", "owner account index or address")
}
