package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/nft_layer/internal/httpapi"
	"github.com/R3E-Network/nft_layer/internal/nft"
	"github.com/R3E-Network/nft_layer/internal/storage/postgres"
)

var (
	infoToken     uint64
	infoSalePrice string
)

var infoCmd = &cobra.Command{
	Use:   "info <proxy-address>",
	Short: "Show contract state, or one token with --token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProxy(cmd, args[0])
		if err != nil {
			return err
		}
		if infoToken == 0 {
			info := contractInfo(p)
			if jsonOutput {
				return printJSON(cmd, info)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) at %s\n", info.Name, info.Symbol, info.Address)
			fmt.Fprintf(out, "  implementation: %s\n", info.Implementation)
			fmt.Fprintf(out, "  owner:          %s\n", info.Owner)
			fmt.Fprintf(out, "  supply:         %d/%d\n", info.TotalSupply, info.MaxSupply)
			fmt.Fprintf(out, "  mint price:     %s\n", info.MintPriceNative)
			fmt.Fprintf(out, "  base URI:       %s\n", info.BaseURI)
			fmt.Fprintf(out, "  royalty:        %d%%\n", info.RoyaltyPercentage)
			return nil
		}

		uri, err := p.TokenURI(infoToken)
		if err != nil {
			return err
		}
		owner, err := p.OwnerOf(infoToken)
		if err != nil {
			return err
		}
		salePrice, err := nft.ParseNative(infoSalePrice)
		if err != nil {
			return err
		}
		receiver, royalty, err := p.RoyaltyInfo(infoToken, salePrice)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, map[string]any{
				"token_id":         infoToken,
				"uri":              uri,
				"owner":            nft.FormatAddress(owner),
				"royalty_receiver": nft.FormatAddress(receiver),
				"royalty_amount":   royalty.String(),
				"sale_price":       salePrice.String(),
			})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "token %d\n", infoToken)
		fmt.Fprintf(out, "  uri:     %s\n", uri)
		fmt.Fprintf(out, "  owner:   %s\n", nft.FormatAddress(owner))
		fmt.Fprintf(out, "  royalty: %s to %s on a sale of %s\n",
			nft.FormatNative(royalty), nft.FormatAddress(receiver), nft.FormatNative(salePrice))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <proxy-address>",
	Short: "List the logic versions a proxy has run (postgres only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pg, ok := store.(*postgres.Store)
		if !ok {
			return errors.New("history requires the postgres storage driver")
		}
		addr, err := nft.ParseAddress(args[0])
		if err != nil {
			return err
		}
		versions, err := pg.Implementations(cmd.Context(), nft.FormatAddress(addr))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, versions)
		}
		for i, v := range versions {
			fmt.Fprintf(cmd.OutOrStdout(), "%d  %s\n", i+1, v)
		}
		return nil
	},
}

func contractInfo(p *nft.Proxy) httpapi.ContractInfo {
	return httpapi.Describe(p)
}

func init() {
	infoCmd.Flags().Uint64Var(&infoToken, "token", 0, "token id to show")
	infoCmd.Flags().StringVar(&infoSalePrice, "sale-price", "1", "sale price in native units for the royalty quote")
}
