package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/nft_layer/internal/deploy"
	"github.com/R3E-Network/nft_layer/internal/nft"
)

var (
	deployFrom    string
	deployBaseURI string
	deployRoyalty uint64
	deployLogic   string
	deploySalt    string
	deployUpgrade bool

	upgradeFrom  string
	upgradeLogic string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy and initialize a new proxy",
	Long: `Deploys a proxy bound to a logic version and runs initialize(baseURI,
royaltyPercentage) with the deployer as owner and royalty receiver.

With --upgrade the proxy is then upgraded to the latest logic version in
the same run, exercising the upgrade path end to end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deployer, err := resolveAccount(deployFrom)
		if err != nil {
			return err
		}
		baseURI := cfg.Contract.BaseURI
		if cmd.Flags().Changed("base-uri") {
			baseURI = deployBaseURI
		}
		royalty := cfg.Contract.RoyaltyPercentage
		if cmd.Flags().Changed("royalty") {
			royalty = deployRoyalty
		}
		logic := cfg.Contract.Logic
		if deployLogic != "" {
			logic = deployLogic
		}

		p, err := manager.DeployProxy(cmd.Context(), deployer, deploy.Request{
			Version:           logic,
			BaseURI:           baseURI,
			RoyaltyPercentage: royalty,
			Salt:              deploySalt,
		})
		if err != nil {
			return err
		}
		if deployUpgrade {
			if p, err = manager.UpgradeProxy(cmd.Context(), p.Address(), deployer, ""); err != nil {
				return err
			}
		}

		if jsonOutput {
			return printJSON(cmd, contractInfo(p))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Proxy deployed at: %s\n", nft.FormatAddress(p.Address()))
		fmt.Fprintf(cmd.OutOrStdout(), "Implementation:    %s\n", p.Implementation())
		return nil
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <proxy-address>",
	Short: "Upgrade a proxy to another logic version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := nft.ParseAddress(args[0])
		if err != nil {
			return err
		}
		caller, err := resolveAccount(upgradeFrom)
		if err != nil {
			return err
		}
		p, err := manager.UpgradeProxy(cmd.Context(), addr, caller, upgradeLogic)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Proxy %s now runs %s\n", nft.FormatAddress(p.Address()), p.Implementation())
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployFrom, "from", "0", "deployer account index or address")
	deployCmd.Flags().StringVar(&deployBaseURI, "base-uri", "", "metadata base URI (default contract.base_uri)")
	deployCmd.Flags().Uint64Var(&deployRoyalty, "royalty", 0, "royalty percentage 0-100 (default contract.royalty_percentage)")
	deployCmd.Flags().StringVar(&deployLogic, "logic", "", "logic version (default latest)")
	deployCmd.Flags().StringVar(&deploySalt, "salt", "", "address salt for a reproducible proxy address")
	deployCmd.Flags().BoolVar(&deployUpgrade, "upgrade", false, "upgrade to the latest logic right after deploying")

	upgradeCmd.Flags().StringVar(&upgradeFrom, "from", "0", "owner account index or address")
	upgradeCmd.Flags().StringVar(&upgradeLogic, "logic", "", "target logic version (default latest)")
}
