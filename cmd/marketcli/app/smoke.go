package app

import (
	"github.com/spf13/cobra"

	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/test"
)

var roles test.Roles

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run the end to end cases against a node",
	Long: `Run the end to end cases against a node. The cases create fresh
accounts, so they need the admin and a minter of the network to fund
and mint for them.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := test.RunAll(newClient(), roles); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	smokeCmd.Flags().StringVar(&roles.Admin, "admin", "", "admin account of the network")
	smokeCmd.Flags().StringVar(&roles.Minter, "minter", "", "minter account of the network")
	smokeCmd.MarkFlagRequired("admin")
	smokeCmd.MarkFlagRequired("minter")
	rootCmd.AddCommand(smokeCmd)
}
