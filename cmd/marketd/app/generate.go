package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ultiledger/go-marketledger/crypto"
	"github.com/ultiledger/go-marketledger/log"
)

var genaccountidCmd = &cobra.Command{
	Use:   "genaccountid",
	Short: "Generate a random keypair for an account",
	Long: `Generate a random keypair for an account, the keypair contains the crypto
seed and the public key. The public key is the ID for the account.`,
	Run: func(cmd *cobra.Command, args []string) {
		pub, seed, err := crypto.GetAccountKeypair()
		if err != nil {
			log.Fatalf("generate random account ID failed: %v", err)
		}
		fmt.Printf("AccountID: %s, Seed: %s\n", pub, seed)
	},
}

var operatorsCmd = &cobra.Command{
	Use:   "operators [network id]",
	Short: "Print the market operator accounts of a network",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, kind := range []string{"packs", "relics"} {
			fmt.Printf("%s: %s\n", kind, crypto.DeriveAccountID(args[0], kind))
		}
	},
}

func init() {
	rootCmd.AddCommand(genaccountidCmd)
	rootCmd.AddCommand(operatorsCmd)
}
