package app

import (
	"github.com/spf13/cobra"

	"github.com/ultiledger/go-marketledger/log"
)

var accountCmd = &cobra.Command{
	Use:   "account [account id]",
	Short: "Show the balances of an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		acc, err := newClient().QueryAccount(args[0])
		if err != nil {
			log.Fatalf("query account failed: %v", err)
		}
		printJSON(acc)
	},
}

var (
	eventsFrom  uint64
	eventsLimit int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List journaled events",
	Run: func(cmd *cobra.Command, args []string) {
		envs, err := newClient().QueryEvents(eventsFrom, eventsLimit)
		if err != nil {
			log.Fatalf("query events failed: %v", err)
		}
		printJSON(envs)
	},
}

var marketCmd = &cobra.Command{
	Use:       "market [packs|relics]",
	Short:     "Show the operator, settlement and fees of a market",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"packs", "relics"},
	Run: func(cmd *cobra.Command, args []string) {
		m, err := newClient().QueryMarket(args[0])
		if err != nil {
			log.Fatalf("query market failed: %v", err)
		}
		printJSON(m)
	},
}

func init() {
	eventsCmd.Flags().Uint64Var(&eventsFrom, "from", 0, "list events after this sequence")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 100, "maximum number of events")
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(marketCmd)
}
