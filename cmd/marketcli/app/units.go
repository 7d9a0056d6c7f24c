package app

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/ultiledger/go-marketledger/currency"
	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/util"
)

var toUnitsCmd = &cobra.Command{
	Use:   "tounits [amount]",
	Short: "Convert a decimal amount such as 1.5 to base units",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v, err := util.ParseUnits(args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(v.String())
	},
}

var fromUnitsCmd = &cobra.Command{
	Use:   "fromunits [base units]",
	Short: "Convert base units to a decimal amount",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v, ok := new(big.Int).SetString(args[0], 10)
		if !ok {
			log.Fatalf("invalid base units %q", args[0])
		}
		fmt.Println(util.FormatUnits(v))
	},
}

var quoteCmd = &cobra.Command{
	Use:   "quote [native amount]",
	Short: "Show how much gold a conversion of the native amount yields",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v, err := util.ParseUnits(args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s %s\n", util.FormatUnits(currency.UnitsFor(v)), currency.Symbol)
	},
}

func init() {
	rootCmd.AddCommand(toUnitsCmd)
	rootCmd.AddCommand(fromUnitsCmd)
	rootCmd.AddCommand(quoteCmd)
}
