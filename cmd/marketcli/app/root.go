package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ultiledger/go-marketledger/client"
	"github.com/ultiledger/go-marketledger/log"
)

var (
	endpoint string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "marketcli",
	Short: "Command line client of a market ledger node",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(endpoint, timeout)
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode output failed: %v", err)
	}
	fmt.Println(string(b))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "http://127.0.0.1:8080", "node http endpoint")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "request timeout")
}
