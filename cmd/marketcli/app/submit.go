package app

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ultiledger/go-marketledger/log"
	"github.com/ultiledger/go-marketledger/op"
)

var submitCmd = &cobra.Command{
	Use:   "submit [op file]",
	Short: "Submit a JSON encoded operation",
	Long: `Submit an operation read from the file, or from stdin when the file
is omitted. The operation is checked locally before it is sent.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			b   []byte
			err error
		)
		if len(args) == 1 {
			b, err = os.ReadFile(args[0])
		} else {
			b, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			log.Fatalf("read operation failed: %v", err)
		}
		if _, err := op.Decode(b); err != nil {
			log.Fatal(err)
		}
		envs, err := newClient().SubmitRaw(b)
		if err != nil {
			log.Fatalf("submit operation failed: %v", err)
		}
		printJSON(envs)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
}
