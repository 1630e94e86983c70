package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var queryType bool

var queryCmd = &cobra.Command{
	Use:   "query [tx_id | type]",
	Short: "Locate a transaction by id, or list all transactions of a type.",
	Args:  cobra.ExactArgs(1),
	RunE:  queryRun,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().BoolVarP(&queryType, "by-type", "t", false, "Treat the argument as a transaction type.")
}

func queryRun(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}

	if queryType {
		results := ledger.QueryByType(args[0])
		if len(results) == 0 {
			pterm.Warning.Printfln("no sealed transactions of type %q", args[0])
			return nil
		}
		return printJSON(results)
	}

	result, found := ledger.QueryTransaction(args[0])
	if !found {
		return fmt.Errorf("transaction %q not found", args[0])
	}

	return printJSON(result)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}
