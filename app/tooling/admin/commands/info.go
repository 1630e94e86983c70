package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print a summary of the ledger snapshot.",
	RunE:  infoRun,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func infoRun(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}

	info := ledger.Info()

	rows := pterm.TableData{
		{"strategy", info.Strategy},
		{"chain length", fmt.Sprintf("%d", info.ChainLength)},
		{"pending transactions", fmt.Sprintf("%d", info.PendingTxs)},
		{"valid", fmt.Sprintf("%t", info.IsValid)},
		{"latest block hash", info.LatestBlockHash},
	}
	if info.Difficulty > 0 {
		rows = append(rows, []string{"difficulty", fmt.Sprintf("%d", info.Difficulty)})
	}
	if info.Validators > 0 {
		rows = append(rows, []string{"validators", fmt.Sprintf("%d", info.Validators)})
	}

	return pterm.DefaultTable.WithData(rows).Render()
}
