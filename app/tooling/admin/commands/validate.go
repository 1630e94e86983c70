package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Revalidate every block in the snapshot and report faults.",
	RunE:  validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateRun(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}

	faults := ledger.Validate()
	if len(faults) == 0 {
		pterm.Success.Printfln("chain is valid: %d blocks", len(ledger.Chain()))
		return nil
	}

	rows := pterm.TableData{{"block", "reason"}}
	for _, fault := range faults {
		rows = append(rows, []string{fmt.Sprintf("%d", fault.Index), fault.Reason})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	return fmt.Errorf("chain has %d invalid blocks", len(faults))
}
