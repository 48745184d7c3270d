package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cbodonnell/fakegame/pkg/entitlements"
	"github.com/cbodonnell/fakegame/pkg/reconciler"
)

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// JSON writes v as indented JSON.
func (f *OutputFormatter) JSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Write writes v as JSON, or calls text for text output.
func (f *OutputFormatter) Write(v any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return f.JSON(v)
	}
	text(f.Writer)
	return nil
}

// GameData writes the entitlement record.
func (f *OutputFormatter) GameData(data entitlements.GameData) error {
	return f.Write(data, func(w io.Writer) {
		fmt.Fprintf(w, "Extra lives:       %d\n", data.ExtraLives)
		fmt.Fprintf(w, "Super powers:      %d\n", data.SuperPowers)
		fmt.Fprintf(w, "All maps unlocked: %s\n", yesNo(data.AllMapsUnlocked))
	})
}

// Outcome writes the result of a purchase or restore.
func (f *OutputFormatter) Outcome(outcome reconciler.Outcome) error {
	return f.Write(outcome, func(w io.Writer) {
		switch outcome.Kind {
		case reconciler.OutcomeNothingToRestore:
			fmt.Fprintln(w, "There are no purchased items to restore.")
		case reconciler.OutcomeRestored:
			fmt.Fprintln(w, "All previous in-app purchases have been restored!")
		default:
			if outcome.Transaction != nil {
				fmt.Fprintf(w, "Purchased %s (transaction %s)\n", outcome.Transaction.ProductID, outcome.Transaction.ID)
			}
		}
		fmt.Fprintln(w, strings.Repeat("-", 25))
		f.GameData(outcome.GameData)
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
