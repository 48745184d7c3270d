package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/cbodonnell/fakegame/pkg/entitlements"
	"github.com/cbodonnell/fakegame/pkg/repositories/models"
	"github.com/cbodonnell/fakegame/pkg/version"
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the available lives, powers and maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts.Config, logNotifier{})
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.reconciler.GameData(cmd.Context())
			if err != nil {
				return err
			}
			return formatter(cmd, rootOpts).GameData(data)
		},
	}
}

type productRow struct {
	Slot      int                  `json:"slot"`
	Keyword   entitlements.Keyword `json:"keyword"`
	ProductID string               `json:"product_id,omitempty"`
	Title     string               `json:"title,omitempty"`
	Price     string               `json:"price,omitempty"`
	Owned     string               `json:"owned"`
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the store rows with their prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts.Config, logNotifier{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.reconciler.LoadCatalog(cmd.Context()); err != nil {
				return err
			}
			data, err := a.reconciler.GameData(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([]productRow, 0, len(entitlements.Slots))
			for index, keyword := range entitlements.Slots {
				row := productRow{Slot: index, Keyword: keyword}
				item, found, err := a.reconciler.ItemForSlot(cmd.Context(), index)
				if err != nil {
					return err
				}
				if found {
					row.ProductID = item.ID
					row.Title = item.Title
					row.Price, _ = a.reconciler.PriceFormatted(item)
				}
				switch keyword {
				case entitlements.KeywordExtraLives:
					row.Owned = strconv.Itoa(data.ExtraLives)
				case entitlements.KeywordSuperPowers:
					row.Owned = strconv.Itoa(data.SuperPowers)
				default:
					row.Owned = yesNo(data.AllMapsUnlocked)
				}
				rows = append(rows, row)
			}

			return formatter(cmd, rootOpts).Write(rows, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SLOT\tPRODUCT\tPRICE\tOWNED")
				for _, row := range rows {
					title := row.Title
					if title == "" {
						title = "(unavailable)"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", row.Slot, title, row.Price, row.Owned)
				}
				tw.Flush()
			})
		},
	}
}

// NewBuyCommand creates the buy command.
func NewBuyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <slot>",
		Short: "Buy the product of a store row",
		Long: `Buy the product shown on a store row.

Rows are 0 (extra lives), 1 (super powers) and 2 (unlock all maps).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid slot %q: %w", args[0], err)
			}

			a, err := openApp(cmd.Context(), rootOpts.Config, logNotifier{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.reconciler.LoadCatalog(cmd.Context()); err != nil {
				return err
			}
			item, found, err := a.reconciler.ItemForSlot(cmd.Context(), index)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no product available for slot %d", index)
			}

			outcomes, err := a.reconciler.Purchase(cmd.Context(), item)
			if err != nil {
				return err
			}
			outcome := <-outcomes
			if outcome.Err != nil {
				return outcome.Err
			}
			return formatter(cmd, rootOpts).Outcome(outcome)
		},
	}
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore previous purchases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts.Config, logNotifier{})
			if err != nil {
				return err
			}
			defer a.Close()

			outcomes, err := a.reconciler.RestorePurchases(cmd.Context())
			if err != nil {
				return err
			}
			outcome := <-outcomes
			if outcome.Err != nil {
				return outcome.Err
			}
			return formatter(cmd, rootOpts).Outcome(outcome)
		},
	}
}

// NewConsumeCommand creates the consume command.
func NewConsumeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "consume <lives|superpowers>",
		Short: "Use one extra life or super power",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := entitlements.ParseResource(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), rootOpts.Config, logNotifier{})
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.reconciler.Consume(cmd.Context(), resource)
			if err != nil {
				return err
			}
			return formatter(cmd, rootOpts).GameData(data)
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the factory game data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts.Config, logNotifier{})
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.reconciler.Reset(cmd.Context())
			if err != nil {
				return err
			}
			return formatter(cmd, rootOpts).GameData(data)
		},
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the raw content of the settings file as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts.Config, logNotifier{})
			if err != nil {
				return err
			}
			defer a.Close()

			m, ok, err := a.reconciler.Export(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no game data to export")
			}
			return formatter(cmd, rootOpts).JSON(m)
		},
	}
}

// NewTransactionsCommand creates the transactions command.
func NewTransactionsCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the most recent ledger entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Config.LedgerURL == "" {
				return fmt.Errorf("the ledger is disabled: set --ledger or FAKEGAME_LEDGER_URL")
			}
			a, err := openApp(cmd.Context(), rootOpts.Config, logNotifier{})
			if err != nil {
				return err
			}
			defer a.Close()

			transactions, err := a.repository.ListTransactions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return formatter(cmd, rootOpts).Write(transactions, func(w io.Writer) {
				writeTransactions(w, transactions)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries, 0 for all")
	return cmd
}

func writeTransactions(w io.Writer, transactions []models.Transaction) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tDETAIL\tLIVES\tPOWERS\tMAPS")
	for _, tx := range transactions {
		detail := tx.ProductID
		if detail == "" {
			detail = tx.Detail
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			time.UnixMilli(tx.Timestamp).Format(time.DateTime),
			tx.Kind, detail, tx.ExtraLives, tx.SuperPowers, yesNo(tx.AllMapsUnlocked))
	}
	tw.Flush()
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
			return nil
		},
	}
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Output, Writer: cmd.OutOrStdout()}
}
