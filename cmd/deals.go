package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/internal/store"
)

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Inspect tracked investment opportunities",
	Long:  "Commands for listing, viewing, and triaging opportunities in the deal store.",
}

// -- deals list --

var dealsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked opportunities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		if status != "" && !model.ValidDealStatus(status) {
			return eris.Errorf("invalid status %q", status)
		}

		deals, err := st.List(ctx, store.DealFilter{
			Status: model.DealStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "deals list")
		}

		if len(deals) == 0 {
			fmt.Fprintln(os.Stderr, "No opportunities found.")
			return nil
		}

		formatDealsList(os.Stdout, deals)
		return nil
	},
}

// -- deals show --

var dealsShowCmd = &cobra.Command{
	Use:   "show <deal-id>",
	Short: "Show the full record and verdict for an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		deal, err := st.Get(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "deals show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(deal)
	},
}

// -- deals set-status --

var dealsSetStatusCmd = &cobra.Command{
	Use:   "set-status <deal-id> <status>",
	Short: "Move an opportunity to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, status := args[0], args[1]

		if !model.ValidDealStatus(status) {
			return eris.Errorf("invalid status %q (pending, invested, passed, saved)", status)
		}

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.UpdateStatus(ctx, id, model.DealStatus(status)); err != nil {
			return eris.Wrap(err, "deals set-status")
		}

		fmt.Printf("%s -> %s\n", truncateID(id), status)
		return nil
	},
}

func init() {
	dealsListCmd.Flags().String("status", "", "filter by status (pending, invested, passed, saved)")
	dealsListCmd.Flags().Int("limit", 50, "max number of opportunities to display")

	dealsCmd.AddCommand(dealsListCmd)
	dealsCmd.AddCommand(dealsShowCmd)
	dealsCmd.AddCommand(dealsSetStatusCmd)
	rootCmd.AddCommand(dealsCmd)
}

// formatDealsList writes a tabular list of opportunities to w.
func formatDealsList(out io.Writer, deals []model.DealSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tSTAGE\tSCORE\tACTION\tDEADLINE\tSTATUS")
	_, _ = fmt.Fprintln(w, "--\t-------\t-----\t-----\t------\t--------\t------")

	for _, d := range deals {
		score := "-"
		if d.SignalScore != nil {
			score = fmt.Sprintf("%d", *d.SignalScore)
		}
		action := "-"
		if d.Action != nil {
			action = string(*d.Action)
		}

		company := d.CompanyName
		if len(company) > 30 {
			company = company[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(d.ID),
			company,
			d.Stage,
			score,
			action,
			d.Deadline,
			d.Status,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
