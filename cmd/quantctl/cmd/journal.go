package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmercier/quantctl/journal"
)

var (
	journalDBPath string
	journalLimit  int
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the SQLite order journal",
	RunE:  runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().StringVarP(&journalDBPath, "db", "d", "./quantctl.sqlite", "path to SQLite journal DB")
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of orders to show")
}

func runJournal(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	orders, err := j.ListRecentOrders(journalLimit)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}
	if len(orders) == 0 {
		fmt.Println("no orders recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSIDE\tINSTRUMENT\tLOTS\tPRICE\tTAG\tREASON")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.5f\t%d\t%s\n",
			o.Time.Format(time.RFC3339), o.Side, o.Instrument,
			o.Lots, o.Price, o.OwnerTag, o.Reason)
	}
	return w.Flush()
}
