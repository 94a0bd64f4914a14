package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *App) newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored runs",
	}
	cmd.AddCommand(a.newRunsListCmd(), a.newRunsGetCmd(), a.newRunsDeleteCmd())
	return cmd
}

func (a *App) newRunsListCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := a.newService(true)
			if err != nil {
				return err
			}
			defer release()

			runs, err := svc.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tFACTS\tKNOWN\tUNRESOLVED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", r.ID, r.CreatedAt.Format(time.RFC3339), len(r.Facts), r.Known, r.Unresolved)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func (a *App) newRunsGetCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			svc, release, err := a.newService(true)
			if err != nil {
				return err
			}
			defer release()

			res, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(a.stdout, res, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "text", "Output format: text, json or latex")
	return cmd
}

func (a *App) newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := a.newService(true)
			if err != nil {
				return err
			}
			defer release()

			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "deleted %s\n", args[0])
			return nil
		},
	}
}
