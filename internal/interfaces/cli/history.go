package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// NewHistoryCmd creates the history command listing recent search queries.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent search queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of entries (0 = server default)")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.Client == nil {
		return errors.InvalidParam("no API client available; check --server")
	}
	if limit < 0 {
		return errors.InvalidParam(fmt.Sprintf("limit must be >= 0, got %d", limit))
	}

	resp, err := cliCtx.Client.History(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if len(resp.Entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No search history.")
		return nil
	}

	return PrintResult(cmd, &historyView{resp})
}

// historyView renders a HistoryResponse as a table or text.
type historyView struct {
	*mtypes.HistoryResponse
}

func (v *historyView) TableHeaders() []string {
	return []string{"WHEN", "TYPE", "QUERY", "RESULTS", "DURATION"}
}

func (v *historyView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		rows = append(rows, []string{
			time.Time(e.CreatedAt).Format("2006-01-02 15:04:05"),
			e.SearchType,
			truncate(e.Query, 40),
			strconv.Itoa(e.ResultCount),
			fmt.Sprintf("%dms", e.DurationMS),
		})
	}
	return rows
}

func (v *historyView) String() string {
	out := fmt.Sprintf("%d recorded search(es)\n", v.Total)
	for _, e := range v.Entries {
		out += fmt.Sprintf("%s  %-8s %-40s %d result(s) in %dms\n",
			time.Time(e.CreatedAt).Format("2006-01-02 15:04:05"),
			e.SearchType, truncate(e.Query, 40), e.ResultCount, e.DurationMS)
	}
	return out
}
