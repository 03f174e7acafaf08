package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// NewSearchCmd creates the search command.  It queries the running server
// through the API client; use --server to point at a non-default address.
func NewSearchCmd() *cobra.Command {
	var (
		searchType string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search molecules by name, CAS number, SMILES or structure identifier",
		Long:  "Search aggregates results from the configured compound sources (PubChem,\nChEMBL) plus the local database, de-duplicated by structure key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], searchType, limit)
		},
	}

	cmd.Flags().StringVarP(&searchType, "type", "t", "name", "search type: name|cas|smiles|inchi|inchikey")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of results (1-100)")

	return cmd
}

func runSearch(cmd *cobra.Command, query, searchType string, limit int) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.Client == nil {
		return errors.InvalidParam("no API client available; check --server")
	}

	switch searchType {
	case "name", "cas", "smiles", "inchi", "inchikey":
	default:
		return errors.InvalidParam(fmt.Sprintf("unknown search type %q; expected name|cas|smiles|inchi|inchikey", searchType))
	}
	if limit < 1 || limit > 100 {
		return errors.InvalidParam(fmt.Sprintf("limit must be in [1, 100], got %d", limit))
	}

	cliCtx.Logger.Debug("searching",
		logging.String("query", query),
		logging.String("search_type", searchType),
		logging.Int("limit", limit))

	resp, err := cliCtx.Client.Search(cmd.Context(), &mtypes.SearchRequest{
		Query:      query,
		SearchType: searchType,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	if len(resp.Results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No molecules found.")
		return nil
	}

	return PrintResult(cmd, &searchResultView{resp})
}

// searchResultView renders a SearchResponse as a table or text.
type searchResultView struct {
	*mtypes.SearchResponse
}

func (v *searchResultView) TableHeaders() []string {
	return []string{"NAME", "CAS", "FORMULA", "MW", "SMILES", "SOURCE"}
}

func (v *searchResultView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Results))
	for _, m := range v.Results {
		rows = append(rows, []string{
			m.Name,
			m.CAS,
			m.Formula,
			strconv.FormatFloat(m.MolecularWeight, 'f', 2, 64),
			truncate(m.SMILES, 40),
			m.Source,
		})
	}
	return rows
}

func (v *searchResultView) String() string {
	out := fmt.Sprintf("Found %d molecule(s) for %q (%s)\n", v.Total, v.Query, v.SearchType)
	for i, m := range v.Results {
		out += fmt.Sprintf("%2d. %s", i+1, displayName(m))
		if m.Formula != "" {
			out += fmt.Sprintf("  [%s, %.2f g/mol]", m.Formula, m.MolecularWeight)
		}
		out += "\n    " + m.SMILES + "\n"
	}
	return out
}

func displayName(m mtypes.MoleculeDTO) string {
	if m.Name != "" {
		return m.Name
	}
	if m.CAS != "" {
		return "CAS " + m.CAS
	}
	return m.StandardKey
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
