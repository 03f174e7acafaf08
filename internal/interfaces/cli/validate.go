package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// NewValidateCmd creates the validate command.  Invalid structures exit with
// a non-zero status so the command composes in shell pipelines.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <smiles>",
		Short: "Validate a SMILES string and show its canonical form and properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, smiles string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.Client == nil {
		return errors.InvalidParam("no API client available; check --server")
	}

	resp, err := cliCtx.Client.Validate(cmd.Context(), smiles)
	if err != nil {
		return err
	}

	if printErr := PrintResult(cmd, &validateView{resp}); printErr != nil {
		return printErr
	}

	if !resp.Valid {
		return errors.InvalidStructure(resp.Reason)
	}
	return nil
}

// validateView renders a ValidateResponse as a table or text.
type validateView struct {
	*mtypes.ValidateResponse
}

func (v *validateView) TableHeaders() []string {
	return []string{"FIELD", "VALUE"}
}

func (v *validateView) TableRows() [][]string {
	if !v.Valid {
		return [][]string{
			{"valid", "false"},
			{"reason", v.Reason},
		}
	}

	rows := [][]string{
		{"valid", "true"},
		{"canonical_smiles", v.CanonicalSMILES},
		{"formula", v.Formula},
		{"molecular_weight", fmt.Sprintf("%.2f", v.MolecularWeight)},
		{"inchi", v.StandardIdentifier},
		{"inchi_key", v.StandardKey},
	}
	if p := v.Properties; p != nil {
		rows = append(rows,
			[]string{"logp", fmt.Sprintf("%.2f", p.LogP)},
			[]string{"tpsa", fmt.Sprintf("%.2f", p.TPSA)},
			[]string{"hbd", fmt.Sprintf("%d", p.HBondDonors)},
			[]string{"hba", fmt.Sprintf("%d", p.HBondAcceptors)},
			[]string{"rotatable_bonds", fmt.Sprintf("%d", p.RotatableBonds)},
		)
	}
	return rows
}

func (v *validateView) String() string {
	if !v.Valid {
		return fmt.Sprintf("INVALID: %s", v.Reason)
	}

	out := fmt.Sprintf("VALID\n  canonical SMILES: %s\n  formula:          %s (%.2f g/mol)\n  identifier:       %s\n  key:              %s",
		v.CanonicalSMILES, v.Formula, v.MolecularWeight, v.StandardIdentifier, v.StandardKey)
	if p := v.Properties; p != nil {
		out += fmt.Sprintf("\n  logP %.2f, TPSA %.2f, HBD %d, HBA %d, rotatable bonds %d",
			p.LogP, p.TPSA, p.HBondDonors, p.HBondAcceptors, p.RotatableBonds)
	}
	return out
}
