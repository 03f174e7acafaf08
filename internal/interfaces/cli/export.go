package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// NewExportCmd creates the export command converting a SMILES structure to a
// chemistry file format.
func NewExportCmd() *cobra.Command {
	var (
		format       string
		outputPath   string
		addHydrogens bool
		minimize     bool
	)

	cmd := &cobra.Command{
		Use:   "export <smiles>",
		Short: "Convert a SMILES structure to SDF, MOL2, PDB, PDBQT, PNG or SVG",
		Long:  "Export converts a structure to the requested file format.  MOL2 and PDBQT\nare approximated (as SDF and PDB respectively); the command warns on stderr\nwhen that happens.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &mtypes.ExportRequest{
				SMILES: args[0],
				Format: format,
			}
			// Only forward the flags the user actually set so the server
			// applies its own defaults otherwise.
			if cmd.Flags().Changed("add-hydrogens") {
				req.AddHydrogens = &addHydrogens
			}
			if cmd.Flags().Changed("minimize") {
				req.Minimize = &minimize
			}
			return runExport(cmd, req, outputPath)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "sdf", "output format: sdf|mol2|pdb|pdbqt|png|svg")
	cmd.Flags().StringVarP(&outputPath, "output-file", "O", "", "write to file instead of stdout (default filename when empty value \"-\")")
	cmd.Flags().BoolVar(&addHydrogens, "add-hydrogens", true, "add explicit hydrogens before 3D embedding")
	cmd.Flags().BoolVar(&minimize, "minimize", true, "run force-field minimization on 3D coordinates")

	return cmd
}

func runExport(cmd *cobra.Command, req *mtypes.ExportRequest, outputPath string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.Client == nil {
		return errors.InvalidParam("no API client available; check --server")
	}

	switch req.Format {
	case "sdf", "mol2", "pdb", "pdbqt", "png", "svg":
	default:
		return errors.UnsupportedFormat(fmt.Sprintf("unknown format %q; expected sdf|mol2|pdb|pdbqt|png|svg", req.Format))
	}

	resp, err := cliCtx.Client.Export(cmd.Context(), req)
	if err != nil {
		return err
	}

	if resp.ApproximatedAs != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s output is approximated as %s\n", req.Format, resp.ApproximatedAs)
	}

	content := []byte(resp.Content)
	if resp.Format == "png" {
		content, err = base64.StdEncoding.DecodeString(resp.Content)
		if err != nil {
			return errors.ConversionFailed("decoding png content", err)
		}
	}

	if outputPath == "" {
		// Binary output on a terminal is useless; force a file for png.
		if resp.Format == "png" {
			outputPath = resp.Filename
		} else {
			_, writeErr := cmd.OutOrStdout().Write(content)
			return writeErr
		}
	}
	if outputPath == "-" {
		outputPath = resp.Filename
	}

	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	PrintSuccess(cmd, fmt.Sprintf("wrote %d bytes to %s", len(content), outputPath))
	return nil
}
