// Package format renders molecular structures into exchange and depiction
// formats: V2000 molfiles (SDF), PDB, SVG, and PNG.  Formats without a native
// writer are approximated by the nearest supported one and flagged as such in
// the result, never silently.
package format

import (
	"fmt"

	"github.com/turtacn/molsearch/internal/domain/chem"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// Export image dimensions; search and validate responses embed the smaller
// thumbnail size.
const (
	ExportWidth     = 800
	ExportHeight    = 600
	ThumbnailWidth  = 300
	ThumbnailHeight = 300
)

// contentTypes maps each export format to its MIME type.
var contentTypes = map[mtypes.ExportFormat]string{
	mtypes.FormatSDF:   "chemical/x-mdl-sdfile",
	mtypes.FormatMOL2:  "chemical/x-mol2",
	mtypes.FormatPDB:   "chemical/x-pdb",
	mtypes.FormatPDBQT: "text/plain",
	mtypes.FormatPNG:   "image/png",
	mtypes.FormatSVG:   "image/svg+xml",
}

// approximations maps formats without a native writer to the format whose
// writer stands in for them.
var approximations = map[mtypes.ExportFormat]mtypes.ExportFormat{
	mtypes.FormatMOL2:  mtypes.FormatSDF,
	mtypes.FormatPDBQT: mtypes.FormatPDB,
}

// Result is one rendered export.
type Result struct {
	// Format is the format the caller asked for.
	Format mtypes.ExportFormat

	Content     []byte
	ContentType string
	Filename    string

	// ApproximatedAs names the writer actually used when the requested
	// format has no native one; empty for exact renders.
	ApproximatedAs mtypes.ExportFormat
}

// Options controls one export.
type Options struct {
	// AddHydrogens materialises implicit hydrogens before 3D embedding.
	AddHydrogens bool

	// Minimize runs the extra capped optimisation pass after the base
	// relaxation the embedder always performs.
	Minimize bool
}

// Exporter renders structures using a fixed embedding configuration, so that
// the same request always produces the same bytes.
type Exporter struct {
	embed chem.EmbedOptions
	log   logging.Logger
}

// NewExporter builds an Exporter around the given embedding parameters.
func NewExporter(embed chem.EmbedOptions, log logging.Logger) *Exporter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Exporter{embed: embed, log: log}
}

// Export parses the SMILES and renders it in the requested format.  Returns
// ErrCodeInvalidStructure for unparseable input, ErrCodeUnsupportedFormat for
// unknown formats, and ErrCodeConversionFailed when a writer fails.
func (e *Exporter) Export(smiles string, f mtypes.ExportFormat, opts Options) (*Result, error) {
	contentType, ok := contentTypes[f]
	if !ok {
		return nil, errors.UnsupportedFormat(fmt.Sprintf("unsupported export format %q", f))
	}

	mol, err := chem.ParseSMILES(smiles)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Format:      f,
		ContentType: contentType,
		Filename:    fmt.Sprintf("molecule.%s", f),
	}
	if approx, ok := approximations[f]; ok {
		res.ApproximatedAs = approx
		e.log.Warn("export format approximated",
			logging.String("requested", string(f)),
			logging.String("served_as", string(approx)))
	}

	switch f {
	case mtypes.FormatSDF, mtypes.FormatMOL2:
		res.Content, err = e.write3D(mol, opts, WriteSDF)
	case mtypes.FormatPDB, mtypes.FormatPDBQT:
		res.Content, err = e.write3D(mol, opts, WritePDB)
	case mtypes.FormatSVG:
		res.Content = []byte(RenderSVG(mol, ExportWidth, ExportHeight))
	case mtypes.FormatPNG:
		res.Content, err = RenderPNG(mol, ExportWidth, ExportHeight)
	}
	if err != nil {
		return nil, errors.ConversionFailed(fmt.Sprintf("rendering %s failed", f), err)
	}
	return res, nil
}

// write3D embeds coordinates and hands the conformer to a 3D writer.
func (e *Exporter) write3D(mol *chem.Mol, opts Options, write func(*chem.Mol, [][3]float64) ([]byte, error)) ([]byte, error) {
	embed := e.embed
	embed.AddHydrogens = opts.AddHydrogens
	if !opts.Minimize {
		embed.MinimizeIters = 0
	}
	target, coords, err := chem.Embed3D(mol, embed)
	if err != nil {
		return nil, err
	}
	return write(target, coords)
}
