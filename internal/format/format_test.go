package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsearch/internal/domain/chem"
	apperrors "github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

func testExporter() *Exporter {
	return NewExporter(chem.DefaultEmbedOptions(), nil)
}

func defaultOptions() Options {
	return Options{AddHydrogens: true, Minimize: true}
}

func TestExport_SDF(t *testing.T) {
	res, err := testExporter().Export("CCO", mtypes.FormatSDF, defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, mtypes.FormatSDF, res.Format)
	assert.Equal(t, "chemical/x-mdl-sdfile", res.ContentType)
	assert.Equal(t, "molecule.sdf", res.Filename)
	assert.Empty(t, res.ApproximatedAs)

	content := string(res.Content)
	assert.Contains(t, content, "V2000")
	assert.Contains(t, content, "M  END")
	assert.Contains(t, content, "$$$$")
	// Hydrogens are materialised: 9 atoms, 8 bonds.
	assert.Contains(t, content, "  9  8  0")
}

func TestExport_SDFWithoutHydrogens(t *testing.T) {
	opts := defaultOptions()
	opts.AddHydrogens = false
	res, err := testExporter().Export("CCO", mtypes.FormatSDF, opts)
	require.NoError(t, err)
	assert.Contains(t, string(res.Content), "  3  2  0")
}

func TestExport_Deterministic(t *testing.T) {
	a, err := testExporter().Export("CCO", mtypes.FormatSDF, defaultOptions())
	require.NoError(t, err)
	b, err := testExporter().Export("CCO", mtypes.FormatSDF, defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a.Content, b.Content)
}

func TestExport_MOL2ApproximatedAsSDF(t *testing.T) {
	res, err := testExporter().Export("CCO", mtypes.FormatMOL2, defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, mtypes.FormatMOL2, res.Format)
	assert.Equal(t, mtypes.FormatSDF, res.ApproximatedAs)
	assert.Equal(t, "chemical/x-mol2", res.ContentType)
	assert.Equal(t, "molecule.mol2", res.Filename)
	assert.Contains(t, string(res.Content), "V2000")
}

func TestExport_PDB(t *testing.T) {
	res, err := testExporter().Export("CCO", mtypes.FormatPDB, defaultOptions())
	require.NoError(t, err)

	content := string(res.Content)
	assert.Equal(t, "chemical/x-pdb", res.ContentType)
	assert.Empty(t, res.ApproximatedAs)
	assert.Contains(t, content, "HETATM")
	assert.Contains(t, content, "CONECT")
	assert.True(t, strings.HasSuffix(content, "END\n"))
}

func TestExport_PDBQTApproximatedAsPDB(t *testing.T) {
	res, err := testExporter().Export("CCO", mtypes.FormatPDBQT, defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, mtypes.FormatPDB, res.ApproximatedAs)
	assert.Equal(t, "text/plain", res.ContentType)
	assert.Equal(t, "molecule.pdbqt", res.Filename)
	assert.Contains(t, string(res.Content), "HETATM")
}

func TestExport_SVG(t *testing.T) {
	res, err := testExporter().Export("c1ccccc1", mtypes.FormatSVG, defaultOptions())
	require.NoError(t, err)

	content := string(res.Content)
	assert.Equal(t, "image/svg+xml", res.ContentType)
	assert.True(t, strings.HasPrefix(content, "<svg"))
	assert.True(t, strings.HasSuffix(content, "</svg>"))
}

func TestExport_PNG(t *testing.T) {
	res, err := testExporter().Export("CCO", mtypes.FormatPNG, defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "image/png", res.ContentType)
	require.Greater(t, len(res.Content), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, res.Content[:4])
}

func TestExport_InvalidStructure(t *testing.T) {
	_, err := testExporter().Export("C1CC", mtypes.FormatSDF, defaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidStructure))
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, err := testExporter().Export("CCO", mtypes.ExportFormat("cml"), defaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnsupportedFormat))
}

func TestWriteSDF_ChargeBlock(t *testing.T) {
	m, err := chem.ParseSMILES("[NH4+]")
	require.NoError(t, err)
	content, err := WriteSDF(m, [][3]float64{{0, 0, 0}})
	require.NoError(t, err)
	assert.Contains(t, string(content), "M  CHG  1   1   1")
}

func TestWriteSDF_CoordinateMismatch(t *testing.T) {
	m, err := chem.ParseSMILES("CCO")
	require.NoError(t, err)
	_, err = WriteSDF(m, [][3]float64{{0, 0, 0}})
	assert.Error(t, err)
}

func TestPNGDataURI(t *testing.T) {
	m, err := chem.ParseSMILES("CCO")
	require.NoError(t, err)
	uri, err := PNGDataURI(m, ThumbnailWidth, ThumbnailHeight)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestThumbnail(t *testing.T) {
	m, err := chem.ParseSMILES("CC(=O)O")
	require.NoError(t, err)
	svg := Thumbnail(m)
	assert.Contains(t, svg, `width="300"`)
	assert.Contains(t, svg, "<text")
}

func TestScaleToCanvas(t *testing.T) {
	raw := [][2]float64{{0, 0}, {10, 10}}
	scaled := scaleToCanvas(raw, 100, 100, 10)
	require.Len(t, scaled, 2)
	for _, c := range scaled {
		assert.GreaterOrEqual(t, c[0], 10.0)
		assert.LessOrEqual(t, c[0], 90.0)
		assert.GreaterOrEqual(t, c[1], 10.0)
		assert.LessOrEqual(t, c[1], 90.0)
	}

	assert.Empty(t, scaleToCanvas(nil, 100, 100, 10))
}
