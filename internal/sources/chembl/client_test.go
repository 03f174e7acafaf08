package chembl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, MaxHits: 10}, nil)
}

const ethanolList = `{
	"molecules": [
		{
			"molecule_chembl_id": "CHEMBL545",
			"pref_name": "ETHANOL",
			"molecule_structures": {
				"canonical_smiles": "CCO",
				"standard_inchi": "InChI=1S/C2H6O/c1-2-3/h3H,2H2,1H3",
				"standard_inchi_key": "LFQSCWFLJHTTHZ-UHFFFAOYSA-N"
			}
		}
	]
}`

func TestSearch_ByName(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(ethanolList))
	})

	records, err := client.Search(context.Background(), "ethanol", mtypes.SearchByName, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ETHANOL", rec.Name)
	assert.Equal(t, "CCO", rec.SMILES)
	assert.Equal(t, SourceName, rec.Source)
	assert.Equal(t, "CHEMBL545", rec.SourceID)
	assert.NotEmpty(t, rec.StandardKey)
	assert.Contains(t, gotQuery, "pref_name__icontains=ethanol")
	assert.Contains(t, gotQuery, "limit=10")
}

func TestSearch_StrictStructureFilter(t *testing.T) {
	incomplete := `{
		"molecules": [
			{"molecule_chembl_id": "CHEMBL1", "pref_name": "NO STRUCTURE"},
			{"molecule_chembl_id": "CHEMBL2", "pref_name": "NO KEY",
			 "molecule_structures": {"canonical_smiles": "CCN", "standard_inchi_key": ""}},
			{"molecule_chembl_id": "CHEMBL3", "pref_name": "NO SMILES",
			 "molecule_structures": {"canonical_smiles": "", "standard_inchi_key": "AAAA-BBBB-C"}},
			{"molecule_chembl_id": "CHEMBL545", "pref_name": "ETHANOL",
			 "molecule_structures": {"canonical_smiles": "CCO", "standard_inchi_key": "LFQSCWFLJHTTHZ-UHFFFAOYSA-N"}}
		]
	}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(incomplete))
	})

	records, err := client.Search(context.Background(), "etha", mtypes.SearchByName, 10)
	require.NoError(t, err)
	require.Len(t, records, 1, "records without both SMILES and key are dropped")
	assert.Equal(t, "CHEMBL545", records[0].SourceID)
}

func TestSearch_CASUnsupported(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for cas queries")
	})

	records, err := client.Search(context.Background(), "64-17-5", mtypes.SearchByCAS, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_InChIKeyFilter(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(ethanolList))
	})

	_, err := client.Search(context.Background(), "LFQSCWFLJHTTHZ-UHFFFAOYSA-N", mtypes.SearchByInChIKey, 10)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "molecule_structures__standard_inchi_key=LFQSCWFLJHTTHZ-UHFFFAOYSA-N")
}

func TestSearch_NotFoundIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	records, err := client.Search(context.Background(), "nothing", mtypes.SearchByName, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_ServerErrorIsTyped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "ethanol", mtypes.SearchByName, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSourceUnavailable))
}

func TestSearch_LimitLowersRequestedPage(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(ethanolList))
	})

	_, err := client.Search(context.Background(), "ethanol", mtypes.SearchByName, 3)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "limit=3")
}
