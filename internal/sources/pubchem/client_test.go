package pubchem

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

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, MaxHits: 10}, nil), srv
}

const ethanolResponse = `{
	"PropertyTable": {
		"Properties": [
			{
				"CID": 702,
				"CanonicalSMILES": "CCO",
				"MolecularFormula": "C2H6O",
				"MolecularWeight": "46.07",
				"InChI": "InChI=1S/C2H6O/c1-2-3/h3H,2H2,1H3",
				"InChIKey": "LFQSCWFLJHTTHZ-UHFFFAOYSA-N",
				"Title": "Ethanol"
			}
		]
	}
}`

func TestSearch_ByName(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ethanolResponse))
	})

	records, err := client.Search(context.Background(), "ethanol", mtypes.SearchByName, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Ethanol", rec.Name)
	assert.Equal(t, "CCO", rec.SMILES)
	assert.Equal(t, SourceName, rec.Source)
	assert.Equal(t, "702", rec.SourceID)
	assert.NotEmpty(t, rec.StandardKey, "key is derived locally")
	assert.Contains(t, gotPath, "/compound/name/ethanol/")
}

func TestSearch_SMILESNamespace(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(ethanolResponse))
	})

	_, err := client.Search(context.Background(), "CCO", mtypes.SearchBySMILES, 10)
	require.NoError(t, err)
	assert.Contains(t, gotPath, "/compound/smiles/CCO/")
}

func TestSearch_InChIUnsupported(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for inchi queries")
	})

	records, err := client.Search(context.Background(), "InChI=1S/...", mtypes.SearchByInChI, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_NotFoundIsEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	records, err := client.Search(context.Background(), "nosuchthing", mtypes.SearchByName, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_ServerErrorIsTyped(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "ethanol", mtypes.SearchByName, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSourceUnavailable))
}

func TestSearch_RateLimitIsTyped(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "ethanol", mtypes.SearchByName, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSourceRateLimited))
}

func TestSearch_MalformedBodyIsParseError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.Search(context.Background(), "ethanol", mtypes.SearchByName, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSourceParseError))
}

func TestSearch_ContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(ethanolResponse))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := client.Search(ctx, "ethanol", mtypes.SearchByName, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSourceUnavailable))
}

func TestSearch_LimitCapsRecords(t *testing.T) {
	multi := `{"PropertyTable": {"Properties": [
		{"CID": 1, "CanonicalSMILES": "CCO", "MolecularWeight": "46.07", "Title": "A"},
		{"CID": 2, "CanonicalSMILES": "CCCO", "MolecularWeight": "60.10", "Title": "B"},
		{"CID": 3, "CanonicalSMILES": "CCCCO", "MolecularWeight": "74.12", "Title": "C"}
	]}}`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(multi))
	})

	records, err := client.Search(context.Background(), "alcohol", mtypes.SearchByName, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearch_SkipsUnparseableSMILES(t *testing.T) {
	mixed := `{"PropertyTable": {"Properties": [
		{"CID": 1, "CanonicalSMILES": "C1CC", "MolecularWeight": "1.0", "Title": "broken"},
		{"CID": 2, "CanonicalSMILES": "CCO", "MolecularWeight": "46.07", "Title": "Ethanol"}
	]}}`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mixed))
	})

	records, err := client.Search(context.Background(), "ethanol", mtypes.SearchByName, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ethanol", records[0].Name)
}
