package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

func TestSearch(t *testing.T) {
	var gotPath string
	var gotReq mtypes.SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := mtypes.SearchResponse{
			Query:      gotReq.Query,
			SearchType: "name",
			Total:      1,
			Results:    []mtypes.MoleculeDTO{{Name: "aspirin", SMILES: "CC(=O)Oc1ccccc1C(=O)O"}},
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": resp})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.Search(context.Background(), &mtypes.SearchRequest{Query: "aspirin", SearchType: "name"})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/search", gotPath)
	assert.Equal(t, "aspirin", gotReq.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "aspirin", resp.Results[0].Name)
}

func TestSearch_EmptyQuery(t *testing.T) {
	c, err := NewClient("http://localhost:8080")
	require.NoError(t, err)

	_, err = c.Search(context.Background(), &mtypes.SearchRequest{})
	assert.Error(t, err)

	_, err = c.Search(context.Background(), nil)
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		resp := mtypes.HistoryResponse{
			Entries: []mtypes.HistoryEntryDTO{{Query: "aspirin", SearchType: "name", ResultCount: 2}},
			Total:   1,
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": resp})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "limit=10", gotQuery)
	assert.Equal(t, 1, resp.Total)

	// Non-positive limit omits the parameter.
	_, err = c.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}
