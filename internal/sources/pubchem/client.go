// Package pubchem implements the PubChem PUG REST source adapter.
package pubchem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/molsearch/internal/domain/molecule"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// SourceName identifies this adapter in result attribution and logs.
const SourceName = "pubchem"

// requested compound properties, in the PUG REST property list syntax.
const propertyList = "CanonicalSMILES,MolecularFormula,MolecularWeight,InChI,InChIKey,Title"

// Config configures the PubChem client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// MaxHits caps the records taken from one lookup, independent of the
	// caller's limit.
	MaxHits int
}

// Client queries the PubChem PUG REST API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient constructs a PubChem source adapter.
func NewClient(cfg Config, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.MaxHits <= 0 {
		cfg.MaxHits = 10
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("pubchem"),
	}
}

// Name implements sources.Source.
func (c *Client) Name() string { return SourceName }

// propertyTable mirrors the PUG REST property response envelope.
type propertyTable struct {
	PropertyTable struct {
		Properties []compoundProperties `json:"Properties"`
	} `json:"PropertyTable"`
}

type compoundProperties struct {
	CID             int64   `json:"CID"`
	CanonicalSMILES string  `json:"CanonicalSMILES"`
	Formula         string  `json:"MolecularFormula"`
	Weight          float64 `json:"MolecularWeight,string"`
	InChI           string  `json:"InChI"`
	InChIKey        string  `json:"InChIKey"`
	Title           string  `json:"Title"`
}

// Search implements sources.Source.  Name and CAS queries go through the
// compound/name namespace (PubChem resolves CAS numbers as synonyms); SMILES
// and key queries use their dedicated namespaces.  Identifier-type queries
// the API cannot serve return no records.
func (c *Client) Search(ctx context.Context, query string, searchType mtypes.SearchType, limit int) ([]*molecule.Molecule, error) {
	namespace := ""
	switch searchType {
	case mtypes.SearchByName, mtypes.SearchByCAS:
		namespace = "name"
	case mtypes.SearchBySMILES:
		namespace = "smiles"
	case mtypes.SearchByInChIKey:
		namespace = "inchikey"
	default:
		// InChI strings and anything unrecognised are not queryable here.
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/compound/%s/%s/property/%s/JSON",
		strings.TrimRight(c.config.BaseURL, "/"), namespace, url.PathEscape(query), propertyList)

	table, err := c.fetch(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	max := c.config.MaxHits
	if limit > 0 && limit < max {
		max = limit
	}

	records := make([]*molecule.Molecule, 0, max)
	for _, p := range table.PropertyTable.Properties {
		if len(records) >= max {
			break
		}
		rec := c.toRecord(p)
		if rec == nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// fetch performs one GET against the API.  404 means "no such compound" and
// is not an error.
func (c *Client) fetch(ctx context.Context, reqURL string) (*propertyTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "building pubchem request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "pubchem request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &propertyTable{}, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.New(errors.ErrCodeSourceRateLimited, "pubchem rate limit hit")
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.ErrCodeSourceUnavailable,
			fmt.Sprintf("pubchem returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "reading pubchem response")
	}
	var table propertyTable
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceParseError, "decoding pubchem response")
	}
	return &table, nil
}

// toRecord normalises one compound.  The SMILES is re-parsed locally so the
// standard key matches records from every other source; compounds whose
// SMILES the engine cannot parse are skipped.
func (c *Client) toRecord(p compoundProperties) *molecule.Molecule {
	if p.CanonicalSMILES == "" {
		return nil
	}
	rec, err := molecule.NewFromSMILES(p.CanonicalSMILES, SourceName)
	if err != nil {
		c.logger.Warn("skipping compound with unparseable SMILES",
			logging.Int64("cid", p.CID),
			logging.Err(err))
		return nil
	}
	rec.Name = p.Title
	rec.SourceID = fmt.Sprintf("%d", p.CID)
	return rec
}
