// Package chembl implements the ChEMBL web-services source adapter.
package chembl

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
const SourceName = "chembl"

// Config configures the ChEMBL client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	MaxHits int
}

// Client queries the ChEMBL REST API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient constructs a ChEMBL source adapter.
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
		logger:     logger.Named("chembl"),
	}
}

// Name implements sources.Source.
func (c *Client) Name() string { return SourceName }

// moleculeList mirrors the ChEMBL molecule endpoint envelope.
type moleculeList struct {
	Molecules []chemblMolecule `json:"molecules"`
}

type chemblMolecule struct {
	ChemblID   string `json:"molecule_chembl_id"`
	PrefName   string `json:"pref_name"`
	Structures *struct {
		CanonicalSMILES  string `json:"canonical_smiles"`
		StandardInChI    string `json:"standard_inchi"`
		StandardInChIKey string `json:"standard_inchi_key"`
	} `json:"molecule_structures"`
}

// Search implements sources.Source.  ChEMBL exposes filtered listing; name
// queries use a case-insensitive contains filter, structure queries use exact
// field matches.  Records without both a canonical SMILES and a standard key
// are dropped before normalisation: this source is stricter than the others
// because its preclinical entries are frequently structure-incomplete.
func (c *Client) Search(ctx context.Context, query string, searchType mtypes.SearchType, limit int) ([]*molecule.Molecule, error) {
	filter := ""
	switch searchType {
	case mtypes.SearchByName:
		filter = "pref_name__icontains=" + url.QueryEscape(query)
	case mtypes.SearchBySMILES:
		filter = "molecule_structures__canonical_smiles__flexmatch=" + url.QueryEscape(query)
	case mtypes.SearchByInChIKey:
		filter = "molecule_structures__standard_inchi_key=" + url.QueryEscape(query)
	default:
		// CAS numbers and raw InChI strings are not queryable fields here.
		return nil, nil
	}

	max := c.config.MaxHits
	if limit > 0 && limit < max {
		max = limit
	}
	reqURL := fmt.Sprintf("%s/molecule.json?%s&limit=%d",
		strings.TrimRight(c.config.BaseURL, "/"), filter, max)

	list, err := c.fetch(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	records := make([]*molecule.Molecule, 0, len(list.Molecules))
	for _, cm := range list.Molecules {
		rec := c.toRecord(cm)
		if rec == nil {
			continue
		}
		records = append(records, rec)
		if len(records) >= max {
			break
		}
	}
	return records, nil
}

func (c *Client) fetch(ctx context.Context, reqURL string) (*moleculeList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "building chembl request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "chembl request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &moleculeList{}, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.New(errors.ErrCodeSourceRateLimited, "chembl rate limit hit")
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.ErrCodeSourceUnavailable,
			fmt.Sprintf("chembl returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "reading chembl response")
	}
	var list moleculeList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceParseError, "decoding chembl response")
	}
	return &list, nil
}

// toRecord applies the strict structure filter, then normalises through the
// local engine so the standard key lines up with other sources.
func (c *Client) toRecord(cm chemblMolecule) *molecule.Molecule {
	if cm.Structures == nil || cm.Structures.CanonicalSMILES == "" || cm.Structures.StandardInChIKey == "" {
		return nil
	}
	rec, err := molecule.NewFromSMILES(cm.Structures.CanonicalSMILES, SourceName)
	if err != nil {
		c.logger.Warn("skipping molecule with unparseable SMILES",
			logging.String("chembl_id", cm.ChemblID),
			logging.Err(err))
		return nil
	}
	rec.Name = cm.PrefName
	rec.SourceID = cm.ChemblID
	return rec
}
