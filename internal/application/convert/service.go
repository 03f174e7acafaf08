// Package convert implements structure validation and format export on top of
// the chemistry engine and the format writers.
package convert

import (
	"context"
	"encoding/base64"
	goerrors "errors"
	"strings"
	"time"

	"github.com/turtacn/molsearch/internal/domain/chem"
	"github.com/turtacn/molsearch/internal/format"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// Service defines structure validation and export operations.
type Service interface {
	// Validate parses a SMILES string and reports its canonical form and
	// descriptors. It never returns an error: invalid input yields
	// Valid=false plus a reason.
	Validate(ctx context.Context, req *mtypes.ValidateRequest) *mtypes.ValidateResponse

	// Export converts a SMILES structure to the requested file format.
	Export(ctx context.Context, req *mtypes.ExportRequest) (*mtypes.ExportResponse, error)
}

type service struct {
	exporter *format.Exporter
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

// NewService builds the conversion service. Metrics are optional.
func NewService(exporter *format.Exporter, metrics *prometheus.AppMetrics, log logging.Logger) Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &service{
		exporter: exporter,
		metrics:  metrics,
		logger:   log.Named("convert"),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Validate
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) Validate(_ context.Context, req *mtypes.ValidateRequest) *mtypes.ValidateResponse {
	mol, err := chem.ParseSMILES(strings.TrimSpace(req.SMILES))
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordValidation(false)
		}
		return &mtypes.ValidateResponse{Valid: false, Reason: reasonFor(err)}
	}

	props, err := chem.CalculateProperties(mol)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordValidation(false)
		}
		return &mtypes.ValidateResponse{Valid: false, Reason: reasonFor(err)}
	}

	if s.metrics != nil {
		s.metrics.RecordValidation(true)
	}
	return &mtypes.ValidateResponse{
		Valid:              true,
		CanonicalSMILES:    chem.CanonicalSMILES(mol),
		StandardIdentifier: chem.StandardIdentifier(mol),
		StandardKey:        chem.StandardKey(mol),
		Formula:            mol.Formula(),
		MolecularWeight:    props.MolecularWeight,
		Properties:         props,
		Structure2D:        format.Thumbnail(mol),
	}
}

// reasonFor flattens an error into a human-readable reason string.
func reasonFor(err error) string {
	var ae *errors.AppError
	if goerrors.As(err, &ae) {
		if ae.Detail != "" {
			return ae.Message + ": " + ae.Detail
		}
		return ae.Message
	}
	return err.Error()
}

// ─────────────────────────────────────────────────────────────────────────────
// Export
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) Export(_ context.Context, req *mtypes.ExportRequest) (*mtypes.ExportResponse, error) {
	start := time.Now()
	f := mtypes.ExportFormat(strings.ToLower(strings.TrimSpace(req.Format)))

	opts := format.Options{
		AddHydrogens: req.AddHydrogens == nil || *req.AddHydrogens,
		Minimize:     req.Minimize == nil || *req.Minimize,
	}

	result, err := s.exporter.Export(strings.TrimSpace(req.SMILES), f, opts)
	if s.metrics != nil {
		s.metrics.RecordExport(string(f), time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	// Text formats travel as-is; binary content is base64-encoded.
	content := string(result.Content)
	if f == mtypes.FormatPNG {
		content = base64.StdEncoding.EncodeToString(result.Content)
	}

	return &mtypes.ExportResponse{
		Format:         string(result.Format),
		Content:        content,
		ContentType:    result.ContentType,
		Filename:       result.Filename,
		ApproximatedAs: string(result.ApproximatedAs),
	}, nil
}
