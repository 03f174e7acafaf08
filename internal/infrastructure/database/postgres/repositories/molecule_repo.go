// Package repositories contains the PostgreSQL implementations of the domain
// persistence contracts.
package repositories

import (
	"context"
	"encoding/json"
	stdliberrors "errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/molsearch/internal/domain/molecule"
	appErrors "github.com/turtacn/molsearch/pkg/errors"
	moleculeTypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

const moleculeColumns = `id, name, cas, smiles, standard_identifier, standard_key,
	       formula, molecular_weight, synonyms, properties, source, source_id,
	       created_at, updated_at, version`

// MoleculeRepository is the PostgreSQL implementation of the molecule
// domain's Repository interface.
type MoleculeRepository struct {
	db     DB
	logger Logger
}

// NewMoleculeRepository constructs a ready-to-use MoleculeRepository.
func NewMoleculeRepository(db DB, logger Logger) *MoleculeRepository {
	if logger == nil {
		logger = nopLogger{}
	}
	return &MoleculeRepository{db: db, logger: logger}
}

// ─────────────────────────────────────────────────────────────────────────────
// Search
// ─────────────────────────────────────────────────────────────────────────────

// Search dispatches on search type: name queries match name and synonyms as a
// case-insensitive substring, the identifier types match their column exactly.
// An unrecognised type returns zero results without error, keeping the
// aggregation pipeline alive.
func (r *MoleculeRepository) Search(ctx context.Context, query string, searchType moleculeTypes.SearchType, limit int) ([]*molecule.Molecule, error) {
	r.logger.Debug("MoleculeRepository.Search", "query", query, "type", searchType, "limit", limit)

	var where string
	var arg any = query
	switch searchType {
	case moleculeTypes.SearchByName:
		where = `LOWER(name) LIKE $1
			OR EXISTS (SELECT 1 FROM unnest(synonyms) AS syn WHERE LOWER(syn) LIKE $1)`
		arg = "%" + strings.ToLower(query) + "%"
	case moleculeTypes.SearchByCAS:
		where = "cas = $1"
	case moleculeTypes.SearchBySMILES:
		where = "smiles = $1"
	case moleculeTypes.SearchByInChI:
		where = "standard_identifier = $1"
	case moleculeTypes.SearchByInChIKey:
		where = "standard_key = $1"
	default:
		r.logger.Debug("MoleculeRepository.Search: unrecognised search type", "type", searchType)
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+moleculeColumns+`
		FROM molecules
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $2`, arg, limit)
	if err != nil {
		r.logger.Error("MoleculeRepository.Search", "error", err)
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "molecule search query failed")
	}
	defer rows.Close()

	var out []*molecule.Molecule
	for rows.Next() {
		mol, err := scanMolecule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mol)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "reading molecule rows")
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindByKey
// ─────────────────────────────────────────────────────────────────────────────

// FindByKey retrieves a molecule by its standard key.
func (r *MoleculeRepository) FindByKey(ctx context.Context, key string) (*molecule.Molecule, error) {
	r.logger.Debug("MoleculeRepository.FindByKey", "key", key)

	mol, err := scanMolecule(r.db.QueryRow(ctx, `
		SELECT `+moleculeColumns+`
		FROM molecules WHERE standard_key = $1`, key))
	if err != nil {
		if stdliberrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeMoleculeNotFound, "molecule not found").
				WithDetail("standard_key=" + key)
		}
		return nil, err
	}
	return mol, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Upsert
// ─────────────────────────────────────────────────────────────────────────────

// Upsert inserts the record or, on a standard-key conflict, fills only the
// columns the stored row leaves empty.  Existing data always wins over the
// incoming record.
func (r *MoleculeRepository) Upsert(ctx context.Context, m *molecule.Molecule) error {
	r.logger.Debug("MoleculeRepository.Upsert", "key", m.StandardKey)

	var propsJSON []byte
	if m.Properties != nil {
		propsJSON, _ = json.Marshal(m.Properties)
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO molecules (
			id, name, cas, smiles, standard_identifier, standard_key,
			formula, molecular_weight, synonyms, properties, source, source_id,
			created_at, updated_at, version
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10,$11,$12,
			NOW(),NOW(),1
		)
		ON CONFLICT (standard_key) DO UPDATE SET
			name                = COALESCE(NULLIF(molecules.name, ''), EXCLUDED.name),
			cas                 = COALESCE(NULLIF(molecules.cas, ''), EXCLUDED.cas),
			standard_identifier = COALESCE(NULLIF(molecules.standard_identifier, ''), EXCLUDED.standard_identifier),
			formula             = COALESCE(NULLIF(molecules.formula, ''), EXCLUDED.formula),
			molecular_weight    = CASE WHEN molecules.molecular_weight = 0 THEN EXCLUDED.molecular_weight ELSE molecules.molecular_weight END,
			synonyms            = CASE WHEN cardinality(molecules.synonyms) = 0 THEN EXCLUDED.synonyms ELSE molecules.synonyms END,
			properties          = COALESCE(molecules.properties, EXCLUDED.properties),
			source_id           = COALESCE(NULLIF(molecules.source_id, ''), EXCLUDED.source_id),
			updated_at          = NOW(),
			version             = molecules.version + 1`,
		m.ID, m.Name, m.CAS, m.SMILES, m.StandardIdentifier, m.StandardKey,
		m.Formula, m.MolecularWeight, m.Synonyms, propsJSON, m.Source, m.SourceID,
	)
	if err != nil {
		r.logger.Error("MoleculeRepository.Upsert", "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "molecule upsert failed")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Count
// ─────────────────────────────────────────────────────────────────────────────

// Count returns the total number of stored molecules.
func (r *MoleculeRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM molecules").Scan(&total); err != nil {
		r.logger.Error("MoleculeRepository.Count", "error", err)
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "molecule count failed")
	}
	return total, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Row scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanMolecule(s scanner) (*molecule.Molecule, error) {
	var (
		mol       molecule.Molecule
		propsJSON []byte
	)
	err := s.Scan(
		&mol.ID, &mol.Name, &mol.CAS, &mol.SMILES, &mol.StandardIdentifier, &mol.StandardKey,
		&mol.Formula, &mol.MolecularWeight, &mol.Synonyms, &propsJSON, &mol.Source, &mol.SourceID,
		&mol.CreatedAt, &mol.UpdatedAt, &mol.Version,
	)
	if err != nil {
		if stdliberrors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scanning molecule row")
	}

	if len(propsJSON) > 0 {
		var props moleculeTypes.MolecularProperties
		if err := json.Unmarshal(propsJSON, &props); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "decoding molecule properties")
		}
		mol.Properties = &props
	}
	mol.Persisted = true
	return &mol, nil
}
