package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/storage"
)

// SaveCategoryMapping persists a category mapping, replacing any existing
// mapping for the same pattern.
func (s *SQLiteStore) SaveCategoryMapping(ctx context.Context, mapping *models.CategoryMapping) error {
	if mapping.ID == "" {
		mapping.ID = uuid.New().String()
	}
	if mapping.CreatedAt == 0 {
		mapping.CreatedAt = time.Now().Unix()
	}

	var confidence interface{}
	if mapping.Confidence != nil {
		confidence = *mapping.Confidence
	}
	var rationale interface{}
	if mapping.Rationale != "" {
		rationale = mapping.Rationale
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO category_mappings (id, pattern, category_id, source, confidence, rationale, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pattern) DO UPDATE SET
		     category_id = excluded.category_id,
		     source = excluded.source,
		     confidence = excluded.confidence,
		     rationale = excluded.rationale,
		     created_at = excluded.created_at`,
		mapping.ID, mapping.Pattern, mapping.CategoryID, mapping.Source,
		confidence, rationale, mapping.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert category mapping: %w", err)
	}

	return nil
}

// GetCategoryMapping retrieves a mapping by its normalized pattern.
func (s *SQLiteStore) GetCategoryMapping(ctx context.Context, pattern string) (*models.CategoryMapping, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, pattern, category_id, source, confidence, rationale, created_at
		 FROM category_mappings WHERE pattern = ?`,
		pattern,
	)

	mapping, err := scanMapping(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category mapping: %w", err)
	}

	return mapping, nil
}

// ListCategoryMappings returns all cached mappings, newest first.
func (s *SQLiteStore) ListCategoryMappings(ctx context.Context) ([]*models.CategoryMapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pattern, category_id, source, confidence, rationale, created_at
		 FROM category_mappings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list category mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*models.CategoryMapping
	for rows.Next() {
		mapping, err := scanMapping(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category mapping: %w", err)
		}
		mappings = append(mappings, mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category mappings: %w", err)
	}

	return mappings, nil
}

// scanMapping reads one category mapping row via the given Scan function.
func scanMapping(scan func(dest ...any) error) (*models.CategoryMapping, error) {
	mapping := &models.CategoryMapping{}
	var confidence sql.NullFloat64
	var rationale sql.NullString

	err := scan(&mapping.ID, &mapping.Pattern, &mapping.CategoryID, &mapping.Source,
		&confidence, &rationale, &mapping.CreatedAt)
	if err != nil {
		return nil, err
	}

	if confidence.Valid {
		mapping.Confidence = &confidence.Float64
	}
	if rationale.Valid {
		mapping.Rationale = rationale.String
	}

	return mapping, nil
}
