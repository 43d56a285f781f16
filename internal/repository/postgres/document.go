package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// DocumentRepository implements repository.DocumentRepository using PostgreSQL.
type DocumentRepository struct {
	q Querier
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{q: db}
}

// Create adds a new document.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.DriverDocument) error {
	query := `
		INSERT INTO driver_documents (id, driver_id, kind, status, reviewed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		doc.ID, doc.DriverID, doc.Kind, doc.Status, nullTime(doc.ReviewedAt), doc.CreatedAt,
	)
	return err
}

// GetByID retrieves a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.DriverDocument, error) {
	query := `
		SELECT id, driver_id, kind, status, reviewed_at, created_at
		FROM driver_documents WHERE id = $1
	`
	var (
		doc        domain.DriverDocument
		reviewedAt sql.NullTime
	)
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.DriverID, &doc.Kind, &doc.Status, &reviewedAt, &doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	doc.ReviewedAt = timePtr(reviewedAt)
	return &doc, nil
}

// GetByDriverID retrieves all documents submitted by a driver.
func (r *DocumentRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.DriverDocument, error) {
	query := `
		SELECT id, driver_id, kind, status, reviewed_at, created_at
		FROM driver_documents WHERE driver_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.DriverDocument
	for rows.Next() {
		var (
			doc        domain.DriverDocument
			reviewedAt sql.NullTime
		)
		if err := rows.Scan(
			&doc.ID, &doc.DriverID, &doc.Kind, &doc.Status, &reviewedAt, &doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		doc.ReviewedAt = timePtr(reviewedAt)
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// Update updates an existing document.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.DriverDocument) error {
	query := `
		UPDATE driver_documents
		SET kind = $1, status = $2, reviewed_at = $3
		WHERE id = $4
	`
	result, err := r.q.ExecContext(ctx, query,
		doc.Kind, doc.Status, nullTime(doc.ReviewedAt), doc.ID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
