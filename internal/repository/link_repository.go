package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"redirly/internal/entities"

	"github.com/lib/pq"
)

var (
	// ErrLinkNotFound is returned when no link matches (or the caller does not own it)
	ErrLinkNotFound = errors.New("link not found")
	// ErrSlugTaken is returned when the slug is already used by another link
	ErrSlugTaken = errors.New("slug is already taken")
)

// Postgres error codes
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// LinkRepository defines the interface for link database operations
type LinkRepository interface {
	Create(ctx context.Context, link *entities.Link) (*entities.Link, error)
	FindBySlug(ctx context.Context, slug string) (*entities.Link, error)
	FindByID(ctx context.Context, id, userID string) (*entities.Link, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Link, error)
	Update(ctx context.Context, link *entities.Link) (*entities.Link, error)
	Delete(ctx context.Context, id, userID string) (*entities.Link, error)
}

type linkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *sql.DB) LinkRepository {
	return &linkRepository{db: db}
}

const linkColumns = `id, user_id, url, slug, meta, start_date, end_date, updated_at, inserted_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLink(row rowScanner) (*entities.Link, error) {
	var (
		link entities.Link
		meta entities.LinkMeta
		raw  []byte
	)
	err := row.Scan(
		&link.ID,
		&link.UserID,
		&link.URL,
		&link.Slug,
		&raw,
		&link.StartDate,
		&link.EndDate,
		&link.UpdatedAt,
		&link.InsertedAt,
	)
	if err != nil {
		return nil, err
	}

	if raw != nil {
		if err := meta.Scan(raw); err != nil {
			return nil, err
		}
		link.Meta = &meta
	}
	return &link, nil
}

func translateWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return ErrSlugTaken
		case checkViolation:
			return fmt.Errorf("end_date must be after start_date: %w", err)
		}
	}
	return err
}

// Create inserts a new link and returns the stored row
func (r *linkRepository) Create(ctx context.Context, link *entities.Link) (*entities.Link, error) {
	query := `
		INSERT INTO links (user_id, url, slug, meta, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + linkColumns

	row := r.db.QueryRowContext(ctx, query,
		link.UserID,
		link.URL,
		link.Slug,
		link.Meta,
		utcPtr(link.StartDate),
		utcPtr(link.EndDate),
	)

	created, err := scanLink(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create link: %w", translateWriteError(err))
	}
	return created, nil
}

// FindBySlug finds a link by its slug regardless of owner
func (r *linkRepository) FindBySlug(ctx context.Context, slug string) (*entities.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE slug = $1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return link, nil
}

// FindByID finds a link owned by userID
func (r *linkRepository) FindByID(ctx context.Context, id, userID string) (*entities.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1 AND user_id = $2`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return link, nil
}

// ListByUser returns all links owned by userID, newest first
func (r *linkRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE user_id = $1
		ORDER BY inserted_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := []*entities.Link{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}
	return links, nil
}

// Update overwrites the mutable fields of a link owned by link.UserID
func (r *linkRepository) Update(ctx context.Context, link *entities.Link) (*entities.Link, error) {
	query := `
		UPDATE links
		SET url = $1, slug = $2, meta = $3, start_date = $4, end_date = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING ` + linkColumns

	row := r.db.QueryRowContext(ctx, query,
		link.URL,
		link.Slug,
		link.Meta,
		utcPtr(link.StartDate),
		utcPtr(link.EndDate),
		link.ID,
		link.UserID,
	)

	updated, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update link: %w", translateWriteError(err))
	}
	return updated, nil
}

// Delete removes a link owned by userID and returns the deleted row
func (r *linkRepository) Delete(ctx context.Context, id, userID string) (*entities.Link, error) {
	query := `DELETE FROM links WHERE id = $1 AND user_id = $2 RETURNING ` + linkColumns

	deleted, err := scanLink(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete link: %w", err)
	}
	return deleted, nil
}
