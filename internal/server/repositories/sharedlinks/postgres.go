package sharedlinks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dkravtsov/shelfmark/internal/common"
	"github.com/dkravtsov/shelfmark/internal/dbx"
	"github.com/dkravtsov/shelfmark/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const linkColumns = "id, owner_id, item_id, token, password_hash, expires_at, revoked, access_count, created_at"

func scanLink(row *sql.Row) (*models.SharedLink, error) {
	link := &models.SharedLink{}
	err := row.Scan(&link.ID, &link.OwnerID, &link.ItemID, &link.Token, &link.PasswordHash,
		&link.ExpiresAt, &link.Revoked, &link.AccessCount, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return link, nil
}

// Create inserts a new shared link. A token collision with an existing row
// yields common.ErrorAlreadyExists (unique constraint on token).
func (r *PostgresRepository) Create(ctx context.Context, link *models.SharedLink) (*models.SharedLink, error) {
	query := `
		INSERT INTO shared_links (owner_id, item_id, token, password_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		link.OwnerID, link.ItemID, link.Token, link.PasswordHash, link.ExpiresAt).
		Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return link, nil
}

// GetByID returns the link with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.SharedLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM shared_links WHERE id = $1`, linkColumns)
	return scanLink(r.db.QueryRowContext(ctx, query, id))
}

// GetByToken returns the link with the given token, or common.ErrorNotFound.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.SharedLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM shared_links WHERE token = $1`, linkColumns)
	return scanLink(r.db.QueryRowContext(ctx, query, token))
}

// ListByOwner returns one page of the owner's links plus the total count
// matching the filter.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]*models.SharedLink, int64, error) {
	where := []string{"owner_id = $1"}
	args := []any{ownerID}

	if filter.ItemID != nil {
		args = append(args, *filter.ItemID)
		where = append(where, fmt.Sprintf("item_id = $%d", len(args)))
	}
	if filter.Revoked != nil {
		args = append(args, *filter.Revoked)
		where = append(where, fmt.Sprintf("revoked = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT count(*) FROM shared_links WHERE %s`, cond)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`
		SELECT %s FROM shared_links
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, linkColumns, cond, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var links []*models.SharedLink
	for rows.Next() {
		link := &models.SharedLink{}
		if err := rows.Scan(&link.ID, &link.OwnerID, &link.ItemID, &link.Token, &link.PasswordHash,
			&link.ExpiresAt, &link.Revoked, &link.AccessCount, &link.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return links, total, nil
}

// Update writes the mutable fields of a link: expiry, password hash, and the
// revoked flag. Token, owner, and item bindings are immutable once issued.
func (r *PostgresRepository) Update(ctx context.Context, link *models.SharedLink) error {
	query := `
		UPDATE shared_links
		SET expires_at = $2, password_hash = $3, revoked = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, link.ID, link.ExpiresAt, link.PasswordHash, link.Revoked)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

// SetRevoked flips only the revoked flag.
func (r *PostgresRepository) SetRevoked(ctx context.Context, id string, revoked bool) error {
	query := `
		UPDATE shared_links
		SET revoked = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, revoked)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

// Delete permanently removes a link.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM shared_links
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

// IncrementAccessCount bumps access_count by one in a single statement and
// returns the new value. The increment happens inside the database so
// concurrent resolutions never lose updates.
func (r *PostgresRepository) IncrementAccessCount(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE shared_links
		SET access_count = access_count + 1
		WHERE id = $1
		RETURNING access_count
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
