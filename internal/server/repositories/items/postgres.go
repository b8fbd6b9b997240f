package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// Create inserts a new item.
func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `
		INSERT INTO items (owner_id, kind, title, url, storage_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		item.OwnerID, item.Kind, item.Title, item.URL, item.StorageKey).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// GetByID returns the item with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := `
		SELECT id, owner_id, kind, title, url, storage_key, created_at
		FROM items
		WHERE id = $1
	`
	item := &models.Item{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.OwnerID, &item.Kind, &item.Title, &item.URL, &item.StorageKey, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}
