package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"centavo/internal/domain/tag"
)

type TagRepository struct {
	db *DB
}

func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) GetByID(ctx context.Context, id int64) (*tag.Tag, error) {
	query := `
		SELECT id, user_id, name, color, active, created_at, updated_at
		FROM tags
		WHERE id = $1
	`

	var t tag.Tag
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Name, &t.Color, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &t, nil
}

func (r *TagRepository) ListByUserID(ctx context.Context, userID int64) ([]*tag.Tag, error) {
	query := `
		SELECT id, user_id, name, color, active, created_at, updated_at
		FROM tags
		WHERE user_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// FindByIDsForUser resolves ids to tags owned by userID. Missing or
// foreign ids are absent from the result; the caller detects partial
// matches by comparing lengths.
func (r *TagRepository) FindByIDsForUser(ctx context.Context, ids []int64, userID int64, activeOnly bool) ([]*tag.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, name, color, active, created_at, updated_at
		FROM tags
		WHERE id = ANY($1)
		  AND user_id = $2
		  AND ($3 = FALSE OR active = TRUE)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids), userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to find tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func collectTags(rows *sql.Rows) ([]*tag.Tag, error) {
	var tags []*tag.Tag
	for rows.Next() {
		var t tag.Tag
		err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.Active, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// txTagLinks replaces the transaction/tag join rows inside the active unit
// of work. Delete-then-insert keeps the association set idempotent no
// matter how often the same set is written.
type txTagLinks struct {
	tx *sql.Tx
}

func (w *txTagLinks) Replace(ctx context.Context, transactionID int64, tagIDs []int64) error {
	deleteQuery := `DELETE FROM transaction_tags WHERE transaction_id = $1`
	if _, err := execTx(ctx, w.tx, deleteQuery, transactionID); err != nil {
		return fmt.Errorf("failed to clear transaction tags: %w", err)
	}

	if len(tagIDs) == 0 {
		return nil
	}

	insertQuery := `
		INSERT INTO transaction_tags (transaction_id, tag_id)
		SELECT $1, unnest($2::bigint[])
	`
	if _, err := execTx(ctx, w.tx, insertQuery, transactionID, pq.Array(tagIDs)); err != nil {
		return fmt.Errorf("failed to insert transaction tags: %w", err)
	}
	return nil
}
