package directory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/campuskit/internal/shared"
)

// OrderBy selects the listing order.
type OrderBy string

const (
	// OrderCreatedDesc lists newest accounts first, the directory default.
	OrderCreatedDesc OrderBy = "created_at_desc"
	// OrderCreatedAsc lists oldest accounts first.
	OrderCreatedAsc OrderBy = "created_at_asc"
)

// Store defines persistence operations for directory records.
type Store interface {
	Get(ctx context.Context, id string) (UserRecord, error)
	GetByExternalID(ctx context.Context, externalID string) (UserRecord, error)
	List(ctx context.Context, orderBy OrderBy) ([]UserRecord, error)
	Create(ctx context.Context, record UserRecord) (UserRecord, error)
	Update(ctx context.Context, id string, patch Patch) (UserRecord, error)
	Delete(ctx context.Context, id string, expectedUpdatedAt *time.Time) error
}

const uniqueViolation = "23505"

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PostgreSQL store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const recordColumns = `id, external_id, email, first_name, last_name, image_url, description, role, created_at, updated_at`

func scanRecord(row pgx.Row) (UserRecord, error) {
	var rec UserRecord
	var imageURL, description pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&rec.ID, &rec.ExternalID, &rec.Email, &rec.FirstName, &rec.LastName, &imageURL, &description, &rec.Role, &createdAt, &updatedAt)
	if err != nil {
		return UserRecord{}, err
	}
	rec.ImageURL = imageURL.String
	rec.Description = description.String
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	return rec, nil
}

// Get fetches a record by internal id.
func (s *PGStore) Get(ctx context.Context, id string) (UserRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM users WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, shared.ErrNotFound
		}
		return UserRecord{}, err
	}
	return rec, nil
}

// GetByExternalID fetches a record by the identity provider's key.
func (s *PGStore) GetByExternalID(ctx context.Context, externalID string) (UserRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM users WHERE external_id = $1`, externalID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, shared.ErrNotFound
		}
		return UserRecord{}, err
	}
	return rec, nil
}

// List returns all records in the requested order.
func (s *PGStore) List(ctx context.Context, orderBy OrderBy) ([]UserRecord, error) {
	order := "created_at DESC"
	if orderBy == OrderCreatedAsc {
		order = "created_at ASC"
	}
	rows, err := s.pool.Query(ctx, `SELECT `+recordColumns+` FROM users ORDER BY `+order)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []UserRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Create inserts a new record. The internal id is generated here when absent.
func (s *PGStore) Create(ctx context.Context, record UserRecord) (UserRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Role == "" {
		record.Role = RoleMember
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, external_id, email, first_name, last_name, image_url, description, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING `+recordColumns,
		record.ID, record.ExternalID, record.Email, record.FirstName, record.LastName,
		pgtype.Text{String: record.ImageURL, Valid: record.ImageURL != ""},
		pgtype.Text{String: record.Description, Valid: record.Description != ""},
		record.Role)
	rec, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return UserRecord{}, shared.ErrDuplicate
		}
		return UserRecord{}, err
	}
	return rec, nil
}

// Update applies a partial update. Only the mutable columns can appear in the
// SET list. With ExpectedUpdatedAt set the update fails with ErrConflict when
// the stored row has moved past the caller's snapshot.
func (s *PGStore) Update(ctx context.Context, id string, patch Patch) (UserRecord, error) {
	if patch.Empty() {
		return s.Get(ctx, id)
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 8)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		add("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Role != nil {
		add("role", *patch.Role)
	}
	if patch.Description != nil {
		add("description", pgtype.Text{String: *patch.Description, Valid: *patch.Description != ""})
	}

	query := "UPDATE users SET " + strings.Join(sets, ", ") + ", updated_at = NOW() WHERE id = $" + strconv.Itoa(len(args)+1)
	args = append(args, id)
	if patch.ExpectedUpdatedAt != nil {
		query += " AND updated_at = $" + strconv.Itoa(len(args)+1)
		args = append(args, *patch.ExpectedUpdatedAt)
	}
	query += " RETURNING " + recordColumns

	row := s.pool.QueryRow(ctx, query, args...)
	rec, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
			return UserRecord{}, shared.ErrDuplicate
		case errors.Is(err, pgx.ErrNoRows):
			return UserRecord{}, s.missReason(ctx, id, patch.ExpectedUpdatedAt != nil)
		}
		return UserRecord{}, err
	}
	return rec, nil
}

// Delete removes a record. With expectedUpdatedAt set the delete fails with
// ErrConflict when the stored row has moved.
func (s *PGStore) Delete(ctx context.Context, id string, expectedUpdatedAt *time.Time) error {
	query := `DELETE FROM users WHERE id = $1`
	args := []any{id}
	if expectedUpdatedAt != nil {
		query += ` AND updated_at = $2`
		args = append(args, *expectedUpdatedAt)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.missReason(ctx, id, expectedUpdatedAt != nil)
	}
	return nil
}

// missReason distinguishes a missing row from one that moved past a
// precondition: the row still existing means the snapshot was stale.
func (s *PGStore) missReason(ctx context.Context, id string, conditional bool) error {
	if !conditional {
		return shared.ErrNotFound
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return shared.ErrConflict
	}
	return shared.ErrNotFound
}

var _ Store = (*PGStore)(nil)
