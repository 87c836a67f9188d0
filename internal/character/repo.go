package character

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"characterhub/pkg/models"
)

// Repo is the SQLite-backed overlay store. Put is the only mutation.
type Repo struct {
	DB *sql.DB
}

// ScanQuery selects overlay rows by source.
type ScanQuery struct {
	Source         string
	IncludeDeleted bool   // keep tombstoned rows
	Name           string // case-sensitive substring on name; empty matches all
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const selectColumns = `
	SELECT id, name, status, species, type, gender, origin, location, image, source, deleted_at
	FROM characters
`

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	row := r.DB.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)

	c, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &c, nil
}

func (r *Repo) Scan(ctx context.Context, q ScanQuery) ([]models.Character, error) {
	sqlStr, args := buildScanSQL(q)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("scan query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Put writes the whole record, replacing any existing row with the same id.
func (r *Repo) Put(ctx context.Context, c models.Character) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO characters (id, name, status, species, type, gender, origin, location, image, source, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  status = excluded.status,
		  species = excluded.species,
		  type = excluded.type,
		  gender = excluded.gender,
		  origin = excluded.origin,
		  location = excluded.location,
		  image = excluded.image,
		  source = excluded.source,
		  deleted_at = excluded.deleted_at,
		  updated_at = CURRENT_TIMESTAMP
	`,
		c.ID,
		c.Name,
		c.Status,
		c.Species,
		c.Type,
		c.Gender,
		nullString(c.Origin),
		nullString(c.Location),
		c.Image,
		c.Source,
		nullString(c.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("put character %d: %w", c.ID, err)
	}
	return nil
}

// buildScanSQL filters by source, tombstone and name. instr keeps the name
// match case-sensitive, unlike LIKE.
func buildScanSQL(q ScanQuery) (string, []any) {
	where := []string{"source = ?"}
	args := []any{q.Source}

	if !q.IncludeDeleted {
		where = append(where, "(deleted_at IS NULL OR deleted_at = '')")
	}
	if q.Name != "" {
		where = append(where, "instr(name, ?) > 0")
		args = append(args, q.Name)
	}

	return selectColumns + " WHERE " + strings.Join(where, " AND ") + " ORDER BY id ASC", args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(s rowScanner) (models.Character, error) {
	var (
		c         models.Character
		status    sql.NullString
		species   sql.NullString
		typ       sql.NullString
		gender    sql.NullString
		origin    sql.NullString
		location  sql.NullString
		image     sql.NullString
		deletedAt sql.NullString
	)

	if err := s.Scan(
		&c.ID, &c.Name, &status, &species, &typ, &gender, &origin, &location, &image, &c.Source, &deletedAt,
	); err != nil {
		return models.Character{}, err
	}

	c.Status = status.String
	c.Species = species.String
	c.Type = typ.String
	c.Gender = gender.String
	c.Origin = origin.String
	c.Location = location.String
	c.Image = image.String
	c.DeletedAt = deletedAt.String
	return c, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
