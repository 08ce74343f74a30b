package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hostellog/hostel-admin/internal/model"
)

// ErrFloorNotFound is returned when a floor lookup fails.
var ErrFloorNotFound = errors.New("floor not found")

const floorColumns = `id, hostel_id, floor_number, floor_name, created_at`

type FloorRepo struct {
	db *sql.DB
}

func NewFloorRepo(db *sql.DB) *FloorRepo { return &FloorRepo{db: db} }

func scanFloor(s rowScanner) (*model.Floor, error) {
	var f model.Floor
	if err := s.Scan(&f.ID, &f.HostelID, &f.FloorNumber, &f.FloorName, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a floor.  A floor number already used in the same hostel
// yields ErrDuplicate and an unknown hostel yields ErrHostelNotFound.
func (r *FloorRepo) Create(ctx context.Context, f *model.Floor) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO floors (hostel_id, floor_number, floor_name) VALUES (?, ?, ?)`,
		f.HostelID, f.FloorNumber, f.FloorName)
	switch {
	case isDuplicate(err):
		return ErrDuplicate
	case isMissingRef(err):
		return ErrHostelNotFound
	case err != nil:
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*f = *created
	return nil
}

func (r *FloorRepo) GetByID(ctx context.Context, id uint64) (*model.Floor, error) {
	f, err := scanFloor(r.db.QueryRowContext(ctx,
		`SELECT `+floorColumns+` FROM floors WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFloorNotFound
	}
	return f, err
}

// ListByHostel returns floors ordered by number.  hostelID 0 lists every hostel.
func (r *FloorRepo) ListByHostel(ctx context.Context, hostelID uint64) ([]*model.Floor, error) {
	q := `SELECT ` + floorColumns + ` FROM floors`
	var args []any
	if hostelID != 0 {
		q += ` WHERE hostel_id = ?`
		args = append(args, hostelID)
	}
	q += ` ORDER BY hostel_id, floor_number`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Floor
	for rows.Next() {
		f, err := scanFloor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Update renames or renumbers a floor.
func (r *FloorRepo) Update(ctx context.Context, f *model.Floor) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE floors SET floor_number = ?, floor_name = ? WHERE id = ?`,
		f.FloorNumber, f.FloorName, f.ID)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, f.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an empty floor.  Floors that still hold rooms yield ErrConflict.
func (r *FloorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM floors WHERE id = ?`, id)
	if isReferenced(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFloorNotFound
	}
	return nil
}
