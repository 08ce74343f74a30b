package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hostellog/hostel-admin/internal/model"
)

// ErrHostelNotFound is returned when a hostel lookup fails.
var ErrHostelNotFound = errors.New("hostel not found")

const hostelColumns = `id, name, address, email, phone, created_at, updated_at`

// HostelRepo provides CRUD for hostels.  Only admins reach it through the
// API; staff and guests read their own hostel through GetByID.
type HostelRepo struct {
	db *sql.DB
}

func NewHostelRepo(db *sql.DB) *HostelRepo { return &HostelRepo{db: db} }

func scanHostel(s rowScanner) (*model.Hostel, error) {
	var h model.Hostel
	if err := s.Scan(&h.ID, &h.Name, &h.Address, &h.Email, &h.Phone, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

// Create inserts the hostel and reads the row back so the timestamps are set.
func (r *HostelRepo) Create(ctx context.Context, h *model.Hostel) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO hostels (name, address, email, phone) VALUES (?, ?, ?, ?)`,
		h.Name, h.Address, h.Email, h.Phone)
	if err != nil {
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
	*h = *created
	return nil
}

// GetByID returns ErrHostelNotFound when no row matches.
func (r *HostelRepo) GetByID(ctx context.Context, id uint64) (*model.Hostel, error) {
	h, err := scanHostel(r.db.QueryRowContext(ctx,
		`SELECT `+hostelColumns+` FROM hostels WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHostelNotFound
	}
	return h, err
}

// List returns every hostel ordered by id.
func (r *HostelRepo) List(ctx context.Context) ([]*model.Hostel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+hostelColumns+` FROM hostels ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Hostel
	for rows.Next() {
		h, err := scanHostel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Update overwrites name and contact details.
func (r *HostelRepo) Update(ctx context.Context, h *model.Hostel) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE hostels SET name = ?, address = ?, email = ?, phone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		h.Name, h.Address, h.Email, h.Phone, h.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows when nothing changed; tell the cases apart.
		if _, err := r.GetByID(ctx, h.ID); err != nil {
			return err
		}
	}
	return nil
}
