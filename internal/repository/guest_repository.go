package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hostellog/hostel-admin/internal/model"
)

// ErrGuestNotFound is returned when a guest lookup fails.
var ErrGuestNotFound = errors.New("guest not found")

const guestColumns = `id, hostel_id, room_id, full_name, phone, email, date_of_birth, parent_name, parent_contact,
	purpose, permanent_address, office_address, government_id, paying_amount_cents, advance_amount_cents,
	join_date, status, created_at, updated_at`

// GuestFilter narrows List.  Zero values mean "any".
type GuestFilter struct {
	HostelID uint64
	RoomID   uint64
	Status   model.GuestStatus
}

// GuestRepo persists guests.  room_id and status are assignment state and
// are only changed by UpdateAssignmentTx; Update touches the profile only.
type GuestRepo struct {
	db *sql.DB
}

func NewGuestRepo(db *sql.DB) *GuestRepo { return &GuestRepo{db: db} }

func scanGuest(s rowScanner) (*model.Guest, error) {
	var g model.Guest
	err := s.Scan(&g.ID, &g.HostelID, &g.RoomID, &g.FullName, &g.Phone, &g.Email, &g.DateOfBirth,
		&g.ParentName, &g.ParentContact, &g.Purpose, &g.PermanentAddress, &g.OfficeAddress, &g.GovernmentID,
		&g.PayingAmountCents, &g.AdvanceAmountCents, &g.JoinDate, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func collectGuests(rows *sql.Rows) ([]*model.Guest, error) {
	defer rows.Close()
	var out []*model.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CreateTx inserts the guest without a room; assignment happens through
// UpdateAssignmentTx so the room counters stay consistent.  g.ID is set.
func (r *GuestRepo) CreateTx(ctx context.Context, tx *sql.Tx, g *model.Guest) error {
	if !g.Status.Valid() {
		return errors.New("invalid guest status: " + string(g.Status))
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO guests (hostel_id, room_id, full_name, phone, email, date_of_birth, parent_name, parent_contact,
		                     purpose, permanent_address, office_address, government_id, paying_amount_cents,
		                     advance_amount_cents, join_date, status)
		 VALUES (?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.HostelID, g.FullName, g.Phone, g.Email, g.DateOfBirth, g.ParentName, g.ParentContact,
		g.Purpose, g.PermanentAddress, g.OfficeAddress, g.GovernmentID, g.PayingAmountCents,
		g.AdvanceAmountCents, g.JoinDate, string(g.Status))
	if isMissingRef(err) {
		return ErrHostelNotFound
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	g.RoomID = nil
	return nil
}

func (r *GuestRepo) GetByID(ctx context.Context, id uint64) (*model.Guest, error) {
	g, err := scanGuest(r.db.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGuestNotFound
	}
	return g, err
}

// GetForUpdateTx reads the guest and holds its row lock until tx ends.
func (r *GuestRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Guest, error) {
	g, err := scanGuest(tx.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGuestNotFound
	}
	return g, err
}

// List returns guests matching f ordered by full name.
func (r *GuestRepo) List(ctx context.Context, f GuestFilter) ([]*model.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE 1=1`
	var args []any
	if f.HostelID != 0 {
		q += ` AND hostel_id = ?`
		args = append(args, f.HostelID)
	}
	if f.RoomID != 0 {
		q += ` AND room_id = ?`
		args = append(args, f.RoomID)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	q += ` ORDER BY full_name, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectGuests(rows)
}

// ListActiveByRoomTx returns the active occupants of a room.  Callers hold
// the room lock, which keeps the set stable until commit.
func (r *GuestRepo) ListActiveByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]*model.Guest, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE room_id = ? AND status = 'active' ORDER BY id`, roomID)
	if err != nil {
		return nil, err
	}
	return collectGuests(rows)
}

// ListActiveByHostelTx returns every active guest with a room in the hostel
// (all hostels when hostelID is 0).
func (r *GuestRepo) ListActiveByHostelTx(ctx context.Context, tx *sql.Tx, hostelID uint64) ([]*model.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE status = 'active' AND room_id IS NOT NULL`
	var args []any
	if hostelID != 0 {
		q += ` AND hostel_id = ?`
		args = append(args, hostelID)
	}
	q += ` ORDER BY id`

	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectGuests(rows)
}

// Update overwrites the profile fields.
func (r *GuestRepo) Update(ctx context.Context, g *model.Guest) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE guests SET full_name = ?, phone = ?, email = ?, date_of_birth = ?, parent_name = ?, parent_contact = ?,
		        purpose = ?, permanent_address = ?, office_address = ?, government_id = ?, paying_amount_cents = ?,
		        advance_amount_cents = ?, join_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		g.FullName, g.Phone, g.Email, g.DateOfBirth, g.ParentName, g.ParentContact,
		g.Purpose, g.PermanentAddress, g.OfficeAddress, g.GovernmentID, g.PayingAmountCents,
		g.AdvanceAmountCents, g.JoinDate, g.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, g.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateAssignmentTx writes room_id and status.  The caller holds the
// guest row lock from GetForUpdateTx, so the row is known to exist.
func (r *GuestRepo) UpdateAssignmentTx(ctx context.Context, tx *sql.Tx, g *model.Guest) error {
	if !g.Status.Valid() {
		return errors.New("invalid guest status: " + string(g.Status))
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE guests SET room_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		g.RoomID, string(g.Status), g.ID)
	return err
}

// DeleteTx removes the guest row.  Callers free the guest's bed first.
func (r *GuestRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM guests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGuestNotFound
	}
	return nil
}
