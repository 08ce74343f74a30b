package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hostellog/hostel-admin/internal/model"
)

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

const roomColumns = `id, hostel_id, floor_id, room_number, sharing_type, rent_amount_cents,
	occupied_beds, status, version, created_at, updated_at`

// RoomFilter narrows List.  Zero values mean "any".
type RoomFilter struct {
	HostelID uint64
	FloorID  uint64
	Status   model.RoomStatus
}

// RoomRepo persists rooms.  occupied_beds and status are only written
// through the *Tx methods, which compare-and-swap on version so that a
// caller holding a stale copy of the row gets ErrConflict instead of
// silently overwriting a concurrent change.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

func scanRoom(s rowScanner) (*model.Room, error) {
	var rm model.Room
	err := s.Scan(&rm.ID, &rm.HostelID, &rm.FloorID, &rm.RoomNumber, &rm.SharingType, &rm.RentAmountCents,
		&rm.OccupiedBeds, &rm.Status, &rm.Version, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func collectRooms(rows *sql.Rows) ([]*model.Room, error) {
	defer rows.Close()
	var out []*model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Create inserts an empty, available room.  The floor must belong to the
// same hostel; the room number must be unique inside the hostel.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (hostel_id, floor_id, room_number, sharing_type, rent_amount_cents, occupied_beds, status, version)
	           SELECT ?, f.id, ?, ?, ?, 0, 'available', 0 FROM floors f WHERE f.id = ? AND f.hostel_id = ?`
	res, err := r.db.ExecContext(ctx, q, rm.HostelID, rm.RoomNumber, rm.SharingType, rm.RentAmountCents, rm.FloorID, rm.HostelID)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFloorNotFound
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rm = *created
	return nil
}

func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// GetForUpdateTx reads the room and holds its row lock until tx ends.
// Every occupancy change on a room goes through this lock.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error) {
	rm, err := scanRoom(tx.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// List returns rooms matching f ordered by hostel then room number.
func (r *RoomRepo) List(ctx context.Context, f RoomFilter) ([]*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE 1=1`
	var args []any
	if f.HostelID != 0 {
		q += ` AND hostel_id = ?`
		args = append(args, f.HostelID)
	}
	if f.FloorID != 0 {
		q += ` AND floor_id = ?`
		args = append(args, f.FloorID)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	q += ` ORDER BY hostel_id, room_number`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// ListForUpdateTx locks every room of a hostel (all hostels when hostelID
// is 0) in ascending id order.
func (r *RoomRepo) ListForUpdateTx(ctx context.Context, tx *sql.Tx, hostelID uint64) ([]*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms`
	var args []any
	if hostelID != 0 {
		q += ` WHERE hostel_id = ?`
		args = append(args, hostelID)
	}
	q += ` ORDER BY id FOR UPDATE`

	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// UpdateOccupancyTx writes occupied_beds and status when the stored
// version still equals rm.Version.  On success rm.Version is advanced.
func (r *RoomRepo) UpdateOccupancyTx(ctx context.Context, tx *sql.Tx, rm *model.Room) error {
	if !rm.Status.Valid() {
		return errors.New("invalid room status: " + string(rm.Status))
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE rooms SET occupied_beds = ?, status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ?`,
		rm.OccupiedBeds, string(rm.Status), rm.ID, rm.Version)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	rm.Version++
	return nil
}

// UpdateDetailsTx writes the editable columns together with the recomputed
// occupancy, using the same version check as UpdateOccupancyTx.
func (r *RoomRepo) UpdateDetailsTx(ctx context.Context, tx *sql.Tx, rm *model.Room) error {
	if !rm.Status.Valid() {
		return errors.New("invalid room status: " + string(rm.Status))
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE rooms SET floor_id = ?, room_number = ?, sharing_type = ?, rent_amount_cents = ?,
		        occupied_beds = ?, status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ?`,
		rm.FloorID, rm.RoomNumber, rm.SharingType, rm.RentAmountCents,
		rm.OccupiedBeds, string(rm.Status), rm.ID, rm.Version)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	rm.Version++
	return nil
}

// Delete removes a room that has no occupants.  An occupied room yields
// ErrConflict.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ? AND occupied_beds = 0`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}
