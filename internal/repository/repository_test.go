package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hostellog/hostel-admin/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var roomCols = []string{"id", "hostel_id", "floor_id", "room_number", "sharing_type", "rent_amount_cents",
	"occupied_beds", "status", "version", "created_at", "updated_at"}

func TestRoomRepo_UpdateOccupancyTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rooms SET occupied_beds = \?, status = \?, version = version \+ 1`).
		WithArgs(2, "partial", 4, 7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms SET occupied_beds = \?, status = \?, version = version \+ 1`).
		WithArgs(3, "full", 4, 7).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	rm := &model.Room{ID: 4, OccupiedBeds: 2, SharingType: 3, Status: model.RoomPartial, Version: 7}
	require.NoError(t, repo.UpdateOccupancyTx(ctx, tx, rm))
	assert.Equal(t, uint32(8), rm.Version)

	stale := &model.Room{ID: 4, OccupiedBeds: 3, SharingType: 3, Status: model.RoomFull, Version: 7}
	assert.ErrorIs(t, repo.UpdateOccupancyTx(ctx, tx, stale), ErrConflict)
	assert.Equal(t, uint32(7), stale.Version)

	assert.Error(t, repo.UpdateOccupancyTx(ctx, tx, &model.Room{ID: 4, Status: "booked"}))

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO rooms`).WithArgs(1, "101", 2, 450000, 5, 1).WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(9).WillReturnRows(sqlmock.NewRows(roomCols).
		AddRow(9, 1, 5, "101", 2, 450000, 0, "available", 0, now, now))

	rm := &model.Room{HostelID: 1, FloorID: 5, RoomNumber: "101", SharingType: 2, RentAmountCents: 450000}
	require.NoError(t, repo.Create(context.Background(), rm))
	assert.Equal(t, uint64(9), rm.ID)
	assert.Equal(t, model.RoomAvailable, rm.Status)

	mock.ExpectExec(`INSERT INTO rooms`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Create(context.Background(), &model.Room{HostelID: 1, FloorID: 99, RoomNumber: "X", SharingType: 1}), ErrFloorNotFound)

	mock.ExpectExec(`INSERT INTO rooms`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.ErrorIs(t, repo.Create(context.Background(), &model.Room{HostelID: 1, FloorID: 5, RoomNumber: "101", SharingType: 1}), ErrDuplicate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepo_DeleteOccupied(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)
	now := time.Now()

	mock.ExpectExec(`DELETE FROM rooms WHERE id = \? AND occupied_beds = 0`).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(4).WillReturnRows(sqlmock.NewRows(roomCols).
		AddRow(4, 1, 1, "104", 2, 0, 1, "partial", 3, now, now))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrConflict)

	mock.ExpectExec(`DELETE FROM rooms`).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(5).WillReturnError(sql.ErrNoRows)
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrRoomNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepo_ListFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)

	mock.ExpectQuery(`FROM rooms WHERE 1=1 AND hostel_id = \? AND floor_id = \? AND status = \? ORDER BY hostel_id, room_number`).
		WithArgs(1, 2, "available").WillReturnRows(sqlmock.NewRows(roomCols))
	out, err := repo.List(context.Background(), RoomFilter{HostelID: 1, FloorID: 2, Status: model.RoomAvailable})
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFloorRepo_Errors(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFloorRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO floors`).WillReturnError(&mysql.MySQLError{Number: 1062})
	assert.ErrorIs(t, repo.Create(ctx, &model.Floor{HostelID: 1, FloorNumber: 1}), ErrDuplicate)

	mock.ExpectExec(`INSERT INTO floors`).WillReturnError(&mysql.MySQLError{Number: 1452})
	assert.ErrorIs(t, repo.Create(ctx, &model.Floor{HostelID: 9, FloorNumber: 1}), ErrHostelNotFound)

	mock.ExpectExec(`DELETE FROM floors`).WithArgs(3).WillReturnError(&mysql.MySQLError{Number: 1451})
	assert.ErrorIs(t, repo.Delete(ctx, 3), ErrConflict)

	mock.ExpectExec(`DELETE FROM floors`).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, 4), ErrFloorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	hostel := uint64(2)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(2, "Staff One", "staff@example.com", nil, sqlmock.AnyArg(), "staff").
		WillReturnResult(sqlmock.NewResult(5, 1))
	u := &model.User{HostelID: &hostel, FullName: "Staff One", Email: "  Staff@Example.com ", Role: model.RoleStaff}
	require.NoError(t, repo.Create(ctx, u, "password1", bcrypt.MinCost))
	assert.Equal(t, uint64(5), u.ID)
	assert.Equal(t, "staff@example.com", u.Email)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(&mysql.MySQLError{Number: 1062})
	err := repo.Create(ctx, &model.User{HostelID: &hostel, Email: "staff@example.com", Role: model.RoleStaff}, "password1", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)

	assert.Error(t, repo.Create(ctx, &model.User{Email: "g@example.com", Role: model.RoleGuest}, "password1", bcrypt.MinCost),
		"non-admin without hostel")
	assert.Error(t, repo.Create(ctx, &model.User{Email: "x@example.com", Role: "user"}, "password1", bcrypt.MinCost))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	now := time.Now()
	cols := []string{"id", "hostel_id", "full_name", "email", "phone", "password_hash", "role", "is_active", "created_at", "updated_at"}

	mock.ExpectQuery(`FROM users WHERE email=\?`).WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, nil, "Admin", "admin@example.com", nil, "hash", "admin", true, now, now))
	u, err := repo.GetByEmail(context.Background(), "Admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Nil(t, u.HostelID)
	assert.True(t, u.IsActive)

	mock.ExpectQuery(`FROM users WHERE email=\?`).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_ValidateRefresh(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	cols := []string{"user_id", "expires_at", "revoked_at"}

	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\?`).WithArgs("live").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, time.Now().Add(time.Hour), nil))
	uid, err := repo.ValidateRefresh(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), uid)

	mock.ExpectQuery(`FROM refresh_tokens`).WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, time.Now().Add(time.Hour), time.Now()))
	_, err = repo.ValidateRefresh(ctx, "revoked")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	mock.ExpectQuery(`FROM refresh_tokens`).WithArgs("expired").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, time.Now().Add(-time.Hour), nil))
	_, err = repo.ValidateRefresh(ctx, "expired")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	mock.ExpectQuery(`FROM refresh_tokens`).WithArgs("unknown").WillReturnError(sql.ErrNoRows)
	_, err = repo.ValidateRefresh(ctx, "unknown")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_Rotate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	exp := time.Now().Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).WithArgs("old", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).WithArgs(3, "new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Rotate(context.Background(), "old", 3, "new", exp))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).WithArgs("old", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	err := repo.Rotate(context.Background(), "old", 3, "newer", exp)
	assert.ErrorIs(t, err, ErrTokenInvalid, "a token can be rotated only once")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGuestSearch(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM guests WHERE hostel_id = \? AND status = \? AND \(LOWER\(full_name\) LIKE \?`).
		WithArgs(7, "active", "%mee%", "%mee%", "%mee%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`FROM guests WHERE hostel_id = \? .* ORDER BY full_name, id LIMIT \? OFFSET \?`).
		WithArgs(7, "active", "%mee%", "%mee%", "%mee%", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := NewGuestRepo(db).Search(context.Background(), GuestSearchQuery{
		HostelID: 7, Text: " Mee ", Status: model.GuestActive, Page: 3, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(21), total)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}
