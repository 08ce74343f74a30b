// Package service runs the occupancy ledger against the database.  Each
// operation locks the rows it touches, feeds the snapshots to the ledger,
// writes the results back with a version check and publishes an event
// once the transaction has committed.
package service

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "slices"

    "go.uber.org/zap"

    "github.com/hostellog/hostel-admin/internal/access"
    "github.com/hostellog/hostel-admin/internal/model"
    "github.com/hostellog/hostel-admin/internal/occupancy"
    "github.com/hostellog/hostel-admin/internal/queue"
    "github.com/hostellog/hostel-admin/internal/repository"
)

// OccupancyService is the only writer of rooms.occupied_beds,
// rooms.status, guests.room_id and guests.status.
type OccupancyService struct {
    db     *sql.DB
    rooms  *repository.RoomRepo
    floors *repository.FloorRepo
    guests *repository.GuestRepo
    pub    queue.Publisher
    log    *zap.Logger
}

func NewOccupancyService(db *sql.DB, rooms *repository.RoomRepo, floors *repository.FloorRepo, guests *repository.GuestRepo, pub queue.Publisher, log *zap.Logger) *OccupancyService {
    if pub == nil {
        pub = queue.NopPublisher{}
    }
    return &OccupancyService{db: db, rooms: rooms, floors: floors, guests: guests, pub: pub, log: log.Named("occupancy")}
}

// RoomChanges are the editable room attributes.  Zero values and a nil
// rent leave the attribute unchanged.
type RoomChanges struct {
    FloorID         uint64
    RoomNumber      string
    SharingType     int
    RentAmountCents *uint32
}

// ReconcileReport lists the rooms whose stored counters were rewritten
// and the rooms that hold more active guests than beds.  The latter are
// left untouched and need an operator.
type ReconcileReport struct {
    Repaired   []model.Room `json:"repaired"`
    Overbooked []model.Room `json:"overbooked"`
}

// withTx runs fn in a transaction and commits when it returns nil.
func (s *OccupancyService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin tx: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(tx); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit: %w", err)
    }
    committed = true
    return nil
}

// check logs failures that point at a broken invariant or a lost race.
// Ordinary rejections (room full, wrong state) are returned silently.
func (s *OccupancyService) check(op string, err error) error {
    switch {
    case err == nil:
    case errors.Is(err, occupancy.ErrCapacityExceeded):
        s.log.Error("occupancy invariant violated", zap.String("op", op), zap.Error(err))
    case errors.Is(err, repository.ErrConflict):
        s.log.Warn("concurrent room update", zap.String("op", op), zap.Error(err))
    }
    return err
}

func (s *OccupancyService) publish(ctx context.Context, events ...queue.OccupancyEvent) {
    for _, ev := range events {
        if err := s.pub.Publish(ctx, ev); err != nil {
            s.log.Warn("publish occupancy event failed", zap.String("kind", string(ev.Kind)), zap.String("id", ev.ID), zap.Error(err))
        }
    }
}

func (s *OccupancyService) lockGuest(ctx context.Context, tx *sql.Tx, scope access.Scope, id uint64) (*model.Guest, error) {
    g, err := s.guests.GetForUpdateTx(ctx, tx, id)
    if err != nil {
        return nil, err
    }
    if !scope.Allows(g.HostelID) {
        return nil, repository.ErrGuestNotFound
    }
    return g, nil
}

// lockRooms locks the given rooms in ascending id order, so concurrent
// transfers between the same two rooms cannot deadlock.
func (s *OccupancyService) lockRooms(ctx context.Context, tx *sql.Tx, scope access.Scope, ids ...uint64) (map[uint64]*model.Room, error) {
    ids = slices.Clone(ids)
    slices.Sort(ids)
    ids = slices.Compact(ids)
    out := make(map[uint64]*model.Room, len(ids))
    for _, id := range ids {
        rm, err := s.rooms.GetForUpdateTx(ctx, tx, id)
        if err != nil {
            return nil, err
        }
        if !scope.Allows(rm.HostelID) {
            return nil, repository.ErrRoomNotFound
        }
        out[id] = rm
    }
    return out, nil
}

func (s *OccupancyService) occupants(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.Guest, error) {
    list, err := s.guests.ListActiveByRoomTx(ctx, tx, roomID)
    if err != nil {
        return nil, err
    }
    return values(list), nil
}

func values[T any](ptrs []*T) []T {
    out := make([]T, 0, len(ptrs))
    for _, p := range ptrs {
        out = append(out, *p)
    }
    return out
}

// assignTx runs the ledger assignment for an already locked guest.
func (s *OccupancyService) assignTx(ctx context.Context, tx *sql.Tx, scope access.Scope, g model.Guest, roomID uint64) (occupancy.Assignment, error) {
    ids := []uint64{roomID}
    if g.RoomID != nil {
        ids = append(ids, *g.RoomID)
    }
    locked, err := s.lockRooms(ctx, tx, scope, ids...)
    if err != nil {
        return occupancy.Assignment{}, err
    }
    occ, err := s.occupants(ctx, tx, roomID)
    if err != nil {
        return occupancy.Assignment{}, err
    }
    var from *model.Room
    if g.RoomID != nil {
        from = locked[*g.RoomID]
    }

    a, err := occupancy.Assign(g, *locked[roomID], occ, from)
    if err != nil {
        return occupancy.Assignment{}, err
    }
    if a.Previous != nil {
        if err := s.rooms.UpdateOccupancyTx(ctx, tx, a.Previous); err != nil {
            return occupancy.Assignment{}, err
        }
    }
    if err := s.rooms.UpdateOccupancyTx(ctx, tx, &a.Room); err != nil {
        return occupancy.Assignment{}, err
    }
    if err := s.guests.UpdateAssignmentTx(ctx, tx, &a.Guest); err != nil {
        return occupancy.Assignment{}, err
    }
    return a, nil
}

func assignmentEvent(a occupancy.Assignment) queue.OccupancyEvent {
    if a.Previous == nil {
        return queue.NewEvent(queue.GuestAssigned, &a.Room, &a.Guest)
    }
    ev := queue.NewEvent(queue.GuestTransferred, &a.Room, &a.Guest)
    from := a.Previous.ID
    ev.FromRoomID = &from
    return ev
}

// Assign gives the guest a bed in roomID.  A guest who already has a room
// is transferred: both rooms change in the same transaction.
func (s *OccupancyService) Assign(ctx context.Context, scope access.Scope, guestID, roomID uint64) (occupancy.Assignment, error) {
    var a occupancy.Assignment
    err := s.withTx(ctx, func(tx *sql.Tx) error {
        g, err := s.lockGuest(ctx, tx, scope, guestID)
        if err != nil {
            return err
        }
        a, err = s.assignTx(ctx, tx, scope, *g, roomID)
        return err
    })
    if err != nil {
        return occupancy.Assignment{}, s.check("assign", err)
    }
    s.publish(ctx, assignmentEvent(a))
    return a, nil
}

// Vacate checks the guest out.  roomID 0 means the guest's current room;
// any other value must name that room.
func (s *OccupancyService) Vacate(ctx context.Context, scope access.Scope, guestID, roomID uint64) (occupancy.Vacation, error) {
    var v occupancy.Vacation
    err := s.withTx(ctx, func(tx *sql.Tx) error {
        g, err := s.lockGuest(ctx, tx, scope, guestID)
        if err != nil {
            return err
        }
        if g.RoomID == nil {
            return fmt.Errorf("guest %s has no room: %w", g.FullName, occupancy.ErrNotAssigned)
        }
        if roomID == 0 {
            roomID = *g.RoomID
        }
        locked, err := s.lockRooms(ctx, tx, scope, roomID)
        if err != nil {
            return err
        }
        v, err = occupancy.Vacate(*g, *locked[roomID])
        if err != nil {
            return err
        }
        if err := s.rooms.UpdateOccupancyTx(ctx, tx, &v.Room); err != nil {
            return err
        }
        return s.guests.UpdateAssignmentTx(ctx, tx, &v.Guest)
    })
    if err != nil {
        return occupancy.Vacation{}, s.check("vacate", err)
    }
    s.publish(ctx, queue.NewEvent(queue.GuestVacated, &v.Room, &v.Guest))
    return v, nil
}

// SetMaintenance takes an empty room out of service.  A room already in
// maintenance is returned unchanged.
func (s *OccupancyService) SetMaintenance(ctx context.Context, scope access.Scope, roomID uint64) (model.Room, error) {
    return s.changeRoom(ctx, scope, roomID, "set_maintenance", queue.RoomMaintenance, func(rm model.Room) (model.Room, bool, error) {
        if rm.Status == model.RoomMaintenance && rm.OccupiedBeds == 0 {
            return rm, false, nil
        }
        out, err := occupancy.SetMaintenance(rm)
        return out, true, err
    })
}

// ClearMaintenance returns a room to service.
func (s *OccupancyService) ClearMaintenance(ctx context.Context, scope access.Scope, roomID uint64) (model.Room, error) {
    return s.changeRoom(ctx, scope, roomID, "clear_maintenance", queue.RoomAvailable, func(rm model.Room) (model.Room, bool, error) {
        out, err := occupancy.ClearMaintenance(rm)
        return out, true, err
    })
}

func (s *OccupancyService) changeRoom(ctx context.Context, scope access.Scope, roomID uint64, op string, kind queue.Kind, fn func(model.Room) (model.Room, bool, error)) (model.Room, error) {
    var (
        out     model.Room
        changed bool
    )
    err := s.withTx(ctx, func(tx *sql.Tx) error {
        locked, err := s.lockRooms(ctx, tx, scope, roomID)
        if err != nil {
            return err
        }
        out, changed, err = fn(*locked[roomID])
        if err != nil || !changed {
            return err
        }
        return s.rooms.UpdateOccupancyTx(ctx, tx, &out)
    })
    if err != nil {
        return model.Room{}, s.check(op, err)
    }
    if changed {
        s.publish(ctx, queue.NewEvent(kind, &out, nil))
    }
    return out, nil
}

// UpdateRoom edits a room.  Changing the bed count recomputes the status
// from the active occupants.
func (s *OccupancyService) UpdateRoom(ctx context.Context, scope access.Scope, roomID uint64, ch RoomChanges) (model.Room, error) {
    var out model.Room
    err := s.withTx(ctx, func(tx *sql.Tx) error {
        locked, err := s.lockRooms(ctx, tx, scope, roomID)
        if err != nil {
            return err
        }
        rm := *locked[roomID]
        if ch.FloorID != 0 && ch.FloorID != rm.FloorID {
            f, err := s.floors.GetByID(ctx, ch.FloorID)
            if err != nil {
                return err
            }
            if f.HostelID != rm.HostelID {
                return repository.ErrFloorNotFound
            }
            rm.FloorID = f.ID
        }
        if ch.RoomNumber != "" {
            rm.RoomNumber = ch.RoomNumber
        }
        if ch.RentAmountCents != nil {
            rm.RentAmountCents = *ch.RentAmountCents
        }
        if ch.SharingType != 0 && ch.SharingType != rm.SharingType {
            occ, err := s.occupants(ctx, tx, roomID)
            if err != nil {
                return err
            }
            if rm, err = occupancy.Resize(rm, ch.SharingType, occ); err != nil {
                return err
            }
        }
        out = rm
        return s.rooms.UpdateDetailsTx(ctx, tx, &out)
    })
    if err != nil {
        return model.Room{}, s.check("update_room", err)
    }
    return out, nil
}

// Reactivate makes a checked-out or inactive guest active again, without
// a room.
func (s *OccupancyService) Reactivate(ctx context.Context, scope access.Scope, guestID uint64) (model.Guest, error) {
    var out model.Guest
    err := s.withTx(ctx, func(tx *sql.Tx) error {
        g, err := s.lockGuest(ctx, tx, scope, guestID)
        if err != nil {
            return err
        }
        if out, err = occupancy.Reactivate(*g); err != nil {
            return err
        }
        return s.guests.UpdateAssignmentTx(ctx, tx, &out)
    })
    if err != nil {
        return model.Guest{}, s.check("reactivate", err)
    }
    s.publish(ctx, queue.NewEvent(queue.GuestReactivated, nil, &out))
    return out, nil
}

// Deactivate puts an active guest on hold and frees the bed the guest
// held, if any.
func (s *OccupancyService) Deactivate(ctx context.Context, scope access.Scope, guestID uint64) (occupancy.Deactivation, error) {
    var d occupancy.Deactivation
    err := s.withTx(ctx, func(tx *sql.Tx) error {
        g, err := s.lockGuest(ctx, tx, scope, guestID)
        if err != nil {
            return err
        }
        var current *model.Room
        if g.RoomID != nil {
            locked, err := s.lockRooms(ctx, tx, scope, *g.RoomID)
            if err != nil {
                return err
            }
            current = locked[*g.RoomID]
        }
        if d, err = occupancy.Deactivate(*g, current); err != nil {
            return err
        }
        if d.Room != nil {
            if err := s.rooms.UpdateOccupancyTx(ctx, tx, d.Room); err != nil {
                return err
            }
        }
        return s.guests.UpdateAssignmentTx(ctx, tx, &d.Guest)
    })
    if err != nil {
        return occupancy.Deactivation{}, s.check("deactivate", err)
    }
    s.publish(ctx, queue.NewEvent(queue.GuestDeactivated, d.Room, &d.Guest))
    return d, nil
}

// RemoveGuest deletes a guest.  A guest still holding a bed is vacated in
// the same transaction, so the room count stays in step.  The freed room
// is returned, or nil when the guest had none.
func (s *OccupancyService) RemoveGuest(ctx context.Context, scope access.Scope, guestID uint64) (*model.Room, error) {
    var (
        removed model.Guest
        freed   *model.Room
    )
    err := s.withTx(ctx, func(tx *sql.Tx) error {
        g, err := s.lockGuest(ctx, tx, scope, guestID)
        if err != nil {
            return err
        }
        removed = *g
        if g.RoomID != nil {
            locked, err := s.lockRooms(ctx, tx, scope, *g.RoomID)
            if err != nil {
                return err
            }
            v, err := occupancy.Vacate(*g, *locked[*g.RoomID])
            if err != nil {
                return err
            }
            if err := s.rooms.UpdateOccupancyTx(ctx, tx, &v.Room); err != nil {
                return err
            }
            freed = &v.Room
        }
        return s.guests.DeleteTx(ctx, tx, g.ID)
    })
    if err != nil {
        return nil, s.check("remove_guest", err)
    }
    s.publish(ctx, queue.NewEvent(queue.GuestRemoved, freed, &removed))
    return freed, nil
}

// RegisterGuest inserts an active guest and, when roomID is non-zero,
// assigns the bed in the same transaction.
func (s *OccupancyService) RegisterGuest(ctx context.Context, scope access.Scope, g *model.Guest, roomID uint64) (*model.Guest, error) {
    if !scope.Allows(g.HostelID) {
        return nil, repository.ErrForbidden
    }
    g.Status = model.GuestActive
    var (
        a        occupancy.Assignment
        assigned bool
    )
    err := s.withTx(ctx, func(tx *sql.Tx) error {
        if err := s.guests.CreateTx(ctx, tx, g); err != nil {
            return err
        }
        if roomID == 0 {
            return nil
        }
        var err error
        a, err = s.assignTx(ctx, tx, scope, *g, roomID)
        assigned = err == nil
        return err
    })
    if err != nil {
        return nil, s.check("register_guest", err)
    }

    events := []queue.OccupancyEvent{queue.NewEvent(queue.GuestRegistered, nil, g)}
    if assigned {
        events = append(events, assignmentEvent(a))
    }
    s.publish(ctx, events...)

    created, err := s.guests.GetByID(ctx, g.ID)
    if err != nil {
        return nil, err
    }
    return created, nil
}

// Reconcile rebuilds occupied_beds and status of every room of a hostel
// (all hostels when hostelID is 0) from the active guest assignments.
func (s *OccupancyService) Reconcile(ctx context.Context, hostelID uint64) (ReconcileReport, error) {
    var rep ReconcileReport
    err := s.withTx(ctx, func(tx *sql.Tx) error {
        rooms, err := s.rooms.ListForUpdateTx(ctx, tx, hostelID)
        if err != nil {
            return err
        }
        active, err := s.guests.ListActiveByHostelTx(ctx, tx, hostelID)
        if err != nil {
            return err
        }
        guests := values(active)
        for _, rm := range rooms {
            fixed, err := occupancy.Recompute(*rm, guests)
            if errors.Is(err, occupancy.ErrCapacityExceeded) {
                s.log.Error("room holds more active guests than beds", zap.Uint64("room_id", rm.ID), zap.Error(err))
                rep.Overbooked = append(rep.Overbooked, *rm)
                continue
            }
            if err != nil {
                return err
            }
            if fixed.OccupiedBeds == rm.OccupiedBeds && fixed.Status == rm.Status {
                continue
            }
            if err := s.rooms.UpdateOccupancyTx(ctx, tx, &fixed); err != nil {
                return err
            }
            s.log.Info("room counters repaired",
                zap.Uint64("room_id", rm.ID),
                zap.Int("was_occupied", rm.OccupiedBeds), zap.String("was_status", string(rm.Status)),
                zap.Int("occupied", fixed.OccupiedBeds), zap.String("status", string(fixed.Status)))
            rep.Repaired = append(rep.Repaired, fixed)
        }
        return nil
    })
    if err != nil {
        return ReconcileReport{}, s.check("reconcile", err)
    }
    for i := range rep.Repaired {
        s.publish(ctx, queue.NewEvent(queue.RoomReconciled, &rep.Repaired[i], nil))
    }
    return rep, nil
}
