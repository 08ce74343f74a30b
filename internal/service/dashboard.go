package service

import (
    "context"

    "github.com/hostellog/hostel-admin/internal/access"
    "github.com/hostellog/hostel-admin/internal/model"
    "github.com/hostellog/hostel-admin/internal/occupancy"
    "github.com/hostellog/hostel-admin/internal/queue"
    "github.com/hostellog/hostel-admin/internal/repository"
)

// DashboardService answers the read-only dashboard queries.
type DashboardService struct {
    rooms  *repository.RoomRepo
    guests *repository.GuestRepo
    feed   *queue.ActivityFeed
}

// NewDashboardService builds the service.  feed may be nil when Redis is
// unavailable; RecentActivity then returns an empty list.
func NewDashboardService(rooms *repository.RoomRepo, guests *repository.GuestRepo, feed *queue.ActivityFeed) *DashboardService {
    return &DashboardService{rooms: rooms, guests: guests, feed: feed}
}

// Stats summarises occupancy for the requested hostel (0 = every hostel
// in scope).
func (s *DashboardService) Stats(ctx context.Context, scope access.Scope, hostelID uint64) (occupancy.Stats, error) {
    hid, ok := scope.Filter(hostelID)
    if !ok {
        return occupancy.Stats{}, repository.ErrForbidden
    }
    rooms, err := s.rooms.List(ctx, repository.RoomFilter{HostelID: hid})
    if err != nil {
        return occupancy.Stats{}, err
    }
    guests, err := s.guests.List(ctx, repository.GuestFilter{HostelID: hid, Status: model.GuestActive})
    if err != nil {
        return occupancy.Stats{}, err
    }
    return occupancy.Summarize(values(rooms), values(guests)), nil
}

// RecentActivity returns up to n recent occupancy events, newest first.
func (s *DashboardService) RecentActivity(ctx context.Context, scope access.Scope, hostelID uint64, n int) ([]queue.OccupancyEvent, error) {
    hid, ok := scope.Filter(hostelID)
    if !ok {
        return nil, repository.ErrForbidden
    }
    if s.feed == nil {
        return []queue.OccupancyEvent{}, nil
    }
    return s.feed.Recent(ctx, hid, n)
}
