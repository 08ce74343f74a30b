package repository

import (
	"context"
	"strings"

	"github.com/hostellog/hostel-admin/internal/model"
)

// GuestSearchQuery defines filters & pagination for the guest register.
// Text matches case-insensitively on name, phone or government id.
type GuestSearchQuery struct {
	HostelID uint64
	Text     string
	Status   model.GuestStatus
	Page     int
	PageSize int
}

// Search returns one page of matching guests and the total match count.
func (r *GuestRepo) Search(ctx context.Context, q GuestSearchQuery) ([]*model.Guest, int64, error) {
	where := []string{}
	args := []any{}

	if q.HostelID != 0 {
		where = append(where, "hostel_id = ?")
		args = append(args, q.HostelID)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}
	if t := strings.ToLower(strings.TrimSpace(q.Text)); t != "" {
		like := "%" + t + "%"
		where = append(where, "(LOWER(full_name) LIKE ? OR phone LIKE ? OR LOWER(government_id) LIKE ?)")
		args = append(args, like, like, like)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataArgs := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE `+cond+` ORDER BY full_name, id LIMIT ? OFFSET ?`, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectGuests(rows)
	if err != nil {
		return nil, 0, err
	}
	if out == nil {
		out = []*model.Guest{}
	}
	return out, total, nil
}
