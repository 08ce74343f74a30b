package queue

import (
    "context"
    "encoding/json"
    "fmt"

    "github.com/redis/go-redis/v9"
)

// FeedSize is how many entries each activity list keeps.
const FeedSize = 50

const allHostels = "all"

// ActivityFeed keeps the most recent events per hostel in Redis lists
// (activity:<hostel_id>) plus one list across all hostels for admins.
type ActivityFeed struct {
    rdb *redis.Client
}

func NewActivityFeed(rdb *redis.Client) *ActivityFeed { return &ActivityFeed{rdb: rdb} }

func feedKey(hostel string) string { return "activity:" + hostel }

// Push prepends the event and trims both lists to FeedSize.
func (f *ActivityFeed) Push(ctx context.Context, ev OccupancyEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    pipe := f.rdb.TxPipeline()
    for _, key := range []string{feedKey(fmt.Sprint(ev.HostelID)), feedKey(allHostels)} {
        pipe.LPush(ctx, key, body)
        pipe.LTrim(ctx, key, 0, FeedSize-1)
    }
    _, err = pipe.Exec(ctx)
    return err
}

// Recent returns up to n events, newest first.  hostelID 0 reads the
// cross-hostel list.
func (f *ActivityFeed) Recent(ctx context.Context, hostelID uint64, n int) ([]OccupancyEvent, error) {
    if n <= 0 || n > FeedSize {
        n = FeedSize
    }
    key := feedKey(allHostels)
    if hostelID != 0 {
        key = feedKey(fmt.Sprint(hostelID))
    }
    raw, err := f.rdb.LRange(ctx, key, 0, int64(n-1)).Result()
    if err != nil {
        return nil, err
    }
    out := make([]OccupancyEvent, 0, len(raw))
    for _, s := range raw {
        var ev OccupancyEvent
        if err := json.Unmarshal([]byte(s), &ev); err != nil {
            continue // skip entries written by an older format
        }
        out = append(out, ev)
    }
    return out, nil
}
