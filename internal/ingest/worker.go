package ingest

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/models"
)

// Worker re-syncs every tracked channel on a cron schedule. Redis holds a
// per-channel lock so concurrent replicas never import the same channel
// twice, plus the last-sync timestamp driving the schedule.
type Worker struct {
	Store    *store.Store
	Importer *Importer
	Rdb      *redis.Client
	Cron     string
	LockTTL  time.Duration
	Stop     chan struct{}
	Logger   *log.Logger
}

func (w *Worker) Start() {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for {
			select {
			case <-w.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				w.tick()
			}
		}
	}()
}

func (w *Worker) tick() {
	ctx := context.Background()
	tenants, err := w.Store.ListTenants(ctx)
	if err != nil {
		w.logf("list tenants: %v", err)
		return
	}
	for _, tenant := range tenants {
		channels, err := w.Store.ListChannels(ctx, tenant.ID)
		if err != nil {
			w.logf("list channels for %s: %v", tenant.Domain, err)
			continue
		}
		for _, ch := range channels {
			w.syncChannel(ctx, ch)
		}
	}
}

func (w *Worker) syncChannel(ctx context.Context, ch models.Channel) {
	last := w.lastSync(ctx, ch.ID)
	if !isDue(w.Cron, last) {
		return
	}

	lockTTL := w.LockTTL
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	lockKey := "ingest:lock:" + ch.ID
	lockToken := uuid.NewString()
	if w.Rdb != nil {
		ok, _ := w.Rdb.SetNX(ctx, lockKey, lockToken, lockTTL).Result()
		if !ok {
			return
		}
	}

	go func(ch models.Channel) {
		defer func() {
			if w.Rdb != nil {
				// Only release a lock we still hold.
				if held, _ := w.Rdb.Get(context.Background(), lockKey).Result(); held == lockToken {
					w.Rdb.Del(context.Background(), lockKey)
				}
			}
		}()
		stats, err := w.Importer.ImportChannel(context.Background(), ch)
		if err != nil {
			w.logf("sync %s: %v", ch.Handle, err)
			return
		}
		w.markSynced(context.Background(), ch.ID)
		w.logf("synced %s: %d videos, %d transcripts, %d quality, %d embedded",
			ch.Handle, stats.Videos, stats.Transcripts, stats.Quality, stats.Embedded)
	}(ch)
}

func (w *Worker) lastSync(ctx context.Context, channelID string) *time.Time {
	if w.Rdb == nil {
		return nil
	}
	raw, err := w.Rdb.Get(ctx, "ingest:last:"+channelID).Result()
	if err != nil {
		return nil
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	t := time.Unix(unix, 0)
	return &t
}

func (w *Worker) markSynced(ctx context.Context, channelID string) {
	if w.Rdb == nil {
		return
	}
	_ = w.Rdb.Set(ctx, "ingest:last:"+channelID, strconv.FormatInt(time.Now().Unix(), 10), 0).Err()
}

func (w *Worker) logf(format string, args ...interface{}) {
	if w.Logger != nil {
		w.Logger.Printf(format, args...)
	}
}

// isDue reports whether a channel with the given cron spec should sync now
// based on its last sync time. Supports "@daily", "@hourly" and standard
// 5-field cron expressions; invalid specs fall back to @daily.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		return !expr.Next(*last).After(now)
	}
}
