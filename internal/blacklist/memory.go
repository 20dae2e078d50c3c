package blacklist

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// MemoryBlacklist is a process-local blacklist. Entries do not survive a restart
// and are not shared between instances.
type MemoryBlacklist struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	scheduler gocron.Scheduler
	interval  time.Duration
	now       func() time.Time
}

func NewMemoryBlacklist(cleanupInterval time.Duration) (*MemoryBlacklist, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &MemoryBlacklist{
		entries:   make(map[string]time.Time),
		scheduler: scheduler,
		interval:  cleanupInterval,
		now:       time.Now,
	}, nil
}

// Start schedules the periodic removal of expired entries.
func (b *MemoryBlacklist) Start() error {
	_, err := b.scheduler.NewJob(
		gocron.DurationJob(b.interval),
		gocron.NewTask(
			func() {
				removed := b.RemoveExpired()
				if removed > 0 {
					log.Debug().Int("removed", removed).Msg("expired blacklisted tokens removed")
				}
			},
		),
		gocron.WithName("blacklist-cleanup"),
	)
	if err != nil {
		return err
	}

	b.scheduler.Start()
	return nil
}

// Stop shuts down the cleanup scheduler.
func (b *MemoryBlacklist) Stop() error {
	return b.scheduler.Shutdown()
}

func (b *MemoryBlacklist) Add(_ context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(b.now()) {
		return nil
	}

	b.mu.Lock()
	b.entries[hashToken(token)] = expiresAt
	b.mu.Unlock()
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.entries[hashToken(token)]
	if !ok {
		return false, nil
	}

	return expiresAt.After(b.now()), nil
}

// RemoveExpired drops every entry whose token has expired and returns how many were removed.
func (b *MemoryBlacklist) RemoveExpired() int {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for key, expiresAt := range b.entries {
		if !expiresAt.After(now) {
			delete(b.entries, key)
			removed++
		}
	}

	return removed
}
