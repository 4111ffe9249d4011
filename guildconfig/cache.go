// Package guildconfig provides a read-through, write-invalidated view of
// per-guild moderation configuration. The persisted store is the source of
// truth; the cache is best-effort and always safe to drop.
package guildconfig

import (
	"sync"

	"modbot/model"
	"modbot/utils/database/configdb"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Cache maps guild IDs to their configuration. Concurrent misses each load
// independently; loads are idempotent reads so the duplicated work is
// harmless.
type Cache struct {
	db     *sqlx.DB
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]*model.GuildConfig
}

// New creates an empty cache over the given database.
func New(db *sqlx.DB, logger *zap.Logger) *Cache {
	return &Cache{
		db:      db,
		logger:  logger.Named("guildconfig"),
		entries: make(map[string]*model.GuildConfig),
	}
}

// Get returns the guild's configuration, loading it from the database on a
// miss. A guild with no persisted row gets a default-valued row created for
// it, establishing that every known guild has exactly one configuration
// record.
func (c *Cache) Get(guildID string) (*model.GuildConfig, error) {
	c.mu.RLock()
	cfg, ok := c.entries[guildID]
	c.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	cfg, err := configdb.Get(c.db, guildID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		if err := configdb.EnsureExists(c.db, guildID); err != nil {
			return nil, err
		}
		cfg, err = configdb.Get(c.db, guildID)
		if err != nil {
			return nil, err
		}
		c.logger.Info("created default guild config", zap.String("guild_id", guildID))
	}

	c.mu.Lock()
	c.entries[guildID] = cfg
	c.mu.Unlock()
	return cfg, nil
}

// Invalidate evicts the guild's entry. It never errors and is a no-op when
// the entry is absent.
func (c *Cache) Invalidate(guildID string) {
	c.mu.Lock()
	delete(c.entries, guildID)
	c.mu.Unlock()
}

// InvalidateAll clears the whole cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*model.GuildConfig)
	c.mu.Unlock()
}
