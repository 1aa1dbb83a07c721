package membership

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vendas-platform/pkg/config"
	"vendas-platform/pkg/metrics"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// CourseMappings lists the courses a tenant's product unlocks.
type CourseMappings interface {
	CourseIDs(ctx context.Context, tenantID, productID string) ([]string, error)
}

// queryTimeout bounds the shared lookup, which outlives any single caller.
const queryTimeout = 5 * time.Second

type mappingEntry struct {
	courseIDs []string
	expiresAt time.Time
}

type cachedMappings struct {
	db    *gorm.DB
	ttl   time.Duration
	now   func() time.Time
	load  func(ctx context.Context, tenantID, productID string) ([]string, error)
	group singleflight.Group

	mu        sync.RWMutex
	entries   map[string]mappingEntry
	lastSweep time.Time
}

// NewCourseMappings reads course_products with a per (tenant, product) TTL
// cache. Concurrent misses for the same key share one query. A zero TTL
// disables caching.
func NewCourseMappings(db *gorm.DB, cfg *config.Config) CourseMappings {
	m := &cachedMappings{
		db:      db,
		ttl:     cfg.Membership.MappingCacheTTL,
		now:     time.Now,
		entries: make(map[string]mappingEntry),
	}
	m.load = m.query
	return m
}

func (m *cachedMappings) CourseIDs(ctx context.Context, tenantID, productID string) ([]string, error) {
	key := tenantID + "/" + productID

	if ids, ok := m.lookup(key); ok {
		metrics.MappingCacheTotal.WithLabelValues("hit").Inc()
		return ids, nil
	}
	metrics.MappingCacheTotal.WithLabelValues("miss").Inc()

	// The shared query is detached from the caller that started it, so one
	// cancelled request does not fail the others waiting on the same key.
	ch := m.group.DoChan(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queryTimeout)
		defer cancel()

		ids, err := m.load(qctx, tenantID, productID)
		if err != nil {
			return nil, err
		}
		m.store(key, ids)
		return ids, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	}
}

func (m *cachedMappings) query(ctx context.Context, tenantID, productID string) ([]string, error) {
	var ids []string
	err := m.db.WithContext(ctx).
		Model(&CourseProduct{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("course_id").
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list course mappings: %w", err)
	}
	return ids, nil
}

func (m *cachedMappings) lookup(key string) ([]string, bool) {
	if m.ttl <= 0 {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok || m.now().After(e.expiresAt) {
		return nil, false
	}
	return e.courseIDs, true
}

// store saves ids and, at most once per TTL, drops expired entries.
func (m *cachedMappings) store(key string, ids []string) {
	if m.ttl <= 0 {
		return
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= m.ttl {
		for k, e := range m.entries {
			if now.After(e.expiresAt) {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}
	m.entries[key] = mappingEntry{courseIDs: ids, expiresAt: now.Add(m.ttl)}
}
