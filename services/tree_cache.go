package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// TreeCache keeps rendered referral trees in Redis for a short TTL.
// A nil *TreeCache, a nil client or a zero TTL disables caching.
type TreeCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *Metrics
	log     logrus.FieldLogger
}

func NewTreeCache(client *redis.Client, ttl time.Duration, metrics *Metrics, log logrus.FieldLogger) *TreeCache {
	return &TreeCache{client: client, ttl: ttl, metrics: metrics, log: log}
}

// TreeCacheKey is the Redis key of a normalized query
func TreeCacheKey(q models.TreeQuery) string {
	totals := 0
	if q.IncludeTotals {
		totals = 1
	}
	return fmt.Sprintf("mlm:tree:%s:%d:%d:%d", q.Root, q.Depth, q.PerNode, totals)
}

func (c *TreeCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns a cached tree. Any Redis or decode failure is a miss.
func (c *TreeCache) Get(ctx context.Context, q models.TreeQuery) (*models.TreeNode, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.client.Get(ctx, TreeCacheKey(q)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Warn("referral tree cache read failed")
		}
		c.metrics.cacheLookup(false)
		return nil, false
	}

	var node models.TreeNode
	if err := json.Unmarshal(raw, &node); err != nil {
		c.log.WithError(err).Warn("referral tree cache entry unreadable")
		c.metrics.cacheLookup(false)
		return nil, false
	}

	c.metrics.cacheLookup(true)
	return &node, true
}

// Set stores a tree; failures are logged and ignored
func (c *TreeCache) Set(ctx context.Context, q models.TreeQuery, node *models.TreeNode) {
	if !c.enabled() || node == nil {
		return
	}

	raw, err := json.Marshal(node)
	if err != nil {
		c.log.WithError(err).Warn("referral tree cache encode failed")
		return
	}

	if err := c.client.Set(ctx, TreeCacheKey(q), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("referral tree cache write failed")
	}
}
