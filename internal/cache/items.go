package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/01moynul/items-api/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	keyOwnerPrefix = "items:owner:"

	// loadTimeout bounds backend and store work that runs detached from
	// the request that started it.
	loadTimeout = 5 * time.Second
)

// Store is the part of the item store that ItemCache decorates.
type Store interface {
	Insert(ctx context.Context, item *models.Item) (*models.Item, error)
	ListByOwner(ctx context.Context, uid int64) ([]*models.Item, error)
	FindByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateOwned(ctx context.Context, id, uid int64, name string) (*models.Item, error)
	SoftDeleteOwned(ctx context.Context, id, uid int64) (bool, error)
}

// ItemCache serves per-owner item lists from the backend. Each owner has a
// version counter that every successful write bumps; lists are stored under
// the version current when their load began, so a load that raced a write
// lands under a key no later read will use. Backend failures are logged and
// fall through to the store.
type ItemCache struct {
	store   Store
	backend Backend
	ttl     time.Duration
	log     logrus.FieldLogger
	sf      singleflight.Group
}

func NewItemCache(store Store, backend Backend, ttl time.Duration, log logrus.FieldLogger) *ItemCache {
	return &ItemCache{store: store, backend: backend, ttl: ttl, log: log}
}

func versionKey(uid int64) string {
	return keyOwnerPrefix + strconv.FormatInt(uid, 10) + ":v"
}

func listKey(uid, version int64) string {
	return keyOwnerPrefix + strconv.FormatInt(uid, 10) + ":list:" + strconv.FormatInt(version, 10)
}

func (c *ItemCache) ListByOwner(ctx context.Context, uid int64) ([]*models.Item, error) {
	version, ok := c.version(ctx, uid)
	if !ok {
		return c.store.ListByOwner(ctx, uid)
	}
	key := listKey(uid, version)

	ch := c.sf.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		if items, ok := c.get(loadCtx, key); ok {
			return items, nil
		}
		items, err := c.store.ListByOwner(loadCtx, uid)
		if err != nil {
			return nil, err
		}
		c.set(loadCtx, key, items)
		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*models.Item), nil
	}
}

func (c *ItemCache) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	return c.store.FindByID(ctx, id)
}

func (c *ItemCache) Insert(ctx context.Context, item *models.Item) (*models.Item, error) {
	created, err := c.store.Insert(ctx, item)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, created.UID)
	return created, nil
}

func (c *ItemCache) UpdateOwned(ctx context.Context, id, uid int64, name string) (*models.Item, error) {
	updated, err := c.store.UpdateOwned(ctx, id, uid, name)
	if err != nil || updated == nil {
		return updated, err
	}
	c.invalidate(ctx, uid)
	return updated, nil
}

func (c *ItemCache) SoftDeleteOwned(ctx context.Context, id, uid int64) (bool, error) {
	ok, err := c.store.SoftDeleteOwned(ctx, id, uid)
	if err != nil || !ok {
		return ok, err
	}
	c.invalidate(ctx, uid)
	return true, nil
}

// version reads the owner's counter. An absent counter is version 0.
func (c *ItemCache) version(ctx context.Context, uid int64) (int64, bool) {
	b, err := c.backend.Get(ctx, versionKey(uid))
	if errors.Is(err, ErrMiss) {
		return 0, true
	}
	if err != nil {
		c.log.WithError(err).WithField("uid", uid).Warn("cache version read failed")
		return 0, false
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		c.log.WithError(err).WithField("uid", uid).Warn("cache version unreadable")
		return 0, false
	}
	return v, true
}

func (c *ItemCache) get(ctx context.Context, key string) ([]*models.Item, bool) {
	b, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.log.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return nil, false
	}
	var items []*models.Item
	if err := json.Unmarshal(b, &items); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache entry unreadable")
		return nil, false
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, true
}

func (c *ItemCache) set(ctx context.Context, key string, items []*models.Item) {
	b, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.backend.Set(ctx, key, b, c.ttl); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// invalidate moves the owner to a new version; lists stored under older
// versions are never read again and expire with their TTL.
func (c *ItemCache) invalidate(ctx context.Context, uid int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()
	if _, err := c.backend.Incr(ctx, versionKey(uid)); err != nil {
		c.log.WithError(err).WithField("uid", uid).Error("cache invalidation failed")
	}
}
