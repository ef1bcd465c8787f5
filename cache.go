package seimart

import (
	"sync"
	"time"

	"github.com/seimart/seimart/cache"
	"github.com/seimart/seimart/schema"
)

const contentCacheExp = 10 * time.Minute

// Cache holds the hot read path: the /info payload, the active listing
// snapshot refreshed by a job, and recently served research content.
type Cache struct {
	info     schema.RespInfo
	listings []schema.Listing
	content  *cache.Cache
	lock     sync.RWMutex
}

func NewCache() *Cache {
	content, err := cache.NewLocalCache(contentCacheExp)
	if err != nil {
		panic(err)
	}
	return &Cache{
		listings: make([]schema.Listing, 0),
		content:  content,
	}
}

func (c *Cache) GetInfo() schema.RespInfo {
	c.lock.RLock()
	defer c.lock.RUnlock()
	info := c.info
	return info
}

func (c *Cache) UpdateInfo(info schema.RespInfo) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.info = info
}

func (c *Cache) GetListings() []schema.Listing {
	c.lock.RLock()
	defer c.lock.RUnlock()
	res := make([]schema.Listing, len(c.listings))
	copy(res, c.listings)
	return res
}

func (c *Cache) UpdateListings(listings []schema.Listing) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.listings = listings
}

func (c *Cache) GetContent(researchId string) ([]byte, error) {
	return c.content.Cache.Get(researchId)
}

func (c *Cache) SetContent(researchId string, data []byte) error {
	return c.content.Cache.Set(researchId, data)
}
