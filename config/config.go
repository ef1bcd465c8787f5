package config

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Config values are refreshed from the DB by scheduler jobs while request
// handlers read them, so every field lives behind the lock.
type Config struct {
	wdb       *Wdb
	scheduler *gocron.Scheduler

	lock                sync.RWMutex
	platformFeePermille int64
	feeCollectAddress   string
	demoDailyLimit      int64
	ipWhiteList         map[string]struct{}
}

func New(configDSN string, sqliteDir string, useSqlite bool) *Config {
	var wdb *Wdb
	if useSqlite {
		wdb = NewSqliteWdb(sqliteDir)
	} else {
		wdb = NewWdb(configDSN)
	}
	if err := wdb.Migrate(); err != nil {
		panic(err)
	}
	fee, err := wdb.GetFee()
	if err != nil {
		panic(err)
	}
	param, err := wdb.GetParam()
	if err != nil {
		panic(err)
	}
	return &Config{
		wdb:                 wdb,
		platformFeePermille: fee.PlatformFeePermille,
		feeCollectAddress:   fee.FeeCollectAddress,
		demoDailyLimit:      param.DemoDailyLimit,
		ipWhiteList:         make(map[string]struct{}),
		scheduler:           gocron.NewScheduler(time.UTC),
	}
}

func (c *Config) GetPlatformFeePermille() int64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.platformFeePermille
}

func (c *Config) GetFeeCollectAddress() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.feeCollectAddress
}

func (c *Config) GetDemoDailyLimit() int64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.demoDailyLimit
}

// GetIPWhiteList returns the current whitelist map; the map itself is never
// mutated after publication, update jobs swap in a fresh one.
func (c *Config) GetIPWhiteList() map[string]struct{} {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.ipWhiteList
}

func (c *Config) Run() {
	go c.runJobs()
}

func (c *Config) Close() {
	c.wdb.Close()
}
