package config

import (
	"sync"
	"testing"

	"github.com/seimart/seimart/config/schema"
	"github.com/stretchr/testify/assert"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	c := New("", t.TempDir(), true)
	t.Cleanup(c.Close)
	return c
}

func TestConfigDefaults(t *testing.T) {
	c := testConfig(t)
	assert.Equal(t, int64(0), c.GetPlatformFeePermille())
	assert.Equal(t, "", c.GetFeeCollectAddress())
	assert.Equal(t, int64(5), c.GetDemoDailyLimit())
	assert.Equal(t, 0, len(c.GetIPWhiteList()))
}

func TestConfigRefresh(t *testing.T) {
	c := testConfig(t)

	assert.NoError(t, c.wdb.Db.Create(&schema.FeeConfig{
		PlatformFeePermille: 25,
		FeeCollectAddress:   "0x14723A09ACff6D2A60DcdF7aA4AFf308FDDC160C",
	}).Error)
	assert.NoError(t, c.wdb.Db.Create(&schema.Param{DemoDailyLimit: 2}).Error)
	assert.NoError(t, c.wdb.Db.Create(&schema.IpRateWhitelist{
		OriginOrIP: "188.0.2.2",
		Available:  true,
	}).Error)

	c.updateFee()
	c.updateParam()
	c.updateIPWhiteList()

	assert.Equal(t, int64(25), c.GetPlatformFeePermille())
	assert.Equal(t, "0x14723A09ACff6D2A60DcdF7aA4AFf308FDDC160C", c.GetFeeCollectAddress())
	assert.Equal(t, int64(2), c.GetDemoDailyLimit())
	_, ok := c.GetIPWhiteList()["188.0.2.2"]
	assert.True(t, ok)
}

// getters and refresh jobs run on different goroutines in production; this
// drives them concurrently so the race detector covers that path.
func TestConfigConcurrentRefresh(t *testing.T) {
	c := testConfig(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.updateFee()
				c.updateParam()
				c.updateIPWhiteList()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = c.GetPlatformFeePermille()
				_ = c.GetFeeCollectAddress()
				_ = c.GetDemoDailyLimit()
				_ = c.GetIPWhiteList()
			}
		}()
	}
	wg.Wait()
}
