package seimart

import (
	"testing"

	"github.com/seimart/seimart/schema"
	"github.com/stretchr/testify/assert"
)

func TestCacheListingsSnapshot(t *testing.T) {
	c := NewCache()
	assert.Equal(t, 0, len(c.GetListings()))

	c.UpdateListings([]schema.Listing{
		{ListingId: "a", Price: "1.0", Active: true},
		{ListingId: "b", Price: "2.5", Active: true},
	})

	got := c.GetListings()
	assert.Equal(t, 2, len(got))

	// callers get a copy, not the cached slice
	got[0].ListingId = "mutated"
	assert.Equal(t, "a", c.GetListings()[0].ListingId)
}

func TestCacheInfo(t *testing.T) {
	c := NewCache()
	c.UpdateInfo(schema.RespInfo{Network: "pacific-1", ChainId: 1329})

	info := c.GetInfo()
	assert.Equal(t, "pacific-1", info.Network)
	assert.Equal(t, int64(1329), info.ChainId)
}

func TestCacheContent(t *testing.T) {
	c := NewCache()

	_, err := c.GetContent("research-1")
	assert.Error(t, err)

	assert.NoError(t, c.SetContent("research-1", []byte("artifact body")))
	got, err := c.GetContent("research-1")
	assert.NoError(t, err)
	assert.Equal(t, []byte("artifact body"), got)
}
