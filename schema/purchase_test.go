package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionGranteeKey(t *testing.T) {
	s := WalletSession("0x71C7656EC7ab88b098defB751B7401B5f6d8976F")
	assert.False(t, s.IsDemo())
	assert.Equal(t, "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", s.GranteeKey())

	d := DemoSession("203.0.113.7")
	assert.True(t, d.IsDemo())
	// demo keys never collide with wallet addresses
	assert.Equal(t, "demo:203.0.113.7", d.GranteeKey())
}
