package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"free", Free},
		{"pro", Pro},
		{"premium", Premium},
		{"basic", Free},
		{"custom", Premium},
		{"enterprise", Free},
		{"", Free},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.in), "Canonical(%q)", tt.in)
	}
}

func TestPrice(t *testing.T) {
	assert.Equal(t, 0.0, Price(Free))
	assert.Equal(t, 49.99, Price(Pro))
	assert.Equal(t, 89.99, Price(Premium))
	assert.Equal(t, 89.99, Price("custom"))
}

func TestEndDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, EndDate(Free, now), "free plan never expires")

	pro := EndDate(Pro, now)
	require.NotNil(t, pro)
	assert.Equal(t, now.Add(365*24*time.Hour), *pro)

	premium := EndDate(Premium, now)
	require.NotNil(t, premium)
	assert.Equal(t, now.Add(730*24*time.Hour), *premium)
}

func TestAllows(t *testing.T) {
	assert.False(t, Allows(Free, "canExportPDF"))
	assert.True(t, Allows(Pro, "canExportPDF"))
	assert.True(t, Allows(Premium, "canExportPDF"))

	assert.False(t, Allows(Free, "canUseChatbot"))
	assert.True(t, Allows(Pro, "canSyncAPI"))

	// Limits count as allowed while nonzero.
	assert.True(t, Allows(Free, "playersLimit"))
	assert.True(t, Allows(Pro, "maxPlayers"))

	// Unknown keys deny for every tier.
	assert.False(t, Allows(Premium, "no_such_permission"))
}

func TestGetUnknownFallsBackToFree(t *testing.T) {
	e := Get("whatever")
	assert.Equal(t, 5, e.PlayersLimit)
	assert.Equal(t, []string{"PNG"}, e.ExportFormats)
}
