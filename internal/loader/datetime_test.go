package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tablesync/internal/core"
)

func testCfgForDatetime(t *testing.T) *core.Config {
	t.Helper()
	return &core.Config{PlaceholderDatetime: core.DefaultPlaceholderDatetime}
}

func TestSubstituteDatetimeNil(t *testing.T) {
	cfg := testCfgForDatetime(t)
	assert.Equal(t, cfg.PlaceholderDatetime, substituteDatetime(cfg, nil))
}

func TestSubstituteDatetimeEmptyString(t *testing.T) {
	cfg := testCfgForDatetime(t)
	assert.Equal(t, cfg.PlaceholderDatetime, substituteDatetime(cfg, ""))
	assert.Equal(t, cfg.PlaceholderDatetime, substituteDatetime(cfg, "   "))
}

func TestSubstituteDatetimeZeroSentinel(t *testing.T) {
	cfg := testCfgForDatetime(t)
	assert.Equal(t, cfg.PlaceholderDatetime, substituteDatetime(cfg, "0000-00-00 00:00:00"))
}

func TestSubstituteDatetimeNegativeYear(t *testing.T) {
	cfg := testCfgForDatetime(t)
	assert.Equal(t, cfg.PlaceholderDatetime, substituteDatetime(cfg, "-001-01-01 00:00:00"))
}

func TestSubstituteDatetimeUnparseable(t *testing.T) {
	cfg := testCfgForDatetime(t)
	assert.Equal(t, cfg.PlaceholderDatetime, substituteDatetime(cfg, "not-a-date"))
}

func TestSubstituteDatetimeValidStringPassesThrough(t *testing.T) {
	cfg := testCfgForDatetime(t)
	assert.Equal(t, "2024-01-02 03:04:05", substituteDatetime(cfg, "2024-01-02 03:04:05"))
}

func TestSubstituteDatetimeValidTimePassesThrough(t *testing.T) {
	cfg := testCfgForDatetime(t)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2024-01-02 03:04:05", substituteDatetime(cfg, ts))
}

func TestSubstituteDatetimeZeroTimeSubstituted(t *testing.T) {
	cfg := testCfgForDatetime(t)
	assert.Equal(t, cfg.PlaceholderDatetime, substituteDatetime(cfg, time.Time{}))
}
