package repository

import (
	"regexp"

	"github.com/dmitrijs2005/nutrilog/internal/cache"
)

// Cache keys. Everything derived from entries lives under "entries:" so a
// single pattern invalidates it.
func FullKey(userID string) string      { return "entries:full:" + userID }
func LiteKey(userID string) string      { return "entries:lite:" + userID }
func SummariesKey(userID string) string { return "entries:summaries:" + userID }
func SettingsKey(userID string) string  { return "settings:" + userID }
func ProfileKey(userID string) string   { return "profile:" + userID }

var entriesPattern = regexp.MustCompile(`^entries:`)

// InvalidateEntries drops every entry-derived cache key.
func InvalidateEntries(c *cache.Cache) {
	c.InvalidatePattern(entriesPattern)
}
