package config

import (
	"os"
	"strings"
)

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// OutboxDispatchEnabled starts the in-process workflow event dispatcher.
//
// Set via env:
// - OUTBOX_DISPATCH_ENABLED=true
func OutboxDispatchEnabled() bool {
	return envBool("OUTBOX_DISPATCH_ENABLED", false)
}

// CatalogCacheEnabled caches the active product catalog in redis.
// Disabled with CATALOG_CACHE_ENABLED=false.
func CatalogCacheEnabled() bool {
	return envBool("CATALOG_CACHE_ENABLED", true)
}

// ReportArchiveEnabled uploads every exported report workbook to GCS_BUCKET.
func ReportArchiveEnabled() bool {
	return envBool("REPORT_ARCHIVE_ENABLED", false)
}
