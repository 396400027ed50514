package database

import (
	"fmt"
	"net/url"
	"strings"
)

// buildConnectionString builds a DSN for the modernc sqlite driver. Pragmas
// travel as _pragma=name(value) query parameters so they apply to every
// connection in the pool, not only the first one.
func (opts SQLiteOptions) buildConnectionString() string {
	var b strings.Builder
	b.WriteString("file:")
	b.WriteString(opts.Path)

	params := url.Values{}
	if opts.Mode != "" {
		params.Add("mode", opts.Mode)
	}
	if opts.Cache != "" {
		params.Add("cache", string(opts.Cache))
	}
	if opts.ForeignKeys {
		params.Add("_pragma", "foreign_keys(1)")
	}
	if opts.BusyTimeout > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout))
	}
	if opts.Journal != "" {
		params.Add("_pragma", fmt.Sprintf("journal_mode(%s)", opts.Journal))
	}
	if opts.Synchronous != "" {
		params.Add("_pragma", fmt.Sprintf("synchronous(%s)", opts.Synchronous))
	}
	if opts.CacheSize != 0 {
		params.Add("_pragma", fmt.Sprintf("cache_size(%d)", opts.CacheSize))
	}

	if encoded := params.Encode(); encoded != "" {
		b.WriteString("?")
		b.WriteString(encoded)
	}
	return b.String()
}
