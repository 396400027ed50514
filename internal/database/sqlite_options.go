package database

// SynchronousMode represents the available synchronous settings for SQLite
type SynchronousMode string

const (
	SynchronousOff    SynchronousMode = "OFF"
	SynchronousNormal SynchronousMode = "NORMAL"
	SynchronousFull   SynchronousMode = "FULL"
	SynchronousExtra  SynchronousMode = "EXTRA"
)

// JournalMode represents the available journal modes for SQLite
type JournalMode string

const (
	JournalDelete   JournalMode = "DELETE"
	JournalTruncate JournalMode = "TRUNCATE"
	JournalPersist  JournalMode = "PERSIST"
	JournalMemory   JournalMode = "MEMORY"
	JournalWAL      JournalMode = "WAL"
	JournalOff      JournalMode = "OFF"
)

// CacheMode represents the available cache modes for SQLite
type CacheMode string

const (
	CacheShared  CacheMode = "shared"
	CachePrivate CacheMode = "private"
)

// SQLiteOptions contains configuration options for the SQLite connection
type SQLiteOptions struct {
	// Path to the SQLite database file, or ":memory:" for an in-memory database
	Path string

	Mode        string          // ro, rw, rwc, memory
	Journal     JournalMode     // journal_mode pragma
	ForeignKeys bool            // foreign_keys pragma
	BusyTimeout int             // busy_timeout pragma (milliseconds)
	CacheSize   int             // cache_size pragma (negative for pages)
	Synchronous SynchronousMode // synchronous pragma
	Cache       CacheMode       // shared, private
}

// NewDefaultOptions creates SQLiteOptions with recommended defaults
func NewDefaultOptions(path string) SQLiteOptions {
	return SQLiteOptions{
		Path:        path,
		Mode:        "rwc",
		Journal:     JournalWAL, // WAL is recommended for better concurrency
		ForeignKeys: true,
		BusyTimeout: 5000,
		CacheSize:   2000,
		Synchronous: SynchronousNormal,
		Cache:       CachePrivate,
	}
}

// NewMemoryOptions creates options for an in-memory database, used by tests.
func NewMemoryOptions() SQLiteOptions {
	return SQLiteOptions{
		Path:        ":memory:",
		Mode:        "memory",
		ForeignKeys: true,
		BusyTimeout: 5000,
	}
}
