package driven

// ConfigStore holds flat settings keyed by dotted paths such as "llm.model"
// or "analysis.concurrency".
//
// Typed getters return the zero value when a key is absent or holds another
// type. Numeric getters accept any numeric representation, since TOML
// decodes integers as int64.
type ConfigStore interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64

	// Set stores value under key. File-backed stores persist immediately.
	Set(key string, value any) error

	// Save writes all values to the backing store.
	Save() error

	// Load re-reads values from the backing store, replacing those in memory.
	Load() error

	// Path identifies the backing store, for display.
	Path() string
}
