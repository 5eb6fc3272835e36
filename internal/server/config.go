package server

// Config holds service wiring for the API server.
type Config struct {
	// UpstreamURL is the base URL of the legacy administrative backend.
	UpstreamURL string
	// UpstreamToken optionally authenticates against the backend.
	UpstreamToken string
	// RedisDSN enables the Redis-backed schema cache, config persistence
	// and event DLQ when set.
	RedisDSN string
	// PolicyPath points at the widget policy file; empty keeps the
	// compiled-in defaults.
	PolicyPath string
	// EventsConfig is the path of the events sink configuration.
	EventsConfig string
	// ConfigUser scopes the persisted config cache.
	ConfigUser string
}
