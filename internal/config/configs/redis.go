package configs

import "net/url"

// Redis configures the optional stream publisher. When Enabled is false no
// connection is made and events are only served from the ledger outbox.
type Redis struct {
	Enabled bool `env:"ENABLED" envDefault:"false"`
	// Addr is a redis:// URL accepted by redis.ParseURL.
	Addr url.URL `env:"ADDRESS" envDefault:"redis://localhost:6379/0"`
	// Stream is the stream key events are appended to.
	Stream string `env:"STREAM" envDefault:"vaquinha:events"`
	// MaxLen approximately caps the stream length. Zero keeps everything.
	MaxLen int64 `env:"MAX_LEN" envDefault:"100000"`
}
