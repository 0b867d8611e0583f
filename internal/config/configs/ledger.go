package configs

import (
	"fmt"
	"strings"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Ledger selects where campaign state lives and tunes event delivery.
type Ledger struct {
	// Backend is "memory" or "postgres".
	Backend string `env:"BACKEND" envDefault:"postgres"`
	// SubscriberBuffer is the channel capacity of each event subscription.
	SubscriberBuffer int `env:"SUBSCRIBER_BUFFER" envDefault:"64"`
	// SerializationRetries bounds retries of transactions aborted by a
	// serialization failure.
	SerializationRetries int `env:"SERIALIZATION_RETRIES" envDefault:"5"`
}

// BackendName validates and normalises Backend.
func (c Ledger) BackendName() (string, error) {
	switch b := strings.ToLower(strings.TrimSpace(c.Backend)); b {
	case BackendMemory, BackendPostgres:
		return b, nil
	default:
		return "", fmt.Errorf("unknown ledger backend %q", c.Backend)
	}
}
