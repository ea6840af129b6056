// Package idgen generates identifiers for export runs.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator of RFC 9562 version 7 UUIDs. They sort by
// creation time, so the latest run is also the greatest id.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends prefix to every id of gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// RunID is the generator used for export runs: "run_" + UUIDv7.
var RunID = Prefixed("run_", UUIDv7())

// Parse validates a UUID string, with or without a prefix ending in '_',
// and returns it unchanged.
func Parse(id string) (string, error) {
	raw := id
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '_' {
			raw = id[i+1:]
			break
		}
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", fmt.Errorf("idgen: invalid id %q: %w", id, err)
	}
	return id, nil
}
