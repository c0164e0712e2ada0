// Package snapshot archives the raw catalog payload fetched by each
// sync cycle so a bad sync can be diagnosed against the exact bytes
// the upstream served. Implementations live in subpackages (gcs,
// local).
package snapshot

import (
	"context"
	"time"
)

// Archive stores one payload per successful fetch and returns a URI
// locating the stored copy.
type Archive interface {
	Put(ctx context.Context, fetchedAt time.Time, payload []byte) (string, error)
}

// Noop discards payloads; it stands in when archiving is disabled.
type Noop struct{}

// Put discards the payload.
func (Noop) Put(context.Context, time.Time, []byte) (string, error) {
	return "", nil
}

// Key derives the object key for a payload fetched at the given time.
func Key(prefix string, fetchedAt time.Time) string {
	name := fetchedAt.UTC().Format("20060102T150405Z") + ".json"
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
