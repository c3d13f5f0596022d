// README: Shared identifier type used across modules.
package types

import (
	"crypto/rand"
	"encoding/hex"
)

// ID is a generic identifier: vehicle id, request id, run id, ...
type ID string

// NewID returns a random hex-encoded identifier, used when a caller does
// not supply its own id (e.g. auto-generated vehicle ids in a scenario).
func NewID() ID {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return ID(hex.EncodeToString(b))
}

// Point is a WGS84-style coordinate, used at the boundary with Redis GEO
// and Google Maps; the simulation core never operates on it directly,
// only on the generic Loc type parameter.
type Point struct {
	Lat float64
	Lng float64
}
