// ABOUTME: ULID generation helper using crypto/rand entropy.
// ABOUTME: Shared by the event log and the run history so IDs sort by creation time.
package sorting

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID using crypto/rand entropy.
func NewULID() ulid.ULID {
	return ulid.MustNew(ulid.Now(), rand.Reader)
}
