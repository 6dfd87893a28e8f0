// Package muid generates the record identifiers used across the module:
// millisecond-sortable, URL-safe, collision-resistant via a UUID suffix.
package muid

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns a fresh identifier. The leading base-36 timestamp keeps ids
// roughly insertion-ordered in indexes; the UUID suffix guarantees uniqueness
// across processes.
func New() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return ts + "-" + suffix
}
