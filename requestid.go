package relay

import (
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// IDGenerator produces the `request_id`/`trace_id` reserved dependencies
// (§3, C10) when an application does not install its own hook. Each call
// mixes a process-wide monotonic counter into xxhash, the same fast-hash
// library the teacher uses to auto-derive `ETag` from response bytes in
// `response.go`.
type IDGenerator struct {
	seq    atomic.Uint64
	prefix string
}

// NewIDGenerator returns a generator seeded with prefix (e.g. the app
// name), so IDs from different processes/instances rarely collide even
// though the counter itself restarts at zero.
func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix}
}

// Next returns a new identifier, monotonically distinct within this
// process.
func (g *IDGenerator) Next() string {
	n := g.seq.Add(1)

	h := xxhash.New()
	fmt.Fprintf(h, "%s:%d", g.prefix, n)

	return fmt.Sprintf("%016x", h.Sum64())
}
