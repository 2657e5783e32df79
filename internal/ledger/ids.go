package ledger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out transaction identifiers of the form
// TXN-<unix millis>-<6 hex chars>. The millisecond part never repeats or goes
// backwards within a process; the random suffix makes cross-process
// collisions unlikely but not impossible.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("TXN-%d-%s", ms, suffix)
}

// newDocumentID returns an opaque primary key for a stored document.
func newDocumentID() string {
	return uuid.NewString()
}
