package util

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"
)

// NoCode is the sentinel some sources use for rows without a product code.
const NoCode = "SIN CÓDIGO"

// CodeGenerator hands out INT-<6 timestamp digits><3 random digits> codes
// for candidates that arrive without one. A generator never repeats a code
// within its own lifetime; two generations in the same millisecond re-roll
// instead of colliding.
type CodeGenerator struct {
	mu   sync.Mutex
	rand *rand.Rand
	seen map[string]struct{}
	now  func() time.Time
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		seen: map[string]struct{}{},
		now:  time.Now,
	}
}

func (g *CodeGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		millis := strconv.FormatInt(g.now().UnixMilli(), 10)
		stamp := millis[len(millis)-6:]
		code := fmt.Sprintf("INT-%s%03d", stamp, g.rand.Intn(1000))
		if _, dup := g.seen[code]; dup {
			continue
		}
		g.seen[code] = struct{}{}
		return code
	}
}
