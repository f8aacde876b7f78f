package service

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// InvoiceNumberGenerator proposes a default invoice number for a new draft.
type InvoiceNumberGenerator interface {
	Next(now time.Time) string
}

// RandomInvoiceNumbers yields INV-YYYYMMDD-NNN with a random 3-digit suffix.
// Collisions are possible; the backend owns uniqueness.
type RandomInvoiceNumbers struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomInvoiceNumbers seeds a generator; a nil source uses a time-based seed.
func NewRandomInvoiceNumbers(src rand.Source) *RandomInvoiceNumbers {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1)
	}
	return &RandomInvoiceNumbers{rng: rand.New(src)}
}

func (g *RandomInvoiceNumbers) Next(now time.Time) string {
	g.mu.Lock()
	suffix := g.rng.IntN(1000)
	g.mu.Unlock()
	return fmt.Sprintf("INV-%s-%03d", now.Format("20060102"), suffix)
}
