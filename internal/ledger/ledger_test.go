package ledger

import (
	"sync"
	"testing"

	"sjsage522/partwatch/internal/crawler"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func offer(identifier, url, price string) crawler.Offer {
	return crawler.Offer{
		Title:      "Caliper",
		Price:      decimal.RequireFromString(price),
		URL:        url,
		Identifier: identifier,
	}
}

func TestKeyOf(t *testing.T) {
	a := offer("X", "u1", "15")
	b := offer("X", "u1", "15.00")
	b.Title = "A different title"

	assert.Equal(t, DedupKey("X|u1|15"), KeyOf(a))
	assert.Equal(t, KeyOf(a), KeyOf(b))

	assert.NotEqual(t, KeyOf(a), KeyOf(offer("X", "u1", "15.01")))
	assert.NotEqual(t, KeyOf(a), KeyOf(offer("X", "u2", "15")))
	assert.NotEqual(t, KeyOf(a), KeyOf(offer("Y", "u1", "15")))
}

func TestLedgerClaim(t *testing.T) {
	l := New()
	key := KeyOf(offer("X", "u1", "15"))

	assert.False(t, l.Contains(key))
	assert.True(t, l.Claim(key))
	assert.True(t, l.Contains(key))
	assert.False(t, l.Claim(key))
	assert.Equal(t, 1, l.Len())
}

func TestLedgerClaimIsExclusive(t *testing.T) {
	l := New()
	key := KeyOf(offer("X", "u1", "15"))

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Claim(key) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, l.Len())
}
