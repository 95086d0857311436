package payments

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fourgetech/payportal/internal/bankapi"
)

// TransactionCache holds recently fetched transaction lists per customer. The list
// is treated as an explicit cache: a successful submission invalidates the entry,
// so the next dashboard visit re-fetches instead of showing an implicitly stale
// view. Nothing updates the list optimistically.
type TransactionCache struct {
	c *gocache.Cache
}

// NewTransactionCache builds a cache with the given entry TTL. Expired entries are
// purged at twice the TTL.
func NewTransactionCache(ttl time.Duration) *TransactionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TransactionCache{c: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached list for the customer, if present and fresh.
func (tc *TransactionCache) Get(customerID string) ([]bankapi.Transaction, bool) {
	v, ok := tc.c.Get(customerID)
	if !ok {
		return nil, false
	}
	txs, ok := v.([]bankapi.Transaction)
	return txs, ok
}

// Put stores the customer's transaction list with the default TTL.
func (tc *TransactionCache) Put(customerID string, txs []bankapi.Transaction) {
	tc.c.Set(customerID, txs, gocache.DefaultExpiration)
}

// Invalidate drops the customer's entry.
func (tc *TransactionCache) Invalidate(customerID string) {
	tc.c.Delete(customerID)
}
