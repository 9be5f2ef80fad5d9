// Package tenant keeps an in-memory view of tenant configuration so that
// request middleware can resolve hostnames and read per-tenant limits
// without a database round trip.
package tenant

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tiplinehq/tipline/models"
)

// ErrTenantNotFound is returned when no active tenant matches the
// requested id or hostname.
var ErrTenantNotFound = errors.New("tenant not found")

//go:generate mockgen -source=cache.go -destination=../mock/tenant_source_mock.go -package=mock

// Source loads tenant rows, typically backed by the tenants table.
type Source interface {
	ListTenants(ctx context.Context) ([]models.Tenant, error)
}

// Cache is a read-mostly snapshot of all tenants, refreshed explicitly
// via Reload whenever tenant configuration changes.
type Cache struct {
	source Source

	mu         sync.RWMutex
	byID       map[int64]models.Tenant
	byHostname map[string]models.Tenant
}

// NewCache builds a cache and performs the initial load.
func NewCache(ctx context.Context, source Source) (*Cache, error) {
	c := &Cache{source: source}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload replaces the snapshot with the current contents of the source.
func (c *Cache) Reload(ctx context.Context) error {
	tenants, err := c.source.ListTenants(ctx)
	if err != nil {
		return err
	}

	byID := make(map[int64]models.Tenant, len(tenants))
	byHostname := make(map[string]models.Tenant, len(tenants))
	for _, t := range tenants {
		byID[t.ID] = t
		if t.Hostname != "" {
			byHostname[strings.ToLower(t.Hostname)] = t
		}
	}

	c.mu.Lock()
	c.byID = byID
	c.byHostname = byHostname
	c.mu.Unlock()

	return nil
}

// Get returns the tenant with the given id.
func (c *Cache) Get(id int64) (models.Tenant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.byID[id]
	if !ok {
		return models.Tenant{}, ErrTenantNotFound
	}
	return t, nil
}

// ByHostname returns the tenant serving the given hostname. The port, if
// present, is ignored.
func (c *Cache) ByHostname(host string) (models.Tenant, error) {
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.byHostname[strings.ToLower(host)]
	if !ok {
		return models.Tenant{}, ErrTenantNotFound
	}
	return t, nil
}

// Root returns the root tenant. The root tenant always exists once the
// migrations have run.
func (c *Cache) Root() (models.Tenant, error) {
	return c.Get(models.RootTenantID)
}
