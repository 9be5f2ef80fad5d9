// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// random token generation, HTTP response writing and other common
// operations.
package utils

import (
	"context"

	"github.com/tiplinehq/tipline/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// TenantIDCtxKey is the key used to store the resolved tenant identifier
// in the request context. Set by the tenant-resolution middleware before
// any handler runs.
var TenantIDCtxKey = contextKey("tenantID")

// TenantCtxKey is the key used to store the resolved tenant record in the
// request context. Set together with TenantIDCtxKey.
var TenantCtxKey = contextKey("tenant")

// SessionCtxKey is the key used to store the authenticated session in the
// request context. Absent for anonymous requests.
var SessionCtxKey = contextKey("session")

// GetTenantIDFromContext retrieves the tenant identifier from the context.
//
// Returns the tenant ID of type int64 and an ok flag:
//   - ok == true  — value is found and has the correct int64 type
//   - ok == false — value is missing or has an unexpected type
func GetTenantIDFromContext(ctx context.Context) (int64, bool) {
	tid, ok := ctx.Value(TenantIDCtxKey).(int64)
	return tid, ok
}

// GetTenantFromContext retrieves the resolved tenant from the context.
//
// Returns the tenant and an ok flag:
//   - ok == true  — value is found and has the correct type
//   - ok == false — value is missing or has an unexpected type
func GetTenantFromContext(ctx context.Context) (models.Tenant, bool) {
	tenant, ok := ctx.Value(TenantCtxKey).(models.Tenant)
	return tenant, ok
}

// GetSessionFromContext retrieves the authenticated session from the
// context. Returns nil when the request is anonymous.
func GetSessionFromContext(ctx context.Context) *models.Session {
	session, ok := ctx.Value(SessionCtxKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}
