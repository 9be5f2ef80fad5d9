// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tipline Contributors

package http

import "errors"

// Sentinel errors used by the transport middleware. Callers can match
// against them with [errors.Is].
var (
	// ErrUnknownTenant is returned by the tenant-resolution middleware when
	// neither the X-Tenant-ID header nor the Host header maps to a
	// configured tenant.
	ErrUnknownTenant = errors.New("unknown tenant")

	// ErrSessionRequired is returned by the role guard when an endpoint
	// demands an authenticated session and none was presented.
	ErrSessionRequired = errors.New("authenticated session required")

	// ErrAnonymousOnly is returned by the role guard when an authenticated
	// caller hits an endpoint reserved for anonymous callers.
	ErrAnonymousOnly = errors.New("endpoint reserved for anonymous callers")

	// ErrForbiddenRole is returned by the role guard when the session's
	// role is not in the endpoint's allowed set.
	ErrForbiddenRole = errors.New("role not allowed for this endpoint")
)
