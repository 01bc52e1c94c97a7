package controller

import "time"

// HTTP header names
const (
	HeaderAuthToken   = "X-Auth-Token"
	HeaderRequestID   = "X-Request-ID"
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

// API paths. Tenant-scoped paths take the tenant id via fmt.
const (
	pathLogin   = "/v2.0/api/login"
	pathLogout  = "/v2.0/api/logout"
	pathProfile = "/v2.1/api/profile"
	pathTenant  = "/v2.4/api/tenants/%s"
	pathSites   = "/v4.7/api/tenants/%s/sites"
	pathListing = "/%s/api/tenants/%s/%s"
)

// Circuit breaker settings
const (
	cbName             = "controller"
	cbMaxRequests      = 1
	cbInterval         = 0
	cbTimeout          = 30 * time.Second
	cbFailureThreshold = 3
)
