// Package api holds the named wrappers for every remote PureCerts operation.
// Each wrapper fixes the service and method name and shapes its arguments into the
// payload the remote method expects; none of them carries logic of its own.
package api

import (
	"purecerts-console/internal/rpc"
)

const servicePrefix = "purecerts.v1."

const (
	tokenService       = servicePrefix + "TokenService"
	userService        = servicePrefix + "UserService"
	certificateService = servicePrefix + "CertificateService"
	caService          = servicePrefix + "CAService"
	tenantService      = servicePrefix + "TenantService"
	sessionService     = servicePrefix + "SessionService"
	apiKeyService      = servicePrefix + "APIKeyService"
	billingService     = servicePrefix + "BillingService"
	auditService       = servicePrefix + "AuditService"
	healthService      = servicePrefix + "HealthService"
)

// Client bundles the per-resource services over one dispatcher.
type Client struct {
	Tokens       *TokenService
	Users        *UserService
	Certificates *CertificateService
	CAs          *CAService
	Tenants      *TenantService
	Sessions     *SessionService
	APIKeys      *APIKeyService
	Billing      *BillingService
	Audit        *AuditService
	Health       *HealthService
}

func New(d rpc.Dispatcher) *Client {
	return &Client{
		Tokens:       &TokenService{d: d},
		Users:        &UserService{d: d},
		Certificates: &CertificateService{d: d},
		CAs:          &CAService{d: d},
		Tenants:      &TenantService{d: d},
		Sessions:     &SessionService{d: d},
		APIKeys:      &APIKeyService{d: d},
		Billing:      &BillingService{d: d},
		Audit:        &AuditService{d: d},
		Health:       &HealthService{d: d},
	}
}
