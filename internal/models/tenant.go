package models

import "time"

// Tenant owns one Business Central integration: an Azure AD app registration
// (client credentials) scoped to one BC environment.
type Tenant struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	BCTenantID         string    `json:"bc_tenant_id"` // Azure AD directory ID
	BCClientID         string    `json:"bc_client_id"`
	BCClientSecret     string    `json:"-"` // never serialized
	BCEnvironment      string    `json:"bc_environment"`
	IntegrationEnabled bool      `json:"integration_enabled"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HasCredentials reports whether the tenant is configured for the OAuth
// client-credentials exchange.
func (t *Tenant) HasCredentials() bool {
	return t.BCTenantID != "" && t.BCClientID != "" && t.BCClientSecret != ""
}
