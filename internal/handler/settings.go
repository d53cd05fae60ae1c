package handler

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/api"
	"purecerts-console/internal/auth"
	"purecerts-console/internal/middleware"
	"purecerts-console/internal/model"
	"purecerts-console/internal/storage"
)

var apiKeyScopes = []string{
	"certificates:read",
	"certificates:write",
	"cas:read",
	"cas:write",
	"users:read",
	"users:write",
}

var (
	errKeyNameRequired = errors.New("key name is required")
	errOrgNameRequired = errors.New("organization name is required")
)

type SettingsHandler struct {
	API     *api.Client
	Session SessionManager
	// Storage supplies the access token whose expiry the security page shows.
	Storage storage.Storage
	Now     func() time.Time
}

func (h *SettingsHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *SettingsHandler) Profile(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	render(c, "profile.html", "Profile", "settings", u)
}

// UpdateProfile saves the names and then refreshes the session's user so the
// navigation shows the new name right away.
func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	u, _ := middleware.CurrentUser(c)
	first := strings.TrimSpace(c.PostForm("first_name"))
	last := strings.TrimSpace(c.PostForm("last_name"))

	if _, err := h.API.Users.UpdateUser(ctx, model.UpdateUserRequest{UserID: u.ID, FirstName: &first, LastName: &last}); err != nil {
		redirectWithError(c, "/settings/profile", err)
		return
	}
	if err := h.Session.RefreshUser(ctx); err != nil {
		log.Printf("handler: refresh user after profile update: %v", err)
	}
	redirectWithNotice(c, "/settings/profile", "Profile updated")
}

type securityData struct {
	TwoFactorEnabled bool
	TokenExpiresAt   *time.Time
	Sessions         []model.LoginSession
}

func (h *SettingsHandler) Security(c *gin.Context) {
	ctx := c.Request.Context()
	u, _ := middleware.CurrentUser(c)

	resp, err := h.API.Sessions.ListSessions(ctx)
	if err != nil {
		renderFetchError(c, "Security", "settings", err)
		return
	}
	data := securityData{TwoFactorEnabled: u.TwoFactorEnabled, Sessions: resp.Sessions}
	data.TokenExpiresAt = h.tokenExpiry(c)
	render(c, "security.html", "Security", "settings", data)
}

func (h *SettingsHandler) tokenExpiry(c *gin.Context) *time.Time {
	if h.Storage == nil {
		return nil
	}
	raw, ok, err := h.Storage.Get(c.Request.Context(), storage.KeyAccessToken)
	if err != nil || !ok {
		return nil
	}
	claims, err := auth.InspectToken(raw)
	if err != nil {
		log.Printf("handler: inspect access token: %v", err)
		return nil
	}
	exp, ok := claims.ExpiresAtTime()
	if !ok {
		return nil
	}
	return &exp
}

func (h *SettingsHandler) RevokeSession(c *gin.Context) {
	if err := h.API.Sessions.RevokeSession(c.Request.Context(), c.Param("id")); err != nil {
		redirectWithError(c, "/settings/security", err)
		return
	}
	redirectWithNotice(c, "/settings/security", "Session revoked")
}

func (h *SettingsHandler) RevokeOtherSessions(c *gin.Context) {
	if err := h.API.Sessions.RevokeAllOtherSessions(c.Request.Context()); err != nil {
		redirectWithError(c, "/settings/security", err)
		return
	}
	redirectWithNotice(c, "/settings/security", "All other sessions signed out")
}

type apiKeysData struct {
	Keys    []model.APIKey
	Scopes  []string
	Created *model.CreatedAPIKey
}

func (h *SettingsHandler) APIKeys(c *gin.Context) {
	h.renderAPIKeys(c, nil)
}

func (h *SettingsHandler) renderAPIKeys(c *gin.Context, created *model.CreatedAPIKey) {
	resp, err := h.API.APIKeys.ListAPIKeys(c.Request.Context())
	if err != nil {
		renderFetchError(c, "API keys", "settings", err)
		return
	}
	c.Header("Cache-Control", "no-store")
	render(c, "api_keys.html", "API keys", "settings", apiKeysData{Keys: resp.APIKeys, Scopes: apiKeyScopes, Created: created})
}

// CreateAPIKey renders the page directly instead of redirecting: the secret is
// returned once and must not travel through a URL.
func (h *SettingsHandler) CreateAPIKey(c *gin.Context) {
	req := model.CreateAPIKeyRequest{
		Name:   strings.TrimSpace(c.PostForm("name")),
		Scopes: c.PostFormArray("scopes"),
	}
	if req.Name == "" {
		redirectWithError(c, "/settings/api-keys", errKeyNameRequired)
		return
	}
	if days := formInt32(c, "expires_days", 0); days > 0 {
		exp := h.now().Add(time.Duration(days) * 24 * time.Hour).UTC()
		req.ExpiresAt = &exp
	}

	created, err := h.API.APIKeys.CreateAPIKey(c.Request.Context(), req)
	if err != nil {
		redirectWithError(c, "/settings/api-keys", err)
		return
	}
	h.renderAPIKeys(c, &created)
}

func (h *SettingsHandler) RevokeAPIKey(c *gin.Context) {
	if err := h.API.APIKeys.RevokeAPIKey(c.Request.Context(), c.Param("id")); err != nil {
		redirectWithError(c, "/settings/api-keys", err)
		return
	}
	redirectWithNotice(c, "/settings/api-keys", "API key revoked")
}

type billingData struct {
	Subscription *model.Subscription
	Usage        *model.Usage
	Plans        []model.Plan
	Invoices     []model.Invoice
}

func (h *SettingsHandler) Billing(c *gin.Context) {
	ctx := c.Request.Context()

	sub, err := h.API.Billing.GetSubscription(ctx)
	if err != nil {
		renderFetchError(c, "Billing", "settings", err)
		return
	}
	usage, err := h.API.Billing.GetUsage(ctx)
	if err != nil {
		renderFetchError(c, "Billing", "settings", err)
		return
	}
	plans, err := h.API.Billing.ListPlans(ctx)
	if err != nil {
		renderFetchError(c, "Billing", "settings", err)
		return
	}
	invoices, err := h.API.Billing.ListInvoices(ctx)
	if err != nil {
		renderFetchError(c, "Billing", "settings", err)
		return
	}
	render(c, "billing.html", "Billing", "settings", billingData{
		Subscription: &sub,
		Usage:        &usage,
		Plans:        plans.Plans,
		Invoices:     invoices.Invoices,
	})
}

func (h *SettingsHandler) Organization(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	tenant, err := h.API.Tenants.GetTenant(c.Request.Context(), u.TenantID)
	if err != nil {
		renderFetchError(c, "Organization", "settings", err)
		return
	}
	render(c, "organization.html", "Organization", "settings", tenant)
}

func (h *SettingsHandler) UpdateOrganization(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		redirectWithError(c, "/settings/organization", errOrgNameRequired)
		return
	}
	req := model.UpdateTenantRequest{
		TenantID: c.PostForm("tenant_id"),
		Name:     &name,
		Settings: &model.TenantSettings{
			DefaultValidityDays: formInt32(c, "default_validity_days", 0),
			ExpiryWarningDays:   formInt32(c, "expiry_warning_days", 0),
			Require2FA:          c.PostForm("require_2fa") == "on",
		},
	}
	if req.TenantID == "" {
		u, _ := middleware.CurrentUser(c)
		req.TenantID = u.TenantID
	}

	if _, err := h.API.Tenants.UpdateTenant(c.Request.Context(), req); err != nil {
		redirectWithError(c, "/settings/organization", err)
		return
	}
	redirectWithNotice(c, "/settings/organization", "Organization updated")
}
