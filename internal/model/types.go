package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

type Role string

const (
	RoleUnspecified Role = "ROLE_UNSPECIFIED"
	RoleOwner       Role = "ROLE_OWNER"
	RoleAdmin       Role = "ROLE_ADMIN"
	RoleOperator    Role = "ROLE_OPERATOR"
	RoleViewer      Role = "ROLE_VIEWER"
)

var rolesByNumber = []Role{RoleUnspecified, RoleOwner, RoleAdmin, RoleOperator, RoleViewer}

// ParseRole accepts the enum name ("ROLE_ADMIN"), the short name ("admin") or the
// enum number ("2"). Anything else is RoleUnspecified.
func ParseRole(raw string) Role {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n < len(rolesByNumber) {
			return rolesByNumber[n]
		}
		return RoleUnspecified
	}
	if !strings.HasPrefix(s, "ROLE_") {
		s = "ROLE_" + s
	}
	for _, r := range rolesByNumber {
		if string(r) == s {
			return r
		}
	}
	return RoleUnspecified
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		s = strconv.Itoa(n)
	}
	*r = ParseRole(s)
	return nil
}

// Label is the short display name, e.g. "admin".
func (r Role) Label() string {
	if r == "" {
		return "unspecified"
	}
	return strings.ToLower(strings.TrimPrefix(string(r), "ROLE_"))
}

type User struct {
	ID               string     `json:"userId"`
	TenantID         string     `json:"tenantId,omitempty"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName,omitempty"`
	LastName         string     `json:"lastName,omitempty"`
	Role             Role       `json:"role,omitempty"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled,omitempty"`
	Active           bool       `json:"active,omitempty"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
}

func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

type GrantType string

const (
	GrantTypePassword     GrantType = "GRANT_TYPE_PASSWORD"
	GrantTypeRefreshToken GrantType = "GRANT_TYPE_REFRESH_TOKEN"
)

// Int64String decodes JSON numbers and the quoted form proto3 JSON uses for int64.
type Int64String int64

func (n *Int64String) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*n = Int64String(v)
	return nil
}

type TokenResponse struct {
	AccessToken  string      `json:"accessToken"`
	TokenType    string      `json:"tokenType,omitempty"`
	ExpiresIn    Int64String `json:"expiresIn,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         *User       `json:"user,omitempty"`
	MFARequired  bool        `json:"mfaRequired,omitempty"`
	MFAToken     string      `json:"mfaToken,omitempty"`
}

// Token converts the bundle into an oauth2 token; expiry is relative to now.
func (r TokenResponse) Token(now time.Time) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
	}
	if r.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return tok
}

type Pagination struct {
	Total      int32  `json:"total,omitempty"`
	Limit      int32  `json:"limit,omitempty"`
	Offset     int32  `json:"offset,omitempty"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type ListUsersRequest struct {
	Limit  int32  `json:"limit,omitempty"`
	Offset int32  `json:"offset,omitempty"`
	Search string `json:"search,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

type ListUsersResponse struct {
	Users      []User      `json:"users"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type CreateUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	Password  string `json:"password"`
}

type UpdateUserRequest struct {
	UserID    string  `json:"userId"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Role      *Role   `json:"role,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

type Invite struct {
	InviteID string `json:"inviteId"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

type KeyAlgorithm string

const (
	KeyAlgorithmRSA     KeyAlgorithm = "KEY_ALGORITHM_RSA"
	KeyAlgorithmECDSA   KeyAlgorithm = "KEY_ALGORITHM_ECDSA"
	KeyAlgorithmEd25519 KeyAlgorithm = "KEY_ALGORITHM_ED25519"
)

type Subject struct {
	CommonName         string `json:"commonName,omitempty"`
	Organization       string `json:"organization,omitempty"`
	OrganizationalUnit string `json:"organizationalUnit,omitempty"`
	Country            string `json:"country,omitempty"`
	State              string `json:"state,omitempty"`
	Locality           string `json:"locality,omitempty"`
}

type Certificate struct {
	CertID             string       `json:"certId"`
	CAID               string       `json:"caId,omitempty"`
	CommonName         string       `json:"commonName"`
	SAN                []string     `json:"san,omitempty"`
	Subject            *Subject     `json:"subject,omitempty"`
	IssuerCN           string       `json:"issuerCn,omitempty"`
	SerialNumber       string       `json:"serialNumber,omitempty"`
	Status             string       `json:"status,omitempty"`
	KeyAlgorithm       KeyAlgorithm `json:"keyAlgorithm,omitempty"`
	KeySize            int32        `json:"keySize,omitempty"`
	SignatureAlgorithm string       `json:"signatureAlgorithm,omitempty"`
	FingerprintSHA     string       `json:"fingerprintSha,omitempty"`
	NotBefore          *time.Time   `json:"notBefore,omitempty"`
	NotAfter           *time.Time   `json:"notAfter,omitempty"`
	DaysRemaining      int32        `json:"daysRemaining,omitempty"`
	Tags               []string     `json:"tags,omitempty"`
	CreatedBy          string       `json:"createdBy,omitempty"`
	CreatedAt          *time.Time   `json:"createdAt,omitempty"`
}

type ListCertificatesRequest struct {
	Limit  int32  `json:"limit,omitempty"`
	Offset int32  `json:"offset,omitempty"`
	CAID   string `json:"caId,omitempty"`
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

type CertificateSummary struct {
	Total        int32 `json:"total,omitempty"`
	Active       int32 `json:"active,omitempty"`
	ExpiringSoon int32 `json:"expiring,omitempty"`
	Expired      int32 `json:"expired,omitempty"`
	Revoked      int32 `json:"revoked,omitempty"`
}

type ListCertificatesResponse struct {
	Certificates []Certificate       `json:"certificates"`
	Pagination   *Pagination         `json:"pagination,omitempty"`
	Summary      *CertificateSummary `json:"summary,omitempty"`
}

type IssueCertificateRequest struct {
	CAID         string       `json:"caId"`
	CommonName   string       `json:"commonName"`
	SAN          []string     `json:"san,omitempty"`
	ValidityDays int32        `json:"validityDays,omitempty"`
	KeyAlgorithm KeyAlgorithm `json:"keyAlgorithm,omitempty"`
	KeySize      int32        `json:"keySize,omitempty"`
}

type CertificateDownload struct {
	Data     string `json:"data"`
	Filename string `json:"filename"`
}

type CAStats struct {
	CertificatesIssued  int32 `json:"certificatesIssued,omitempty"`
	CertificatesActive  int32 `json:"certificatesActive,omitempty"`
	CertificatesExpired int32 `json:"certificatesExpired,omitempty"`
	CertificatesRevoked int32 `json:"certificatesRevoked,omitempty"`
}

type CA struct {
	CAID               string       `json:"caId"`
	Name               string       `json:"name"`
	Type               string       `json:"type,omitempty"`
	Status             string       `json:"status,omitempty"`
	Subject            *Subject     `json:"subject,omitempty"`
	KeyAlgorithm       KeyAlgorithm `json:"keyAlgorithm,omitempty"`
	KeySize            int32        `json:"keySize,omitempty"`
	SignatureAlgorithm string       `json:"signatureAlgorithm,omitempty"`
	ParentCAID         string       `json:"parentCaId,omitempty"`
	NotBefore          *time.Time   `json:"notBefore,omitempty"`
	NotAfter           *time.Time   `json:"notAfter,omitempty"`
	Stats              *CAStats     `json:"stats,omitempty"`
}

type ListCAsRequest struct {
	Limit  int32  `json:"limit,omitempty"`
	Offset int32  `json:"offset,omitempty"`
	Type   string `json:"type,omitempty"`
}

type ListCAsResponse struct {
	CAs        []CA        `json:"cas"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type CreateCARequest struct {
	Name          string       `json:"name"`
	Type          string       `json:"type"`
	Subject       Subject      `json:"subject"`
	KeyAlgorithm  KeyAlgorithm `json:"keyAlgorithm"`
	KeySize       int32        `json:"keySize"`
	ValidityYears int32        `json:"validityYears"`
}

type UpdateCARequest struct {
	CAID string  `json:"caId"`
	Name *string `json:"name,omitempty"`
}

type TenantSettings struct {
	DefaultValidityDays int32 `json:"defaultValidityDays,omitempty"`
	ExpiryWarningDays   int32 `json:"expiryWarningDays,omitempty"`
	Require2FA          bool  `json:"require2fa,omitempty"`
}

type TenantLimits struct {
	MaxCertificates int32 `json:"maxCertificates,omitempty"`
	MaxCAs          int32 `json:"maxCas,omitempty"`
	MaxUsers        int32 `json:"maxUsers,omitempty"`
}

type Tenant struct {
	TenantID string          `json:"tenantId"`
	Name     string          `json:"name"`
	Settings *TenantSettings `json:"settings,omitempty"`
	Limits   *TenantLimits   `json:"limits,omitempty"`
}

type UpdateTenantRequest struct {
	TenantID string          `json:"tenantId"`
	Name     *string         `json:"name,omitempty"`
	Settings *TenantSettings `json:"settings,omitempty"`
}

// LoginSession is a remote sign-in session as listed by SessionService.
type LoginSession struct {
	SessionID    string     `json:"sessionId"`
	Browser      string     `json:"browser,omitempty"`
	OS           string     `json:"os,omitempty"`
	DeviceType   string     `json:"deviceType,omitempty"`
	IPAddress    string     `json:"ipAddress,omitempty"`
	Location     string     `json:"location,omitempty"`
	Current      bool       `json:"current,omitempty"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
}

type ListSessionsResponse struct {
	Sessions []LoginSession `json:"sessions"`
}

type APIKey struct {
	KeyID      string     `json:"keyId"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"keyPrefix,omitempty"`
	Scopes     []string   `json:"scopes,omitempty"`
	Status     string     `json:"status,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

type CreateAPIKeyRequest struct {
	Name      string     `json:"name"`
	Scopes    []string   `json:"scopes"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// CreatedAPIKey carries the secret, which the service returns only once.
type CreatedAPIKey struct {
	APIKey
	Secret string `json:"secret"`
}

type ListAPIKeysResponse struct {
	APIKeys []APIKey `json:"apiKeys"`
}

type Subscription struct {
	PlanID           string     `json:"planId,omitempty"`
	PlanName         string     `json:"planName,omitempty"`
	Status           string     `json:"status,omitempty"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd,omitempty"`
}

type Usage struct {
	CertificatesCount int32 `json:"certificatesCount"`
	CertificatesLimit int32 `json:"certificatesLimit"`
	CAsCount          int32 `json:"casCount"`
	CAsLimit          int32 `json:"casLimit"`
	UsersCount        int32 `json:"usersCount"`
	UsersLimit        int32 `json:"usersLimit"`
	APIKeysCount      int32 `json:"apiKeysCount"`
	APIKeysLimit      int32 `json:"apiKeysLimit"`
}

type Plan struct {
	PlanID       string      `json:"planId"`
	Name         string      `json:"name"`
	PriceMonthly Int64String `json:"priceMonthly,omitempty"`
	Currency     string      `json:"currency,omitempty"`
}

type ListPlansResponse struct {
	Plans []Plan `json:"plans"`
}

type Invoice struct {
	InvoiceID string      `json:"invoiceId"`
	Number    string      `json:"number,omitempty"`
	Status    string      `json:"status,omitempty"`
	Amount    Int64String `json:"amount,omitempty"`
	Currency  string      `json:"currency,omitempty"`
	IssuedAt  *time.Time  `json:"issuedAt,omitempty"`
}

type ListInvoicesResponse struct {
	Invoices []Invoice `json:"invoices"`
}

type AuditLog struct {
	LogID        string            `json:"logId"`
	Action       string            `json:"action"`
	ResourceType string            `json:"resourceType,omitempty"`
	ResourceID   string            `json:"resourceId,omitempty"`
	UserID       string            `json:"userId,omitempty"`
	UserEmail    string            `json:"userEmail,omitempty"`
	IPAddress    string            `json:"ipAddress,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	Timestamp    *time.Time        `json:"timestamp,omitempty"`
}

type ListAuditLogsRequest struct {
	Limit        int32  `json:"limit,omitempty"`
	Offset       int32  `json:"offset,omitempty"`
	Action       string `json:"action,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	UserID       string `json:"userId,omitempty"`
}

type ListAuditLogsResponse struct {
	Logs       []AuditLog  `json:"logs"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
