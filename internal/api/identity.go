package api

import (
	"context"

	"purecerts-console/internal/model"
	"purecerts-console/internal/rpc"
)

type TokenService struct{ d rpc.Dispatcher }

type createTokenPayload struct {
	GrantType model.GrantType `json:"grant_type"`
	Username  string          `json:"username"`
	Password  string          `json:"password"`
}

func (s *TokenService) CreateToken(ctx context.Context, grant model.GrantType, username, password string) (model.TokenResponse, error) {
	return rpc.Call[model.TokenResponse](ctx, s.d, tokenService, "CreateToken", createTokenPayload{
		GrantType: grant,
		Username:  username,
		Password:  password,
	})
}

func (s *TokenService) RefreshToken(ctx context.Context, refreshToken string) (model.TokenResponse, error) {
	return rpc.Call[model.TokenResponse](ctx, s.d, tokenService, "RefreshToken", map[string]string{"refresh_token": refreshToken})
}

func (s *TokenService) RevokeToken(ctx context.Context, token string) error {
	return s.d.Do(ctx, tokenService, "RevokeToken", map[string]string{"token": token}, nil)
}

type UserService struct{ d rpc.Dispatcher }

// GetCurrentUser is the "who am I" call.
func (s *UserService) GetCurrentUser(ctx context.Context) (model.User, error) {
	return rpc.Call[model.User](ctx, s.d, userService, "GetCurrentUser", nil)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (model.User, error) {
	return rpc.Call[model.User](ctx, s.d, userService, "GetUser", map[string]string{"user_id": userID})
}

func (s *UserService) ListUsers(ctx context.Context, req model.ListUsersRequest) (model.ListUsersResponse, error) {
	return rpc.Call[model.ListUsersResponse](ctx, s.d, userService, "ListUsers", req)
}

func (s *UserService) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	return rpc.Call[model.User](ctx, s.d, userService, "CreateUser", req)
}

func (s *UserService) UpdateUser(ctx context.Context, req model.UpdateUserRequest) (model.User, error) {
	return rpc.Call[model.User](ctx, s.d, userService, "UpdateUser", req)
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return s.d.Do(ctx, userService, "DeleteUser", map[string]string{"user_id": userID}, nil)
}

type inviteUserPayload struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func (s *UserService) InviteUser(ctx context.Context, email string, role model.Role) (model.Invite, error) {
	return rpc.Call[model.Invite](ctx, s.d, userService, "InviteUser", inviteUserPayload{Email: email, Role: role})
}

type TenantService struct{ d rpc.Dispatcher }

type getTenantPayload struct {
	TenantID string `json:"tenant_id,omitempty"`
}

// GetTenant with an empty id returns the caller's own tenant.
func (s *TenantService) GetTenant(ctx context.Context, tenantID string) (model.Tenant, error) {
	return rpc.Call[model.Tenant](ctx, s.d, tenantService, "GetTenant", getTenantPayload{TenantID: tenantID})
}

func (s *TenantService) UpdateTenant(ctx context.Context, req model.UpdateTenantRequest) (model.Tenant, error) {
	return rpc.Call[model.Tenant](ctx, s.d, tenantService, "UpdateTenant", req)
}

type SessionService struct{ d rpc.Dispatcher }

func (s *SessionService) ListSessions(ctx context.Context) (model.ListSessionsResponse, error) {
	return rpc.Call[model.ListSessionsResponse](ctx, s.d, sessionService, "ListSessions", nil)
}

func (s *SessionService) RevokeSession(ctx context.Context, sessionID string) error {
	return s.d.Do(ctx, sessionService, "RevokeSession", map[string]string{"session_id": sessionID}, nil)
}

func (s *SessionService) RevokeAllOtherSessions(ctx context.Context) error {
	return s.d.Do(ctx, sessionService, "RevokeAllOtherSessions", nil, nil)
}

type APIKeyService struct{ d rpc.Dispatcher }

func (s *APIKeyService) ListAPIKeys(ctx context.Context) (model.ListAPIKeysResponse, error) {
	return rpc.Call[model.ListAPIKeysResponse](ctx, s.d, apiKeyService, "ListAPIKeys", nil)
}

func (s *APIKeyService) CreateAPIKey(ctx context.Context, req model.CreateAPIKeyRequest) (model.CreatedAPIKey, error) {
	if req.Scopes == nil {
		req.Scopes = []string{}
	}
	return rpc.Call[model.CreatedAPIKey](ctx, s.d, apiKeyService, "CreateAPIKey", req)
}

func (s *APIKeyService) RevokeAPIKey(ctx context.Context, keyID string) error {
	return s.d.Do(ctx, apiKeyService, "RevokeAPIKey", map[string]string{"key_id": keyID}, nil)
}
