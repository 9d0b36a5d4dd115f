package admin

import (
	"context"
	"strings"

	"nestadmin/internal/api"
)

// Registration is the body of an account sign-up.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. The response token is not stored; callers
// log in afterwards.
func (s *Service) Register(ctx context.Context, reg Registration) error {
	fields := map[string]string{}
	if strings.TrimSpace(reg.Email) == "" {
		fields["email"] = "required"
	}
	if reg.Password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		return &api.Error{Kind: api.KindValidation, Message: "Email and password are required", Fields: fields}
	}
	return s.client.Post(ctx, api.MustPath(api.EndpointRegister), reg, nil, api.BypassAuthRedirect())
}

// ForgotPassword asks the backend to email a reset link.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &api.Error{Kind: api.KindValidation, Message: "Email is required", Fields: map[string]string{"email": "required"}}
	}
	body := map[string]string{"email": email}
	return s.client.Post(ctx, api.MustPath(api.EndpointForgotPassword), body, nil, api.BypassAuthRedirect())
}

// ResetPassword sets a new password using a reset token.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" || password == "" {
		return &api.Error{Kind: api.KindValidation, Message: "Token and password are required"}
	}
	body := map[string]string{"token": token, "password": password}
	return s.client.Post(ctx, api.MustPath(api.EndpointResetPassword), body, nil, api.BypassAuthRedirect())
}

// VerifyEmail confirms an address using the emailed token.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return &api.Error{Kind: api.KindValidation, Message: "Token is required"}
	}
	body := map[string]string{"token": token}
	return s.client.Post(ctx, api.MustPath(api.EndpointVerifyEmail), body, nil, api.BypassAuthRedirect())
}
