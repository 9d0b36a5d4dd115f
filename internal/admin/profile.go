package admin

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"nestadmin/internal/api"
)

// PasswordChange is the body of a password change.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Profile fetches the signed-in operator's profile.
func (s *Service) Profile(ctx context.Context) (map[string]any, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, api.MustPath(api.EndpointProfile), nil, &raw); err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

// UpdateProfile stores changes and returns the updated profile.
func (s *Service) UpdateProfile(ctx context.Context, changes map[string]any) (map[string]any, error) {
	if len(changes) == 0 {
		return nil, errors.New("no profile changes given")
	}
	var raw json.RawMessage
	if err := s.client.Put(ctx, api.MustPath(api.EndpointProfile), changes, &raw); err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

// ChangePassword replaces the operator's password.
func (s *Service) ChangePassword(ctx context.Context, change PasswordChange) error {
	if strings.TrimSpace(change.CurrentPassword) == "" || strings.TrimSpace(change.NewPassword) == "" {
		return &api.Error{
			Kind:    api.KindValidation,
			Message: "Current and new password are required",
			Fields: map[string]string{
				"currentPassword": "required",
				"newPassword":     "required",
			},
		}
	}
	return s.client.Put(ctx, api.MustPath(api.EndpointChangePassword), change, nil)
}

// UserThemes lists the themes available to the operator.
func (s *Service) UserThemes(ctx context.Context) ([]Theme, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, api.MustPath(api.EndpointUserThemes), nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodeList[Theme](raw, "themes")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func decodeProfile(raw json.RawMessage) (map[string]any, error) {
	profile := map[string]any{}
	if err := unwrapInto(raw, []string{"user", "profile", "data"}, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}
