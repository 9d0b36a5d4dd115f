package admin

import (
	"context"
	"encoding/json"

	"nestadmin/internal/api"
)

// Notifications lists operator notifications.
func (s *Service) Notifications(ctx context.Context, params ListParams) (Page[Notification], error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, api.MustPath(api.EndpointNotifications), params.Query(), &raw); err != nil {
		return Page[Notification]{}, err
	}
	return decodeList[Notification](raw, "notifications")
}

// MarkNotificationRead marks one notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	path, err := api.NotificationReadPath(id)
	if err != nil {
		return err
	}
	return s.client.Put(ctx, path, nil, nil)
}

// MarkAllNotificationsRead marks every notification as read.
func (s *Service) MarkAllNotificationsRead(ctx context.Context) error {
	return s.client.Put(ctx, api.MustPath(api.EndpointNotificationsReadAll), nil, nil)
}

// DeleteNotification removes one notification.
func (s *Service) DeleteNotification(ctx context.Context, id string) error {
	path, err := api.Path(api.EndpointNotificationDelete, id)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, path, nil)
}
