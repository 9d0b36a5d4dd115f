package admin

import (
	"encoding/json"
	"strings"
)

// Ref carries whichever identifier the backend returned.
type Ref struct {
	ID      string `json:"id,omitempty"`
	MongoID string `json:"_id,omitempty"`
}

// Key returns the usable identifier.
func (r Ref) Key() string {
	if r.MongoID != "" {
		return r.MongoID
	}
	return r.ID
}

// User is an end user of the meditation app.
type User struct {
	Ref
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	Status    string `json:"status,omitempty"`
	LastLogin string `json:"lastLogin,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// VoiceVersion is one narrated recording of a course.
type VoiceVersion struct {
	Gender      string  `json:"gender"`
	AudioURL    string  `json:"audioUrl"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description,omitempty"`
}

// Course is a guided meditation course.
type Course struct {
	Ref
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Difficulty    string         `json:"difficulty"`
	Theme         string         `json:"theme,omitempty"`
	Thumbnail     string         `json:"thumbnail,omitempty"`
	VoiceVersions []VoiceVersion `json:"voiceVersions"`
	Tags          []string       `json:"tags"`
}

// Theme groups courses and tracks.
type Theme struct {
	Ref
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Track is a music or sleep-song entry.
type Track struct {
	Ref
	Title     string  `json:"title"`
	Artist    string  `json:"artist,omitempty"`
	Mood      string  `json:"mood,omitempty"`
	Category  string  `json:"category,omitempty"`
	Theme     string  `json:"theme,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	AudioURL  string  `json:"audioUrl,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// Notification is an operator notification.
type Notification struct {
	Ref
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// File is an uploaded asset known to the backend.
type File struct {
	Ref
	Name        string `json:"name,omitempty"`
	URL         string `json:"url"`
	StorageKey  string `json:"key,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Stats is a loosely shaped statistics payload.
type Stats map[string]any

// BulkResult is the backend's answer to a bulk user operation.
type BulkResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Matched  int    `json:"matchedCount,omitempty"`
	Modified int    `json:"modifiedCount,omitempty"`
	Deleted  int    `json:"deletedCount,omitempty"`
}

// SplitTags turns a comma-separated list into trimmed, non-empty tags.
func SplitTags(value string) []string {
	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func decodeStats(raw json.RawMessage) (Stats, error) {
	stats := Stats{}
	if len(raw) == 0 {
		return stats, nil
	}
	if err := unwrapInto(raw, []string{"stats", "data"}, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
