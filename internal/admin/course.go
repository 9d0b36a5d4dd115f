package admin

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"nestadmin/internal/api"
)

// Accepted course difficulties and narrator genders.
var (
	Difficulties = []string{"beginner", "intermediate", "advanced"}
	Genders      = []string{"male", "female"}
)

// ValidateCourse reports every problem with c as a validation error. The
// message is the first problem found.
func ValidateCourse(c Course) error {
	fields := make(map[string]string)
	first := ""
	add := func(field, message string) {
		if _, seen := fields[field]; seen {
			return
		}
		fields[field] = message
		if first == "" {
			first = message
		}
	}

	if strings.TrimSpace(c.Name) == "" {
		add("name", "Name is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		add("description", "Description is required")
	}
	if strings.TrimSpace(c.Category) == "" {
		add("category", "Category is required")
	}
	if !slices.Contains(Difficulties, c.Difficulty) {
		add("difficulty", "Invalid difficulty")
	}
	for i, v := range c.VoiceVersions {
		prefix := fmt.Sprintf("voiceVersions[%d].", i)
		if !slices.Contains(Genders, v.Gender) {
			add(prefix+"gender", "Voice version gender must be male or female")
		}
		if strings.TrimSpace(v.AudioURL) == "" {
			add(prefix+"audioUrl", "Voice version audioUrl is required")
		}
		if v.Duration <= 0 {
			add(prefix+"duration", "Voice version duration must be > 0")
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &api.Error{Kind: api.KindValidation, Message: first, Fields: fields}
}

// normalizeCourse fills the collections the backend expects as arrays.
func normalizeCourse(c Course) Course {
	if c.VoiceVersions == nil {
		c.VoiceVersions = []VoiceVersion{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Difficulty == "" {
		c.Difficulty = Difficulties[0]
	}
	return c
}

// CreateCourse validates c and creates it.
func (s *Service) CreateCourse(ctx context.Context, c Course) (Course, error) {
	c = normalizeCourse(c)
	if err := ValidateCourse(c); err != nil {
		return Course{}, err
	}
	c.Ref = Ref{}
	return s.Courses.Create(ctx, c)
}

// UpdateCourse validates c and stores it under id.
func (s *Service) UpdateCourse(ctx context.Context, id string, c Course) (Course, error) {
	c = normalizeCourse(c)
	if err := ValidateCourse(c); err != nil {
		return Course{}, err
	}
	c.Ref = Ref{}
	return s.Courses.Update(ctx, id, c)
}
