package admin

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"nestadmin/internal/api"
)

func validCourse() Course {
	return Course{
		Name:        "Morning calm",
		Description: "Ten minutes of breathing",
		Category:    "breathing",
		Difficulty:  "beginner",
		VoiceVersions: []VoiceVersion{
			{Gender: "female", AudioURL: "https://cdn.example/a.mp3", Duration: 600},
		},
	}
}

func TestValidateCourseAcceptsValidCourse(t *testing.T) {
	if err := ValidateCourse(validCourse()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCourseReportsFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Course)
		field   string
		message string
	}{
		{"name", func(c *Course) { c.Name = "  " }, "name", "Name is required"},
		{"description", func(c *Course) { c.Description = "" }, "description", "Description is required"},
		{"category", func(c *Course) { c.Category = "" }, "category", "Category is required"},
		{"difficulty", func(c *Course) { c.Difficulty = "expert" }, "difficulty", "Invalid difficulty"},
		{"gender", func(c *Course) { c.VoiceVersions[0].Gender = "robot" }, "voiceVersions[0].gender", "Voice version gender must be male or female"},
		{"audio", func(c *Course) { c.VoiceVersions[0].AudioURL = "" }, "voiceVersions[0].audioUrl", "Voice version audioUrl is required"},
		{"duration", func(c *Course) { c.VoiceVersions[0].Duration = 0 }, "voiceVersions[0].duration", "Voice version duration must be > 0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			course := validCourse()
			tc.mutate(&course)
			err := ValidateCourse(course)
			var apiErr *api.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *api.Error, got %v", err)
			}
			if apiErr.Kind != api.KindValidation {
				t.Fatalf("kind = %v", apiErr.Kind)
			}
			if apiErr.Message != tc.message {
				t.Fatalf("message = %q, want %q", apiErr.Message, tc.message)
			}
			if apiErr.Fields[tc.field] != tc.message {
				t.Fatalf("fields = %#v", apiErr.Fields)
			}
		})
	}
}

func TestValidateCourseMessageIsFirstProblem(t *testing.T) {
	err := ValidateCourse(Course{Difficulty: "beginner"})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Message != "Name is required" || len(apiErr.Fields) != 3 {
		t.Fatalf("error = %+v", apiErr)
	}
}

func TestCreateCourseSkipsRequestWhenInvalid(t *testing.T) {
	backend, svc := newTestService(t)
	_, err := svc.CreateCourse(context.Background(), Course{Name: "x"})
	if !errors.Is(err, api.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.TotalCalls() != 0 {
		t.Fatalf("expected no requests, got %d", backend.TotalCalls())
	}
}

func TestCreateCourseSendsArraysAndDropsIdentifiers(t *testing.T) {
	backend, svc := newTestService(t)
	backend.JSON(http.MethodPost, "/admin/courses", http.StatusCreated, map[string]any{
		"course": map[string]any{"_id": "c9", "name": "Morning calm"},
	})

	course := validCourse()
	course.VoiceVersions = append(course.VoiceVersions, VoiceVersion{Gender: "male", AudioURL: "https://cdn.example/b.mp3", Duration: 590})
	course.Ref = Ref{ID: "stale"}
	created, err := svc.CreateCourse(context.Background(), course)
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if created.Key() != "c9" {
		t.Fatalf("created = %+v", created)
	}

	var body map[string]any
	backend.Last(t, http.MethodPost, "/admin/courses").DecodeBody(t, &body)
	if _, ok := body["id"]; ok {
		t.Fatalf("body carried id: %#v", body)
	}
	if tags, ok := body["tags"].([]any); !ok || len(tags) != 0 {
		t.Fatalf("tags = %#v", body["tags"])
	}
	if versions, ok := body["voiceVersions"].([]any); !ok || len(versions) != 2 {
		t.Fatalf("voiceVersions = %#v", body["voiceVersions"])
	}
}
