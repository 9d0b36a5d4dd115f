package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesOnlyItsKind(t *testing.T) {
	err := newError(KindForbidden, 403, "", nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatal("expected ErrForbidden match")
	}
	for _, other := range []error{ErrUnauthorized, ErrNotFound, ErrServer, ErrNetwork, ErrTimeout, ErrValidation, ErrUnknown} {
		if errors.Is(err, other) {
			t.Fatalf("unexpected match against %v", other)
		}
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load users: %w", newError(KindNotFound, 404, "", nil))
	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf = %v, want NotFound", got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Fatalf("KindOf(plain) = %v, want Unknown", got)
	}
	if KindOf(nil) != KindUnknown {
		t.Fatal("KindOf(nil) should be Unknown")
	}
}

func TestDefaultMessages(t *testing.T) {
	tests := map[Kind]string{
		KindUnauthorized: MessageUnauthorized,
		KindForbidden:    MessageForbidden,
		KindNotFound:     MessageNotFound,
		KindValidation:   MessageValidation,
		KindServer:       MessageServer,
		KindNetwork:      MessageNetwork,
		KindTimeout:      MessageTimeout,
		KindUnknown:      MessageDefault,
	}
	for kind, want := range tests {
		if got := newError(kind, 0, "  ", nil).Error(); got != want {
			t.Fatalf("%v: got %q want %q", kind, got, want)
		}
	}
}

func TestParseFieldErrorsMapShape(t *testing.T) {
	fields := parseFieldErrors([]byte(`{"email":"taken","tags":["too many","duplicate"],"name":{"message":"required"}}`))
	if fields["email"] != "taken" {
		t.Fatalf("email = %q", fields["email"])
	}
	if fields["tags"] != "too many; duplicate" {
		t.Fatalf("tags = %q", fields["tags"])
	}
	if fields["name"] != "required" {
		t.Fatalf("name = %q", fields["name"])
	}
	if parseFieldErrors([]byte(`"oops"`)) != nil {
		t.Fatal("scalar errors value should yield no fields")
	}
}
