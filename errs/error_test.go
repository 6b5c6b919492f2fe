package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapKeepsExistingCode(t *testing.T) {
	inner := New(NotFound)
	wrapped := Wrap(fmt.Errorf("load: %w", inner), DatabaseError)
	if wrapped.Code != NotFound {
		t.Fatalf("expected NotFound, got %d", wrapped.Code)
	}
}

func TestWrapForeignError(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, DatabaseError)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error to unwrap to cause")
	}
	if CodeOf(err) != DatabaseError {
		t.Fatalf("unexpected code: %d", CodeOf(err))
	}
	if Wrap(nil, DatabaseError) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: OK},
		{name: "plain", err: errors.New("x"), want: InternalError},
		{name: "coded", err: New(TooManyRequests), want: TooManyRequests},
		{name: "formatted", err: Newf(InvalidParams, "bad %s", "field"), want: InvalidParams},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(tc.err); got != tc.want {
				t.Fatalf("want %d got %d", tc.want, got)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	if NotFound.HTTPStatus() != http.StatusNotFound {
		t.Fatalf("unexpected status for NotFound")
	}
	if TooManyRequests.HTTPStatus() != http.StatusTooManyRequests {
		t.Fatalf("unexpected status for TooManyRequests")
	}
	if DatabaseError.HTTPStatus() != http.StatusInternalServerError {
		t.Fatalf("unexpected status for DatabaseError")
	}
	if Newf(InvalidParams, "custom").Error() != "custom" {
		t.Fatalf("expected custom message")
	}
}
