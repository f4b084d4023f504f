package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindPredicates(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Validation("bad input"), KindValidation},
		{NotFound("missing"), KindNotFound},
		{Forbidden("not yours"), KindForbidden},
		{Authentication("who are you"), KindAuthentication},
		{Storage("db failed", errors.New("conn refused")), KindStorage},
	}
	for _, c := range cases {
		k, ok := KindOf(c.err)
		if !ok || k != c.want {
			t.Errorf("KindOf(%v) = %v, %v; want %v, true", c.err, k, ok, c.want)
		}
	}

	if IsValidation(NotFound("x")) {
		t.Error("IsValidation matched a NotFound error")
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf matched a plain error")
	}
	if _, ok := KindOf(nil); ok {
		t.Error("KindOf matched nil")
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", Forbidden("you do not own this test"))
	if !IsForbidden(err) {
		t.Error("kind lost through fmt.Errorf wrapping")
	}
	if HTTPStatus(err) != http.StatusForbidden {
		t.Errorf("HTTPStatus = %d, want %d", HTTPStatus(err), http.StatusForbidden)
	}
}

func TestStorageUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("failed to save answers", cause)
	if !errors.Is(err, cause) {
		t.Error("Storage should unwrap to its cause")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("x"), http.StatusBadRequest},
		{NotFound("x"), http.StatusNotFound},
		{Forbidden("x"), http.StatusForbidden},
		{Authentication("x"), http.StatusUnauthorized},
		{Storage("x", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Validation("testId is required")); got != "testId is required" {
		t.Errorf("UserMessage = %q", got)
	}
	// Unclassified errors never leak their text to clients.
	if got := UserMessage(errors.New("pq: relation tests does not exist")); got != "internal server error" {
		t.Errorf("UserMessage leaked internals: %q", got)
	}
}
