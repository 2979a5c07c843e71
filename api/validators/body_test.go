package validators

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Attempts int    `json:"attempts"`
}

func decode(t *testing.T, body string) (loginBody, *pkgerrors.Error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest loginBody
	err := DecodeJSONBody(req, &dest)
	if err == nil {
		return dest, nil
	}
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", typed.Code())
	}
	return dest, typed
}

func TestDecodeJSONBodyAcceptsValidBody(t *testing.T) {
	dest, err := decode(t, `{"email":"admin@example.com","password":"longenough"}`)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if dest.Email != "admin@example.com" {
		t.Fatalf("unexpected decode %+v", dest)
	}
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"unknown":  `{"email":"admin@example.com","password":"longenough","role":"admin"}`,
		"trailing": `{"email":"admin@example.com","password":"longenough"}{"x":1}`,
		"type":     `{"email":"admin@example.com","password":"longenough","attempts":"three"}`,
		"short":    `{"email":"admin@example.com","password":"short"}`,
		"email":    `{"email":"nope","password":"longenough"}`,
	}
	for name, body := range cases {
		if _, err := decode(t, body); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}

func TestDecodeJSONBodyNamesFieldsByJSONTag(t *testing.T) {
	_, err := decode(t, `{"email":"admin@example.com","password":"short"}`)
	if err == nil {
		t.Fatalf("expected rejection")
	}
	details, ok := err.Details().(map[string]string)
	if !ok || details["password"] != "must be at least 8" {
		t.Fatalf("unexpected details %#v", err.Details())
	}
}
