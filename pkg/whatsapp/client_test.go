package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestSendPostsDocumentPayload(t *testing.T) {
	var captured map[string]string
	var auth string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{"ok":true}`)), Header: http.Header{}}, nil
	})

	client := NewClient(0, WithHTTPClient(&http.Client{Transport: rt}))
	err := client.Send(context.Background(),
		Endpoint{URL: "http://wa.test/send", APIKey: "secret"},
		Message{Phone: "+919999999999", Text: "hello", MediaURL: "https://drive.google.com/file/d/x/view"},
	)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if auth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if captured["phone"] != "+919999999999" || captured["message"] != "hello" {
		t.Fatalf("unexpected payload %+v", captured)
	}
	if captured["media"] == "" || captured["mediaType"] != "document" {
		t.Fatalf("expected document media, got %+v", captured)
	}
}

func TestSendOmitsMediaWithoutURL(t *testing.T) {
	var raw string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		raw = string(body)
		return &http.Response{StatusCode: http.StatusCreated, Body: io.NopCloser(strings.NewReader(`{}`)), Header: http.Header{}}, nil
	})
	client := NewClient(0, WithHTTPClient(&http.Client{Transport: rt}))
	if err := client.Send(context.Background(), Endpoint{URL: "http://wa.test", APIKey: "k"}, Message{Phone: "1", Text: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if strings.Contains(raw, "media") {
		t.Fatalf("media fields should be omitted, got %s", raw)
	}
}

func TestSendNon2xxFails(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader(`{"error":"down"}`)), Header: http.Header{}}, nil
	})
	client := NewClient(0, WithHTTPClient(&http.Client{Transport: rt}))
	err := client.Send(context.Background(), Endpoint{URL: "http://wa.test", APIKey: "k"}, Message{Phone: "1", Text: "hi"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSendValidatesInput(t *testing.T) {
	client := NewClient(0)
	if err := client.Send(context.Background(), Endpoint{}, Message{Phone: "1", Text: "x"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for endpoint, got %v", err)
	}
	if err := client.Send(context.Background(), Endpoint{URL: "u", APIKey: "k"}, Message{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for message, got %v", err)
	}
}
