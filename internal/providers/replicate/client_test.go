package replicate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
)

var editedBytes = []byte("edited-image-bytes")

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Options{
		APIToken:     "r8_test",
		BaseURL:      srv.URL,
		ModelVersion: "v-test",
		PollInterval: time.Millisecond,
		Timeout:      2 * time.Second,
		HTTPClient:   srv.Client(),
	})
}

func TestEditExpressionSynchronousSuccess(t *testing.T) {
	var payload map[string]any
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/predictions":
			if r.Method != http.MethodPost {
				t.Fatalf("method = %q, want POST", r.Method)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer r8_test" {
				t.Fatalf("Authorization = %q", got)
			}
			if got := r.Header.Get("Prefer"); got != "wait" {
				t.Fatalf("Prefer = %q, want %q", got, "wait")
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			_, _ = w.Write([]byte(`{"id":"p1","status":"succeeded","output":["` + srv.URL + `/out.png"]}`))
		case "/out.png":
			_, _ = w.Write(editedBytes)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	expr := domain.ExpressionVector{Smile: 1.0, Wink: 5, RotateYaw: -3}
	got, err := newTestClient(srv).EditExpression(context.Background(), []byte("src"), "image/png", expr)
	if err != nil {
		t.Fatalf("EditExpression returned error: %v", err)
	}
	if string(got) != string(editedBytes) {
		t.Fatalf("output = %q, want %q", got, editedBytes)
	}

	if payload["version"] != "v-test" {
		t.Fatalf("version = %v, want v-test", payload["version"])
	}
	input, ok := payload["input"].(map[string]any)
	if !ok {
		t.Fatalf("input missing from payload: %#v", payload)
	}
	wantImage := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("src"))
	if input["image"] != wantImage {
		t.Fatalf("image = %v, want %v", input["image"], wantImage)
	}
	checks := map[string]float64{
		"smile":          1.0,
		"wink":           5,
		"rotate_yaw":     -3,
		"blink":          0,
		"src_ratio":      1,
		"crop_factor":    1.7,
		"sample_ratio":   1,
		"output_quality": 95,
	}
	for key, want := range checks {
		if got, _ := input[key].(float64); got != want {
			t.Fatalf("input[%q] = %v, want %v", key, input[key], want)
		}
	}
	if input["output_format"] != "png" {
		t.Fatalf("output_format = %v, want png", input["output_format"])
	}
}

func TestEditExpressionPollsUntilTerminal(t *testing.T) {
	var polls atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/predictions":
			_, _ = w.Write([]byte(`{"id":"p2","status":"starting","urls":{"get":"` + srv.URL + `/v1/predictions/p2"}}`))
		case "/v1/predictions/p2":
			if r.Method != http.MethodGet {
				t.Fatalf("poll method = %q, want GET", r.Method)
			}
			if polls.Add(1) < 3 {
				_, _ = w.Write([]byte(`{"id":"p2","status":"processing","urls":{"get":"` + srv.URL + `/v1/predictions/p2"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"p2","status":"succeeded","output":"` + srv.URL + `/out.png"}`))
		case "/out.png":
			_, _ = w.Write(editedBytes)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got, err := newTestClient(srv).EditExpression(context.Background(), []byte("src"), "image/png", domain.ExpressionVector{})
	if err != nil {
		t.Fatalf("EditExpression returned error: %v", err)
	}
	if string(got) != string(editedBytes) {
		t.Fatalf("output = %q, want %q", got, editedBytes)
	}
	if polls.Load() != 3 {
		t.Fatalf("polls = %d, want 3", polls.Load())
	}
}

func TestEditExpressionFailedPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p3","status":"failed","error":"no face detected"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).EditExpression(context.Background(), []byte("src"), "image/png", domain.ExpressionVector{})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
	if !strings.Contains(err.Error(), "no face detected") {
		t.Fatalf("error %q does not carry the prediction error", err)
	}
}

func TestEditExpressionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title":"Unauthenticated","detail":"You did not pass a valid authentication token"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).EditExpression(context.Background(), []byte("src"), "image/png", domain.ExpressionVector{})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("error %q does not mention status", err)
	}
}

func TestEditExpressionDownloadFailure(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/predictions" {
			_, _ = w.Write([]byte(`{"id":"p4","status":"succeeded","output":["` + srv.URL + `/gone.png"]}`))
			return
		}
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).EditExpression(context.Background(), []byte("src"), "image/png", domain.ExpressionVector{})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestEditExpressionEmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p5","status":"succeeded","output":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).EditExpression(context.Background(), []byte("src"), "image/png", domain.ExpressionVector{})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestEditExpressionDataURLOutput(t *testing.T) {
	out := "data:image/png;base64," + base64.StdEncoding.EncodeToString(editedBytes)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p6","status":"succeeded","output":["` + out + `"]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).EditExpression(context.Background(), []byte("src"), "image/png", domain.ExpressionVector{})
	if err != nil {
		t.Fatalf("EditExpression returned error: %v", err)
	}
	if string(got) != string(editedBytes) {
		t.Fatalf("output = %q, want %q", got, editedBytes)
	}
}

func TestEditExpressionTimeout(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p7","status":"processing","urls":{"get":"` + srv.URL + `/v1/predictions/p7"}}`))
	}))
	defer srv.Close()

	client := NewClient(Options{
		APIToken:     "r8_test",
		BaseURL:      srv.URL,
		PollInterval: 5 * time.Millisecond,
		Timeout:      50 * time.Millisecond,
		HTTPClient:   srv.Client(),
	})
	_, err := client.EditExpression(context.Background(), []byte("src"), "image/png", domain.ExpressionVector{})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}

func TestEditExpressionMissingToken(t *testing.T) {
	client := NewClient(Options{})
	if client.HasCredentials() {
		t.Fatalf("HasCredentials = true, want false")
	}
	_, err := client.EditExpression(context.Background(), []byte("src"), "image/png", domain.ExpressionVector{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestFirstOutputURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: `["https://a/1.png","https://a/2.png"]`, want: "https://a/1.png"},
		{raw: `"https://a/1.png"`, want: "https://a/1.png"},
		{raw: `null`, wantErr: true},
		{raw: `[]`, wantErr: true},
		{raw: `{"url":"x"}`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := firstOutputURL(json.RawMessage(tt.raw))
		if tt.wantErr {
			if err == nil {
				t.Fatalf("firstOutputURL(%s) expected error, got %q", tt.raw, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("firstOutputURL(%s) = %q, %v; want %q", tt.raw, got, err, tt.want)
		}
	}
}
