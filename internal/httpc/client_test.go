package httpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"abc"}`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := GetJSON(context.Background(), srv.URL+"/ok", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.SessionID != "abc" {
		t.Errorf("session_id = %q, want abc", out.SessionID)
	}

	err := GetJSON(context.Background(), srv.URL+"/missing", &out)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 StatusError", err)
	}
}

func TestDoJSON_DiscardsBodyWhenNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{"session_id":"new"}`))
	}))
	defer srv.Close()

	if err := DoJSON(context.Background(), Client, http.MethodPost, srv.URL, nil); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
}
