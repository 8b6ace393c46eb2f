package processor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/voicenote-flow/internal/config"
	"github.com/nguyentantai21042004/voicenote-flow/internal/logger"
)

func newTestPolisher(url string, timeout time.Duration) Processor {
	cfg := config.Default()
	cfg.Ollama.URL = url
	if timeout > 0 {
		cfg.Ollama.Timeout = timeout
	}
	return NewPolisher(cfg, logger.NewNop())
}

func TestPolisher_NestedResponse(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"response": "{\"title\":\"Weekly Sync\",\"key_points\":[\"A\",\"B\"]}"}`))
	}))
	defer srv.Close()

	file := writeInput(t, "2025080112-sync.md", "we talked about A and B")
	res := newTestPolisher(srv.URL, 0).Process(context.Background(), file)
	if !res.OK() {
		t.Fatalf("Process() failed: %v", res.Err)
	}

	want := Note{Title: "Weekly Sync", KeyPoints: TextList{"A", "B"}}
	if diff := cmp.Diff(want, res.Payload); diff != "" {
		t.Errorf("Payload mismatch (-want +got):\n%s", diff)
	}

	if got.Model != "llama3" || got.Format != "json" || got.Stream {
		t.Errorf("request = %+v", got)
	}
	if !strings.Contains(got.Prompt, "we talked about A and B") {
		t.Errorf("prompt does not embed the transcript: %q", got.Prompt)
	}
}

func TestPolisher_DirectPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Plan","key_points":["x"],"action_items":["call Bo"],"formatted_transcript":"Hi."}`))
	}))
	defer srv.Close()

	res := newTestPolisher(srv.URL, 0).Process(context.Background(), writeInput(t, "a.md", "hi"))
	if !res.OK() {
		t.Fatalf("Process() failed: %v", res.Err)
	}
	want := Note{Title: "Plan", KeyPoints: TextList{"x"}, ActionItems: TextList{"call Bo"}, FormattedTranscript: "Hi."}
	if diff := cmp.Diff(want, res.Payload); diff != "" {
		t.Errorf("Payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPolisher_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"bad status", http.StatusInternalServerError, `{"error":"model not found"}`, ErrBadStatus},
		{"not json", http.StatusOK, `<html>`, ErrParse},
		{"nested not json", http.StatusOK, `{"response":"Sure! Here is your note"}`, ErrParse},
		{"no note fields", http.StatusOK, `{"model":"llama3","done":true}`, ErrParse},
		{"empty nested object", http.StatusOK, `{"response":"{}"}`, ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := newTestPolisher(srv.URL, 0).Process(context.Background(), writeInput(t, "a.md", "text"))
			if !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("err = %v, want %v", res.Err, tt.wantErr)
			}
			if res.Payload != nil {
				t.Errorf("Payload = %#v, want nil", res.Payload)
			}
		})
	}
}

func TestPolisher_EmptyInputSkipsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	res := newTestPolisher(srv.URL, 0).Process(context.Background(), writeInput(t, "a.md", "  \n\t"))
	if !errors.Is(res.Err, ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", res.Err)
	}
	if called {
		t.Error("remote API called for an empty transcript")
	}
}

func TestPolisher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	res := newTestPolisher(srv.URL, 50*time.Millisecond).Process(context.Background(), writeInput(t, "a.md", "text"))
	if !errors.Is(res.Err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", res.Err)
	}
}
