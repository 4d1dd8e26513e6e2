package web

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("test-key", srv.URL, log.New(io.Discard, "", 0))
	return srv, client
}

func TestFetchJoinsKeywordsAndParsesResults(t *testing.T) {
	longContent := strings.Repeat("贵州茅台2023年前三季度实现净利润528.76亿元。", 3)

	var gotReq searchRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer": "贵州茅台2023年Q3净利润为528.76亿元。",
			"results": []map[string]string{
				{"url": "https://example.com/a", "content": longContent},
				{"url": "https://example.com/b", "content": "太短"},
			},
		})
	})

	chunks, err := client.Fetch(context.Background(), []string{"贵州茅台", "600519", "净利润", "2023", "Q3"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotReq.Query != "贵州茅台 600519 净利润 2023 Q3" {
		t.Errorf("query = %q, want space-joined keywords", gotReq.Query)
	}
	if gotReq.APIKey != "test-key" {
		t.Errorf("api_key = %q", gotReq.APIKey)
	}
	if !gotReq.IncludeAnswer {
		t.Error("include_answer must be set")
	}

	// Synthesized answer first, then the one result long enough to keep.
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].SourceText != "贵州茅台2023年Q3净利润为528.76亿元。" {
		t.Errorf("chunks[0] = %q, want the provider answer", chunks[0].SourceText)
	}
	if !strings.Contains(chunks[1].SourceText, "https://example.com/a") {
		t.Errorf("chunks[1] = %q, want the source URL embedded", chunks[1].SourceText)
	}
	for _, c := range chunks {
		if c.Origin != "web" {
			t.Errorf("Origin = %q, want web", c.Origin)
		}
	}
}

func TestFetchEmptyKeywordsSkipsRequest(t *testing.T) {
	called := false
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	chunks, err := client.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if chunks != nil || called {
		t.Error("empty keywords must not hit the API")
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	})

	_, err := client.Fetch(context.Background(), []string{"茅台"})
	if err == nil {
		t.Fatal("Fetch() error = nil, want error on 401")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("error = %v, want status code surfaced", err)
	}
}

func TestFetchContextCancellation(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Fetch(ctx, []string{"茅台"}); err == nil {
		t.Fatal("Fetch() with cancelled context must error")
	}
}
