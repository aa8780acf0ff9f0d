package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"showrunner/internal/config"
	"showrunner/internal/episode"
	"showrunner/internal/services/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *llm.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.LLM{APIKey: "test-key", Model: "test-model"}
	return llm.NewClient(cfg, llm.WithBaseURL(server.URL), llm.WithHTTPClient(server.Client()))
}

func chatResponse(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func TestResearchParsesBundle(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(chatResponse(`{"tool_spotlight":"spotlight","privacy_insight":"privacy","community_corner":"community","featured_posts":["post-1"]}`)))
	})

	bundle, err := client.Research(context.Background(), 7, []string{"vector search"})
	if err != nil {
		t.Fatalf("research: %v", err)
	}
	if bundle.ToolSpotlight != "spotlight" || len(bundle.FeaturedPosts) != 1 {
		t.Fatalf("unexpected bundle: %+v", bundle)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Fatalf("model = %v", gotBody["model"])
	}
	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}
	user, _ := messages[1].(map[string]any)
	if content, _ := user["content"].(string); !strings.Contains(content, "vector search") {
		t.Fatalf("expected past topics in prompt, got %q", content)
	}
}

func TestResearchRejectsEmptyBundle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse(`{"tool_spotlight":"","privacy_insight":"  ","community_corner":""}`)))
	})
	if _, err := client.Research(context.Background(), 7, nil); err == nil {
		t.Fatal("expected error for empty content sections")
	}
}

func TestDevelopThemeRequiresTheme(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse(`{"theme":"   "}`)))
	})
	_, err := client.DevelopTheme(context.Background(), nil, episode.ContentBundle{ToolSpotlight: "x"}, "")
	if err == nil {
		t.Fatal("expected error for blank theme")
	}
}

func TestGenerateScriptSurfacesHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	})
	_, err := client.GenerateScript(context.Background(), episode.ContentBundle{}, 7, episode.NarrativeBrief{Theme: "t"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected http 429 error, got %v", err)
	}
}

func TestGenerateNewsletterReturnsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse("<h1>Edition 7</h1>")))
	})
	html, err := client.GenerateNewsletter(context.Background(), episode.ContentBundle{}, 7, episode.NarrativeBrief{Theme: "t"})
	if err != nil {
		t.Fatalf("newsletter: %v", err)
	}
	if html != "<h1>Edition 7</h1>" {
		t.Fatalf("html = %q", html)
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := llm.NewClient(config.LLM{Model: "m"})
	if _, err := client.GenerateScript(context.Background(), episode.ContentBundle{}, 1, episode.NarrativeBrief{}); err == nil {
		t.Fatal("expected error when api key missing")
	}
}
