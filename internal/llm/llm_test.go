package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testBrief() Brief {
	return Brief{
		Ticker:     "NVDA",
		Price:      131.257,
		RSI:        64.5,
		MACDSignal: "bullish",
		Verdict:    "BUY",
		Sentiment:  0.42,
		Headlines: []string{
			"Nvidia beats estimates",
			"  ",
			"Data center demand surges",
			"Analysts lift targets",
			"Fourth headline never shown",
		},
	}
}

// ════════════════════════════════════════════════════════════════════
// prompt.go
// ════════════════════════════════════════════════════════════════════

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(testBrief())
	for _, want := range []string{
		"analysis of NVDA",
		"- Price: 131.26",
		"- RSI: 64.50",
		"- MACD state: bullish",
		"- Algorithm verdict: BUY",
		"- Market sentiment score: 0.42",
		"  - Nvidia beats estimates",
		"  - Analysts lift targets",
		"3-4 fluent sentences",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "Fourth headline") {
		t.Error("prompt should include at most 3 headlines")
	}
}

func TestBuildPromptNoHeadlines(t *testing.T) {
	b := testBrief()
	b.Headlines = nil
	if p := BuildPrompt(b); !strings.Contains(p, noHeadlines) {
		t.Errorf("prompt without headlines should say %q", noHeadlines)
	}
}

// ════════════════════════════════════════════════════════════════════
// provider.go
// ════════════════════════════════════════════════════════════════════

type failingCommentator struct{ err error }

func (f failingCommentator) Name() string { return "failing" }
func (f failingCommentator) Comment(context.Context, Brief) (string, error) {
	return "", f.err
}

func TestCommentOrApology(t *testing.T) {
	ctx := context.Background()

	if got := CommentOrApology(ctx, Static("All clear."), testBrief()); got != "All clear." {
		t.Errorf("Static: got %q", got)
	}
	if got := CommentOrApology(ctx, nil, testBrief()); got != "" {
		t.Errorf("nil commentator: got %q, want empty", got)
	}

	got := CommentOrApology(ctx, failingCommentator{err: ErrProviderDown}, testBrief())
	if !strings.HasPrefix(got, "Sorry, the AI analyst cannot respond right now.") {
		t.Errorf("apology: got %q", got)
	}
	if !strings.Contains(got, ErrProviderDown.Error()) {
		t.Errorf("apology should carry the error, got %q", got)
	}
}

func TestStaticEmpty(t *testing.T) {
	if _, err := Static("").Comment(context.Background(), Brief{}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("got %v, want ErrEmptyResponse", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// gemini.go
// ════════════════════════════════════════════════════════════════════

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), ""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("got %v, want ErrNoAPIKey", err)
	}
}

func TestGeminiComment(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  Momentum and news agree.  "}]}}]}`))
	}))
	defer server.Close()

	g, err := NewGemini(context.Background(), "test-key", WithBaseURL(server.URL), WithGeminiModel("gemini-test"))
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	if g.Name() != ProviderGemini || g.Model() != "gemini-test" {
		t.Errorf("Name/Model: got %q/%q", g.Name(), g.Model())
	}

	text, err := g.Comment(context.Background(), testBrief())
	if err != nil {
		t.Fatalf("Comment: %v", err)
	}
	if text != "Momentum and news agree." {
		t.Errorf("Comment: got %q", text)
	}
	if !strings.Contains(gotPath, "gemini-test:generateContent") {
		t.Errorf("unexpected request path %q", gotPath)
	}
}

func TestGeminiCommentError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	g, err := NewGemini(context.Background(), "bad-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	if _, err := g.Comment(context.Background(), testBrief()); !errors.Is(err, ErrProviderDown) {
		t.Errorf("got %v, want ErrProviderDown", err)
	}
}
