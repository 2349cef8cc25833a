package sentiment

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// tableClassifier answers from a title → prediction map.
func tableClassifier(table map[string]Prediction, calls *int32) Classifier {
	return ClassifierFunc(func(_ context.Context, text string) (Prediction, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		p, ok := table[text]
		if !ok {
			return Prediction{}, errors.New("unknown headline")
		}
		return p, nil
	})
}

func newsItems(titles ...string) []models.NewsItem {
	items := make([]models.NewsItem, len(titles))
	for i, t := range titles {
		items[i] = models.NewsItem{Title: t, Source: "Test"}
	}
	return items
}

func pos(c float64) Prediction { return Prediction{Label: models.SentimentPositive, Confidence: c} }
func neg(c float64) Prediction { return Prediction{Label: models.SentimentNegative, Confidence: c} }
func neu(c float64) Prediction { return Prediction{Label: models.SentimentNeutral, Confidence: c} }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ── Aggregate ──

func TestAggregateEmpty(t *testing.T) {
	var calls int32
	a := NewAggregator(DefaultAggregatorConfig(), tableClassifier(nil, &calls))
	s := a.Aggregate(context.Background(), nil)
	if s.AverageScore != 0 || s.Label != models.SentimentNeutral || s.Riskiest != nil {
		t.Errorf("empty: got %+v", s)
	}
	if calls != 0 {
		t.Errorf("classifier called %d times on empty input", calls)
	}
}

func TestAggregateSingleNegative(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig(), tableClassifier(map[string]Prediction{
		"Chipmaker faces fraud probe": neg(0.9),
	}, nil))
	items := newsItems("Chipmaker faces fraud probe")

	s := a.Aggregate(context.Background(), items)
	if !approx(s.AverageScore, -0.9) {
		t.Errorf("AverageScore: got %f, want -0.9", s.AverageScore)
	}
	if s.Label != models.SentimentNegative {
		t.Errorf("Label: got %q, want Negative", s.Label)
	}
	if s.Riskiest != &items[0] {
		t.Errorf("Riskiest should point at the only item, got %v", s.Riskiest)
	}
	if !items[0].Scored || items[0].SentimentScore != -0.9 {
		t.Errorf("item not annotated: %+v", items[0])
	}
}

func TestAggregateRiskiestStrictThreshold(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig(), tableClassifier(map[string]Prediction{
		"a": neg(0.20),
		"b": pos(0.5),
	}, nil))
	s := a.Aggregate(context.Background(), newsItems("a", "b"))
	if s.Riskiest != nil {
		t.Errorf("score exactly at threshold must not be riskiest, got %q", s.Riskiest.Title)
	}
}

func TestAggregateMixed(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig(), tableClassifier(map[string]Prediction{
		"good": pos(0.8),
		"bad":  neg(0.5),
		"meh":  neu(0.9),
	}, nil))
	items := newsItems("good", "bad", "meh")

	s := a.Aggregate(context.Background(), items)
	if !approx(s.AverageScore, 0.1) {
		t.Errorf("AverageScore: got %f, want 0.1", s.AverageScore)
	}
	if s.Label != models.SentimentNeutral {
		t.Errorf("Label: got %q, want Neutral", s.Label)
	}
	if s.Riskiest == nil || s.Riskiest.Title != "bad" {
		t.Errorf("Riskiest: got %v, want bad", s.Riskiest)
	}
	if items[2].SentimentScore != 0 || items[2].SentimentLabel != models.SentimentNeutral {
		t.Errorf("neutral item: got %+v", items[2])
	}
	if s.Scored != 3 || s.Failed != 0 {
		t.Errorf("counts: scored=%d failed=%d", s.Scored, s.Failed)
	}
}

func TestAggregateRiskiestNeverRetracted(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig(), tableClassifier(map[string]Prediction{
		"first":  neg(0.6),
		"second": neg(0.3),
		"third":  neg(0.1),
	}, nil))
	s := a.Aggregate(context.Background(), newsItems("first", "second", "third"))
	if s.Riskiest == nil || s.Riskiest.Title != "first" {
		t.Errorf("Riskiest: got %v, want first", s.Riskiest)
	}

	s = a.Aggregate(context.Background(), newsItems("third", "second", "first"))
	if s.Riskiest == nil || s.Riskiest.Title != "first" {
		t.Errorf("Riskiest: got %v, want first", s.Riskiest)
	}
}

func TestAggregateLabels(t *testing.T) {
	tests := []struct {
		pred Prediction
		want models.SentimentLabel
	}{
		{pos(0.16), models.SentimentPositive},
		{pos(0.15), models.SentimentNeutral},
		{neg(0.15), models.SentimentNeutral},
		{neg(0.16), models.SentimentNegative},
	}
	for _, tt := range tests {
		a := NewAggregator(DefaultAggregatorConfig(), tableClassifier(map[string]Prediction{"x": tt.pred}, nil))
		if got := a.Aggregate(context.Background(), newsItems("x")).Label; got != tt.want {
			t.Errorf("score %f: got %q, want %q", tt.pred.Score(), got, tt.want)
		}
	}
}

func TestAggregateSkipsFailures(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig(), tableClassifier(map[string]Prediction{
		"ok": pos(0.6),
	}, nil))
	items := newsItems("ok", "broken", "also broken")

	s := a.Aggregate(context.Background(), items)
	if s.Scored != 1 || s.Failed != 2 {
		t.Errorf("counts: scored=%d failed=%d, want 1 and 2", s.Scored, s.Failed)
	}
	if !approx(s.AverageScore, 0.6) || s.Label != models.SentimentPositive {
		t.Errorf("summary: got %+v", s)
	}
	if items[1].Scored || items[2].Scored {
		t.Error("failed items must stay unscored")
	}
}

func TestAggregateAllFail(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig(), tableClassifier(nil, nil))
	s := a.Aggregate(context.Background(), newsItems("x", "y"))
	if s.AverageScore != 0 || s.Label != models.SentimentNeutral || s.Riskiest != nil || s.Failed != 2 {
		t.Errorf("all-fail: got %+v", s)
	}
}

func TestAggregateTruncatesTitle(t *testing.T) {
	var seen int32
	c := ClassifierFunc(func(_ context.Context, text string) (Prediction, error) {
		atomic.StoreInt32(&seen, int32(utf8.RuneCountInString(text)))
		return neu(0.5), nil
	})
	a := NewAggregator(DefaultAggregatorConfig(), c)
	items := newsItems(strings.Repeat("é", 600))

	a.Aggregate(context.Background(), items)
	if seen != 512 {
		t.Errorf("classifier saw %d characters, want 512", seen)
	}
	if utf8.RuneCountInString(items[0].Title) != 600 {
		t.Error("item title must not be modified")
	}
}

func TestAggregatePreservesOrder(t *testing.T) {
	table := map[string]Prediction{}
	var titles []string
	for i := 0; i < 40; i++ {
		title := strings.Repeat("n", i+1)
		titles = append(titles, title)
		table[title] = pos(float64(i) / 100)
	}
	cfg := DefaultAggregatorConfig()
	cfg.Workers = 8
	a := NewAggregator(cfg, tableClassifier(table, nil))
	items := newsItems(titles...)

	a.Aggregate(context.Background(), items)
	for i, it := range items {
		if it.Title != titles[i] || !approx(it.SentimentScore, float64(i)/100) {
			t.Fatalf("item %d: got %q %f", i, it.Title, it.SentimentScore)
		}
	}
}

func TestAggregateClassifierPanicIsCounted(t *testing.T) {
	c := ClassifierFunc(func(_ context.Context, text string) (Prediction, error) {
		if text == "Tokenizer breaks here" {
			panic("tokenizer blew up")
		}
		return neg(0.9), nil
	})
	a := NewAggregator(DefaultAggregatorConfig(), c)
	items := newsItems("Fraud probe widens", "Tokenizer breaks here")

	s := a.Aggregate(context.Background(), items)
	if s.Failed != 1 || s.Scored != 1 {
		t.Fatalf("scored %d failed %d, want 1/1", s.Scored, s.Failed)
	}
	if !approx(s.AverageScore, -0.9) {
		t.Errorf("average: got %v, want -0.9", s.AverageScore)
	}
	if s.Riskiest == nil || s.Riskiest.Title != "Fraud probe widens" {
		t.Errorf("riskiest: got %+v", s.Riskiest)
	}
	if items[1].Scored {
		t.Error("panicking item should stay unscored")
	}
}

// ── Lexicon ──

func TestLexiconClassify(t *testing.T) {
	l := NewLexicon()
	ctx := context.Background()

	p, _ := l.Classify(ctx, "NVDA shares surge to record high after earnings beats")
	if p.Label != models.SentimentPositive || p.Confidence <= 0 {
		t.Errorf("bullish: got %+v", p)
	}

	p, _ = l.Classify(ctx, "Stock plunges as fraud investigation widens")
	if p.Label != models.SentimentNegative || p.Score() >= -0.2 {
		t.Errorf("bearish: got %+v (score %f)", p, p.Score())
	}

	p, _ = l.Classify(ctx, "Company schedules annual meeting")
	if p.Label != models.SentimentNeutral || p.Score() != 0 {
		t.Errorf("neutral: got %+v", p)
	}
}

func TestScoreHeadlineBounds(t *testing.T) {
	score, conf := ScoreHeadline("rally surge bullish breakout record high upgrade")
	if score != 1 {
		t.Errorf("all-bullish score: got %f, want 1", score)
	}
	if conf != 0.85 {
		t.Errorf("confidence cap: got %f, want 0.85", conf)
	}
}

func TestScoreHeadlineWholeWords(t *testing.T) {
	tests := []struct {
		headline string
		want     int // sign of the score
	}{
		{"Regulators move against the merger", 0},
		{"Firm ships a small UI tweak", 0},
		{"Glossy brochure unveiled at expo", 0},
		{"Shares gain after upgrade", 1},
		{"Quarterly losses widen", -1},
		{"Stock tumbled on weak guidance", -1},
		{"Analysts flag a sell-off risk", -1},
		{"NVDA hits all-time high", 1},
	}
	for _, tt := range tests {
		t.Run(tt.headline, func(t *testing.T) {
			score, _ := ScoreHeadline(tt.headline)
			got := 0
			if score > 0 {
				got = 1
			} else if score < 0 {
				got = -1
			}
			if got != tt.want {
				t.Errorf("ScoreHeadline(%q) = %f, want sign %d", tt.headline, score, tt.want)
			}
		})
	}
}

func TestParseLabel(t *testing.T) {
	tests := map[string]models.SentimentLabel{
		"Positive": models.SentimentPositive,
		"negative": models.SentimentNegative,
		"Neutral":  models.SentimentNeutral,
		"LABEL_2":  models.SentimentNeutral,
	}
	for in, want := range tests {
		if got := ParseLabel(in); got != want {
			t.Errorf("ParseLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

// ── Hugging Face ──

func TestHuggingFaceClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/yiyanghkust/finbert-tone" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer hf_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[{"label":"Neutral","score":0.05},{"label":"Negative","score":0.93},{"label":"Positive","score":0.02}]]`))
	}))
	defer srv.Close()

	h := NewHuggingFace(srv.URL, "yiyanghkust/finbert-tone", "hf_test", 5*time.Second)
	p, err := h.Classify(context.Background(), "Shares tumble")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if p.Label != models.SentimentNegative || p.Confidence != 0.93 {
		t.Errorf("got %+v, want Negative 0.93", p)
	}
}

func TestHuggingFaceFlatAndError(t *testing.T) {
	flat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"label":"positive","score":0.7}]`))
	}))
	defer flat.Close()

	p, err := NewHuggingFace(flat.URL, "m", "", time.Second).Classify(context.Background(), "x")
	if err != nil || p.Label != models.SentimentPositive {
		t.Errorf("flat: got %+v, %v", p, err)
	}

	loading := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading","estimated_time":20}`))
	}))
	defer loading.Close()

	_, err = NewHuggingFace(loading.URL, "m", "", time.Second).Classify(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "loading") {
		t.Errorf("expected loading error, got %v", err)
	}
}
