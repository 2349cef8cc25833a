package models

import "time"

// SentimentLabel is the category assigned to a headline by a classifier.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// NewsItem is a single headline. Title, Link, Source and Published are set
// by the news source; the sentiment fields are attached once during
// aggregation.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	Published   string    `json:"published"`
	PublishedAt time.Time `json:"published_at"`

	SentimentScore float64        `json:"sentiment_score"`
	SentimentLabel SentimentLabel `json:"sentiment_label,omitempty"`
	Scored         bool           `json:"scored"`
}

// SentimentSummary is the aggregate of a set of scored headlines.
type SentimentSummary struct {
	AverageScore float64        `json:"average_score"` // mean over scored items, -1..1
	Label        SentimentLabel `json:"label"`
	Riskiest     *NewsItem      `json:"riskiest,omitempty"` // lowest score below the risk threshold
	Scored       int            `json:"scored"`
	Failed       int            `json:"failed"`
}

// NeutralSentiment is the summary used when nothing could be scored.
func NeutralSentiment() SentimentSummary {
	return SentimentSummary{Label: SentimentNeutral}
}
