package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HuggingFace classifies text with a hosted FinBERT-style model through the
// Hugging Face inference REST API.
type HuggingFace struct {
	client *resty.Client
	url    string
	model  string
}

// NewHuggingFace builds a client for baseURL/model. token may be empty for
// public endpoints.
func NewHuggingFace(baseURL, model, token string, timeout time.Duration) *HuggingFace {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HuggingFace{
		client: client,
		url:    strings.TrimRight(baseURL, "/") + "/" + model,
		model:  model,
	}
}

func (h *HuggingFace) Name() string { return "huggingface:" + h.model }

type hfLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// Classify returns the top-scoring label.
func (h *HuggingFace) Classify(ctx context.Context, text string) (Prediction, error) {
	var apiErr hfError
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"inputs": text}).
		SetError(&apiErr).
		Post(h.url)
	if err != nil {
		return Prediction{}, fmt.Errorf("huggingface request: %w", err)
	}
	if resp.IsError() {
		return Prediction{}, fmt.Errorf("huggingface returned %d: %s", resp.StatusCode(), apiErr.Error)
	}

	labels, err := decodeLabels(resp.Body())
	if err != nil {
		return Prediction{}, err
	}
	if len(labels) == 0 {
		return Prediction{}, fmt.Errorf("huggingface returned no labels")
	}

	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return Prediction{Label: ParseLabel(best.Label), Confidence: best.Score}, nil
}

// decodeLabels accepts both the nested [[...]] shape returned for a single
// input and the flat [...] shape some pipelines return.
func decodeLabels(body []byte) ([]hfLabel, error) {
	var nested [][]hfLabel
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}
	var flat []hfLabel
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("decoding huggingface response: %w", err)
	}
	return flat, nil
}
