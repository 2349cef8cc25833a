package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteModel calls a model server that speaks the TensorFlow Serving REST
// predict protocol: POST {"instances": [window]} and read
// {"predictions": [[v1, v2, ...]]}.
type RemoteModel struct {
	client *resty.Client
	url    string
	steps  int
}

// NewRemoteModel builds a client for a predict endpoint. steps is the
// number of values one call yields; 1 makes the model autoregressive.
func NewRemoteModel(url string, steps int, timeout time.Duration) *RemoteModel {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	if steps < 1 {
		steps = 1
	}
	return &RemoteModel{client: client, url: url, steps: steps}
}

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

func (r *RemoteModel) Name() string        { return "remote" }
func (r *RemoteModel) Autoregressive() bool { return r.steps == 1 }

func (r *RemoteModel) Predict(ctx context.Context, w Window, steps int) ([]float64, error) {
	var out predictResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(predictRequest{Instances: [][][]float64{w.Rows}}).
		SetResult(&out).
		SetError(&out).
		Post(r.url)
	if err != nil {
		return nil, fmt.Errorf("model server request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("model server returned %d: %s", resp.StatusCode(), out.Error)
	}
	if len(out.Predictions) == 0 || len(out.Predictions[0]) < steps {
		return nil, ErrShortPrediction
	}
	return out.Predictions[0], nil
}
