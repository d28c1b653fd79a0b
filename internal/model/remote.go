package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/denguess/denguess/internal/features"
	"github.com/denguess/denguess/internal/httputil"
)

// Remote calls an external model server for probabilities instead of the
// embedded forest. Used when the deployment keeps the fitted model behind
// its own service.
type Remote struct {
	baseURL string
	client  *http.Client
}

func NewRemote(baseURL string) *Remote {
	return &Remote{
		baseURL: baseURL,
		client:  httputil.NewClient(),
	}
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
	Order    []string           `json:"order"`
}

type predictResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

func (r *Remote) PredictProba(v *features.Vector) (float64, float64, error) {
	names := v.Names()
	values := v.Values()
	req := predictRequest{
		Features: make(map[string]float64, len(names)),
		Order:    names,
	}
	for i, name := range names {
		req.Features[name] = values[i]
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return 0, 0, fmt.Errorf("marshal predict request: %w", err)
	}

	var body []byte
	operation := func() error {
		resp, err := r.client.Post(r.baseURL+"/predict_proba", "application/json", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("predict: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("predict: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("predict: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, bo); err != nil {
		return 0, 0, err
	}

	var data predictResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, 0, fmt.Errorf("unmarshal: %w", err)
	}
	if len(data.Probabilities) < 2 {
		return 0, 0, fmt.Errorf("model server returned %d probabilities, want 2", len(data.Probabilities))
	}
	return data.Probabilities[0], data.Probabilities[1], nil
}
