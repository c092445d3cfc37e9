// Package provider adapts the Replicate image-synthesis API. The call is
// synchronous from the caller's point of view: Run blocks until the
// prediction completes, often for tens of seconds, and the caller's context
// cancels it on disconnect.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/replicate/replicate-go"
	"go.uber.org/zap"
)

// Version pins the emoji model. The generation parameters that go with it
// live in the pipeline's input block.
const Version = "fofr/sdxl-emoji:dee76b5afde21b0f01ed7925f0665b7e879c50ee718c5f78a9d38e04d523cc5e"

type Replicate struct {
	logger *zap.SugaredLogger
	client *replicate.Client
	httpc  *http.Client
}

func NewReplicate(logger *zap.SugaredLogger, token string) (*Replicate, error) {
	client, err := replicate.NewClient(replicate.WithToken(token))
	if err != nil {
		return nil, fmt.Errorf("couldn't create replicate client: %w", err)
	}

	return &Replicate{logger: logger, client: client, httpc: http.DefaultClient}, nil
}

// Run executes the pinned model with the given input and returns the raw
// prediction output. The output's shape is the pipeline's problem; errors
// keep the provider's status and body in their message.
func (r *Replicate) Run(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	out, err := r.client.Run(ctx, Version, replicate.PredictionInput(input), nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Open streams one output artifact by its URL.
func (r *Replicate) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := r.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("fetching output %q: unexpected status %s", url, res.Status)
	}

	return res.Body, nil
}
