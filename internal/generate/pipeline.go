// Package generate turns a user prompt into a durably stored, publicly
// addressable emoji image plus a catalog record.
//
// Side-effect ordering is load-bearing: the blob upload happens before the
// catalog insert, so a failed upload never leaves an orphan catalog row. The
// reverse gap is accepted as-is: a failed insert after a successful upload
// leaves an orphan blob behind, and no compensation is attempted.
package generate

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emojimaker/server/internal/fault"
	"github.com/emojimaker/server/internal/storage/model"
)

// Provider runs the image model and opens its output artifacts.
type Provider interface {
	Run(ctx context.Context, input map[string]interface{}) (interface{}, error)
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// BlobStore persists the image bytes under a key and resolves its public URL.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Catalog appends emoji records.
type Catalog interface {
	CreateEmoji(ctx context.Context, e *model.Emoji) error
}

// Result carries the public URL and an inline preview the caller can render
// without a second fetch.
type Result struct {
	ImageURL    string
	Base64Image string
}

const (
	promptPrefix = "A TOK emoji of a "
	contentType  = "image/png"

	// A 1024x1024 PNG is a few megabytes; anything past this is not an image
	// we produced.
	maxImageBytes = 16 << 20
)

// modelInput is the fixed generation policy attached to every request. The
// values are not exposed to callers and must not drift: they define the
// output's look.
func modelInput(prompt string) map[string]interface{} {
	return map[string]interface{}{
		"width":               1024,
		"height":              1024,
		"prompt":              promptPrefix + prompt,
		"refine":              "no_refiner",
		"scheduler":           "K_EULER",
		"lora_scale":          0.6,
		"num_outputs":         1,
		"guidance_scale":      7.5,
		"apply_watermark":     false,
		"high_noise_frac":     0.8,
		"negative_prompt":     "",
		"prompt_strength":     0.8,
		"num_inference_steps": 50,
	}
}

type Pipeline struct {
	logger   *zap.SugaredLogger
	provider Provider
	blobs    BlobStore
	catalog  Catalog
}

func NewPipeline(logger *zap.SugaredLogger, provider Provider, blobs BlobStore, catalog Catalog) *Pipeline {
	return &Pipeline{logger: logger, provider: provider, blobs: blobs, catalog: catalog}
}

// Generate renders promptText as an emoji image, uploads it and appends the
// catalog record. Exactly one blob write and at most one catalog insert
// happen per successful call; validation, provider and shape failures leave
// no side effects at all.
func (p *Pipeline) Generate(ctx context.Context, callerID, promptText string) (*Result, error) {
	promptText = strings.TrimSpace(promptText)
	if promptText == "" {
		return nil, fault.New(fault.KindValidation, "Prompt is required")
	}
	if callerID == "" {
		return nil, fault.New(fault.KindAuth, "Unauthorized")
	}

	p.logger.Infof("Generating emoji for prompt %q.", promptText)
	raw, err := p.provider.Run(ctx, modelInput(promptText))
	if err != nil {
		return nil, fault.Wrap(fault.KindProvider, "Failed to generate emoji", err)
	}

	ref, err := singleOutput(raw)
	if err != nil {
		return nil, err
	}

	// Shape is settled by singleOutput; a failure to fetch the artifact
	// from here on is the provider's.
	stream, err := p.provider.Open(ctx, ref)
	if err != nil {
		return nil, fault.Wrap(fault.KindProvider, "Failed to generate emoji", err)
	}

	image, err := readAllLimited(stream, maxImageBytes)
	stream.Close()
	if err != nil {
		return nil, fault.Wrap(fault.KindProvider, "Failed to generate emoji", err)
	}

	key := objectKey(time.Now())
	imageURL, err := p.blobs.Upload(ctx, key, contentType, image)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, "Failed to upload emoji", err)
	}

	rec := &model.Emoji{ImageURL: imageURL, Prompt: promptText, CreatorUserID: callerID}
	if err := p.catalog.CreateEmoji(ctx, rec); err != nil {
		// The blob stays behind; see the package comment.
		return nil, fault.Wrap(fault.KindPersistence, "Failed to save emoji data", err)
	}

	p.logger.Infof("Stored emoji %d at %s.", rec.ID, imageURL)
	return &Result{
		ImageURL:    imageURL,
		Base64Image: "data:image/png;base64," + base64.StdEncoding.EncodeToString(image),
	}, nil
}

// singleOutput validates that the provider returned a sequence of exactly
// one streamable artifact and returns its reference.
func singleOutput(raw interface{}) (string, error) {
	outs, ok := raw.([]interface{})
	if !ok {
		return "", fault.New(fault.KindUnexpectedShape, "Unexpected output format").
			WithDetail("output is %T, expected a sequence", raw)
	}
	if len(outs) != 1 {
		return "", fault.New(fault.KindUnexpectedShape, "Unexpected output format").
			WithDetail("expected exactly one output, got %d", len(outs))
	}
	ref, ok := outs[0].(string)
	if !ok || ref == "" {
		return "", fault.New(fault.KindUnexpectedShape, "Unexpected output format").
			WithDetail("output element is %T, not a streamable artifact", outs[0])
	}
	return ref, nil
}

// objectKey keeps the historical emoji_<millis> prefix and adds a random
// suffix so concurrent completions in the same millisecond cannot collide.
func objectKey(now time.Time) string {
	return fmt.Sprintf("emoji_%d_%s.png", now.UnixMilli(), uuid.NewString())
}

func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("model output exceeds %d bytes", limit)
	}
	return data, nil
}
