// Package inference adapts the remote image-composition model. The
// adapter is the only place that inspects the shape of whatever the
// client library returns; everything above it sees the closed Result
// type.
package inference

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/stylefit/tryon-server/config"
)

const composeModel = "gemini-3-pro-image-preview"

const composePrompt = `Composite the garment from the second image onto the person in the first image.
Keep the person's face, pose and background unchanged.
Drape the garment naturally over the person's body and return only the resulting image.`

// Result is the normalized outcome of one composition attempt. Exactly
// one of the two arms is populated: OK with Image, or !OK with Reason.
// Duration is recorded either way.
type Result struct {
	OK       bool
	Image    []byte
	Reason   string
	Duration time.Duration
}

// Client invokes the hosted composition model. The remote endpoint is
// slow (tens of seconds, possibly queued) and fallible; callers bound
// every call with the configured timeout.
type Client struct {
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:  cfg.GeminiAPIKey,
		timeout: cfg.InferenceTimeout,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Compose fetches both images and asks the model for a composite. It
// never returns an error: every failure, including timeout, is folded
// into a !OK Result so the orchestrator can record it as a modeled
// business outcome.
func (c *Client) Compose(ctx context.Context, personImageURL, garmentImageURL string) Result {
	start := time.Now()

	fail := func(reason string) Result {
		return Result{OK: false, Reason: reason, Duration: time.Since(start)}
	}

	if c.apiKey == "" {
		return fail("GEMINI_API_KEY is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return fail(fmt.Sprintf("failed to create model client: %v", err))
	}
	defer client.Close()

	personImg, err := c.fetchImage(ctx, personImageURL)
	if err != nil {
		return fail(fmt.Sprintf("failed to fetch person image: %v", err))
	}
	garmentImg, err := c.fetchImage(ctx, garmentImageURL)
	if err != nil {
		return fail(fmt.Sprintf("failed to fetch garment image: %v", err))
	}

	model := client.GenerativeModel(composeModel)
	resp, err := model.GenerateContent(ctx,
		genai.Text(composePrompt),
		genai.ImageData("jpeg", personImg),
		genai.ImageData("jpeg", garmentImg),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fail("model timeout")
		}
		return fail(fmt.Sprintf("model request failed: %v", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return fail("model returned no content")
	}

	// The SDK can hand back inline blobs or text parts depending on the
	// model; only a blob counts as a usable composite.
	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
			return Result{OK: true, Image: blob.Data, Duration: time.Since(start)}
		}
	}

	return fail("model returned no image")
}

func (c *Client) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
