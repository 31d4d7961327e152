package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/loomcli/loom/pkg/edit"
	"github.com/pkg/errors"
)

const (
	// ClaudeAPIEndpoint is the Anthropic API endpoint.
	ClaudeAPIEndpoint = "https://api.anthropic.com/v1/messages"
	// ClaudeModel is the default model to use.
	ClaudeModel = "claude-sonnet-4-20250514"
	// ClaudeAPIVersion is the API version.
	ClaudeAPIVersion = "2023-06-01"
)

// Client generates edit batches via the Claude API. From the core's point
// of view it is an opaque function from text plus context to a structured
// edit proposal.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	endpoint   string
	cache      *Cache
}

// NewClient creates a new Claude API client.
func NewClient(apiKey, model string) (client *Client) {
	if model == "" {
		model = ClaudeModel
	}
	client = &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: ClaudeAPIEndpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	return client
}

// WithCache attaches a response cache to the client.
func (c *Client) WithCache(cache *Cache) (client *Client) {
	c.cache = cache
	client = c
	return client
}

// Model returns the model this client generates with.
func (c *Client) Model() (model string) {
	model = c.model
	return model
}

// GenerateEdits produces an edit batch tailoring the numbered resume to the
// job description.
func (c *Client) GenerateEdits(ctx context.Context, jobText, numberedResume string) (batch edit.Batch, err error) {
	prompt := buildGeneratePrompt(jobText, numberedResume, c.model, time.Now().UTC().Format(time.RFC3339))

	var responseText string
	responseText, err = c.sendCached(ctx, prompt)
	if err != nil {
		err = errors.Wrap(err, "edit generation request failed")
		return batch, err
	}

	batch, err = parseBatchResponse(responseText)
	if err != nil {
		err = errors.Wrap(err, "failed to parse generated edits")
		return batch, err
	}

	return batch, err
}

// CorrectEdits produces a corrected edit batch given the current batch JSON
// and the validation warnings it triggered.
func (c *Client) CorrectEdits(ctx context.Context, jobText, numberedResume, currentEditsJSON string, warnings []string) (batch edit.Batch, err error) {
	prompt := buildCorrectionPrompt(jobText, numberedResume, currentEditsJSON, warnings, c.model, time.Now().UTC().Format(time.RFC3339))

	// Correction prompts bypass the cache: the same warnings should still
	// reach the model fresh on every retry round.
	var responseText string
	responseText, err = c.sendRequest(ctx, prompt)
	if err != nil {
		err = errors.Wrap(err, "edit correction request failed")
		return batch, err
	}

	batch, err = parseBatchResponse(responseText)
	if err != nil {
		err = errors.Wrap(err, "failed to parse corrected edits")
		return batch, err
	}

	return batch, err
}

// sendCached consults the response cache before hitting the API.
func (c *Client) sendCached(ctx context.Context, prompt string) (responseText string, err error) {
	if c.cache != nil {
		if cached, hit := c.cache.Get(prompt, c.model); hit {
			responseText = cached
			return responseText, err
		}
	}

	responseText, err = c.sendRequest(ctx, prompt)
	if err != nil {
		return responseText, err
	}

	if c.cache != nil {
		// A failed cache write never fails the generation.
		_ = c.cache.Put(prompt, c.model, responseText)
	}

	return responseText, err
}

// sendRequest sends a request to the Claude API.
func (c *Client) sendRequest(ctx context.Context, prompt string) (responseText string, err error) {
	claudeReq := ClaudeRequest{
		Model:     c.model,
		MaxTokens: 4096,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	var reqBody []byte
	reqBody, err = json.Marshal(claudeReq)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return responseText, err
	}

	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return responseText, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", ClaudeAPIVersion)

	var resp *http.Response
	resp, err = c.httpClient.Do(httpReq)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return responseText, err
	}
	defer resp.Body.Close()

	var respBody []byte
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return responseText, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		return responseText, err
	}

	var claudeResp ClaudeResponse
	err = json.Unmarshal(respBody, &claudeResp)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse Claude response: %s", string(respBody))
		return responseText, err
	}

	if len(claudeResp.Content) == 0 {
		err = errors.New("no content in Claude response")
		return responseText, err
	}

	responseText = claudeResp.Content[0].Text

	return responseText, err
}

// parseBatchResponse turns raw model output into a validated edit batch.
// Markdown code fences are stripped first since models wrap JSON in them
// despite instructions. The batch must carry the supported version and a
// meta record before it is allowed near validation.
func parseBatchResponse(responseText string) (batch edit.Batch, err error) {
	cleanedText := stripMarkdownCodeFences(responseText)

	batch, err = edit.ParseBatch([]byte(cleanedText))
	if err != nil {
		err = errors.Wrapf(err, "model returned invalid edit batch: %s", snippet(cleanedText))
		return batch, err
	}

	if batch.Meta == (edit.Meta{}) {
		err = errors.New("model response missing required 'meta' field")
		return batch, err
	}

	if batch.Ops == nil {
		err = errors.New("model response missing required 'ops' field")
		return batch, err
	}

	return batch, err
}

// snippet trims model output for error messages.
func snippet(text string) (trimmed string) {
	const maxLen = 240
	trimmed = text
	if len(trimmed) > maxLen {
		trimmed = trimmed[:maxLen] + "..."
	}
	return trimmed
}

// stripMarkdownCodeFences removes markdown code fences from JSON responses.
func stripMarkdownCodeFences(text string) (cleaned string) {
	cleaned = text

	if len(cleaned) > 7 && cleaned[:7] == "```json" {
		// Find first newline after ```json
		start := 7
		for start < len(cleaned) && cleaned[start] != '\n' {
			start++
		}
		start++ // skip the newline

		// Find last ```
		end := len(cleaned)
		if end > 3 && cleaned[end-3:] == "```" {
			end -= 3
		}

		// Remove trailing whitespace before ```
		for end > 0 && (cleaned[end-1] == '\n' || cleaned[end-1] == ' ' || cleaned[end-1] == '\r') {
			end--
		}

		cleaned = cleaned[start:end]
	}

	return cleaned
}
