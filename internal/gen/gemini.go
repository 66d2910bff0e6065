package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sseedwings2026/0114-shortform/internal/script"
)

const (
	geminiURL     = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	clientTimeout = 60 * time.Second
)

// GenerationResult is the collaborator's contract consumed by the engine:
// the three-part script feeds the timeline mapper, the image prompt count
// becomes the scene count.
type GenerationResult struct {
	Title        string         `json:"title"`
	Script       script.Content `json:"script"`
	ImagePrompts []string       `json:"image_prompts"`
	BGMPrompt    string         `json:"bgm_prompt"`
}

// Validate checks that a generated script is structurally usable.
func (r *GenerationResult) Validate() error {
	if r.Script.Hook == "" || r.Script.Body == "" || r.Script.Outro == "" {
		return malformed("script section missing (hook=%d body=%d outro=%d chars)",
			len(r.Script.Hook), len(r.Script.Body), len(r.Script.Outro))
	}
	if len(r.ImagePrompts) == 0 {
		return malformed("no image prompts")
	}
	return nil
}

// ScriptClient generates short-form scripts through the Gemini API.
type ScriptClient struct {
	apiKey string
	client *http.Client
	policy RetryPolicy
}

func NewScriptClient(apiKey string) *ScriptClient {
	return &ScriptClient{
		apiKey: apiKey,
		client: &http.Client{Timeout: clientTimeout},
		policy: DefaultRetryPolicy(),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate produces a script for the topic with exactly sceneCount image
// prompts (hook scene + interior body scenes + outro scene).
func (c *ScriptClient) Generate(ctx context.Context, topic string, sceneCount int) (*GenerationResult, error) {
	prompt := buildScriptPrompt(topic, sceneCount)

	var raw string
	err := withBackoff(ctx, c.policy, "script generation", func() error {
		var callErr error
		raw, callErr = c.call(ctx, prompt)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	result, err := parseGenerationResult(raw)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *ScriptClient) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", geminiURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, string(respBody))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", malformed("unmarshalling response: %v", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", malformed("no content in response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func buildScriptPrompt(topic string, sceneCount int) string {
	return fmt.Sprintf(`You write scripts for vertical short-form videos.
Topic: %s

Respond with strict JSON only, no markdown, matching this shape:
{"title": "...", "script": {"hook": "...", "body": "...", "outro": "..."},
 "image_prompts": [%d strings], "bgm_prompt": "..."}

Rules: hook is one attention-grabbing sentence, body is 2-4 short sentences,
outro is one call-to-action sentence. Plain prose, no markup. image_prompts[0]
illustrates the hook, the last one the outro, the rest the body in order.`,
		topic, sceneCount)
}

// parseGenerationResult tolerates models that wrap JSON in code fences.
func parseGenerationResult(raw string) (*GenerationResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result GenerationResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, malformed("script JSON: %v", err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}
