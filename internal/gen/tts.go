package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const elevenLabsURL = "https://api.elevenlabs.io/v1"

// SpeechClient synthesizes the narration track through the ElevenLabs API.
type SpeechClient struct {
	apiKey  string
	voiceID string
	client  *http.Client
	policy  RetryPolicy
}

func NewSpeechClient(apiKey, voiceID string) *SpeechClient {
	return &SpeechClient{
		apiKey:  apiKey,
		voiceID: voiceID,
		client:  &http.Client{Timeout: 120 * time.Second},
		policy:  DefaultRetryPolicy(),
	}
}

type ttsRequest struct {
	Text          string                 `json:"text"`
	ModelID       string                 `json:"model_id"`
	VoiceSettings map[string]interface{} `json:"voice_settings"`
}

// Synthesize returns the narration audio (MP3 bytes) for the text.
func (c *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var audio []byte
	err := withBackoff(ctx, c.policy, "narration synthesis", func() error {
		var callErr error
		audio, callErr = c.call(ctx, text)
		return callErr
	})
	return audio, err
}

func (c *SpeechClient) call(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
		VoiceSettings: map[string]interface{}{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", elevenLabsURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, classifyStatus(resp.StatusCode, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, malformed("empty audio response")
	}
	return audio, nil
}
