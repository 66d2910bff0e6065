package gen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math/rand"
	"net/http"
	"time"
)

const imageFXURL = "https://aisandbox-pa.googleapis.com/v1:runImageFx"

// ImageClient generates scene stills through the ImageFX API. Portrait
// aspect: scenes fill a vertical frame.
type ImageClient struct {
	authToken string
	client    *http.Client
	policy    RetryPolicy
}

func NewImageClient(authToken string) *ImageClient {
	return &ImageClient{
		authToken: authToken,
		client:    &http.Client{Timeout: 120 * time.Second},
		policy:    DefaultRetryPolicy(),
	}
}

type imageRequest struct {
	UserInput struct {
		CandidatesCount int    `json:"candidatesCount"`
		Prompt          string `json:"prompt"`
		Seed            int    `json:"seed"`
	} `json:"userInput"`
	AspectRatio string `json:"aspectRatio"`
}

type imageResponse struct {
	ImagePanels []struct {
		GeneratedImages []struct {
			EncodedImage string `json:"encodedImage"`
		} `json:"generatedImages"`
	} `json:"imagePanels"`
}

// Generate produces one still for the prompt.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (image.Image, error) {
	var img image.Image
	err := withBackoff(ctx, c.policy, "image generation", func() error {
		var callErr error
		img, callErr = c.call(ctx, prompt)
		return callErr
	})
	return img, err
}

func (c *ImageClient) call(ctx context.Context, prompt string) (image.Image, error) {
	var payload imageRequest
	payload.UserInput.CandidatesCount = 1
	payload.UserInput.Prompt = prompt
	payload.UserInput.Seed = rand.Intn(1 << 20)
	payload.AspectRatio = "IMAGE_ASPECT_RATIO_PORTRAIT"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, imageFXURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, string(respBody))
	}

	var parsed imageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, malformed("image JSON: %v", err)
	}
	if len(parsed.ImagePanels) == 0 || len(parsed.ImagePanels[0].GeneratedImages) == 0 {
		return nil, malformed("no image in response")
	}

	data, err := base64.StdEncoding.DecodeString(parsed.ImagePanels[0].GeneratedImages[0].EncodedImage)
	if err != nil {
		return nil, malformed("image base64: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, malformed("image decode: %v", err)
	}
	return img, nil
}
