package vision

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Provider interface using Google Gemini
type Gemini struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	suggestModel *genai.GenerativeModel
}

// NewGemini creates a new Gemini Provider instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	suggestModel := client.GenerativeModel(modelName)
	suggestModel.SetTemperature(0.7)

	return &Gemini{
		client:       client,
		model:        client.GenerativeModel(modelName),
		suggestModel: suggestModel,
	}, nil
}

// IdentifyItem names the most prominent grocery item in an image
func (g *Gemini) IdentifyItem(imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pngData, _, err := NormalizeImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	// genai.ImageData expects just the format suffix, and NormalizeImage
	// always hands back PNG
	parts := []genai.Part{
		genai.ImageData("png", pngData),
		genai.Text(identifyPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("no response from gemini")
	}
	return cleanModelText(text), nil
}

// SuggestProducts asks Gemini for a complementary-product suggestion
func (g *Gemini) SuggestProducts(productNames []string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := g.suggestModel.GenerateContent(ctx, genai.Text(suggestPrompt(productNames)))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("no response from gemini")
	}
	return text, nil
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
