package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ollama implements the Provider interface using a local Ollama instance.
// Vision-capable models (llava, qwen2-vl, bakllava) handle the identify path.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates a new Ollama Provider instance
func NewOllama(baseURL string, modelName string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llava"
	}

	return &Ollama{
		baseURL: baseURL,
		model:   modelName,
		client: &http.Client{
			// Local vision models can be slow
			Timeout: 120 * time.Second,
		},
	}, nil
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// IdentifyItem names the most prominent grocery item in an image
func (o *Ollama) IdentifyItem(imageData []byte, contentType string) (string, error) {
	pngData, _, err := NormalizeImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	text, err := o.chat([]ollamaMessage{
		{
			Role:    "user",
			Content: identifyPrompt,
			Images:  []string{base64.StdEncoding.EncodeToString(pngData)},
		},
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("no response from ollama")
	}
	return cleanModelText(text), nil
}

// SuggestProducts asks the model for a complementary-product suggestion
func (o *Ollama) SuggestProducts(productNames []string) (string, error) {
	text, err := o.chat([]ollamaMessage{
		{Role: "user", Content: suggestPrompt(productNames)},
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("no response from ollama")
	}
	return text, nil
}

// chat issues a non-streaming chat request and returns the reply text
func (o *Ollama) chat(messages []ollamaMessage) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	jsonData, err := json.Marshal(ollamaChatRequest{
		Model:    o.model,
		Stream:   false,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return strings.TrimSpace(chatResp.Message.Content), nil
}

// Close closes the Ollama client (no-op for HTTP client)
func (o *Ollama) Close() error {
	return nil
}
