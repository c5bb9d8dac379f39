package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for page generation.
	DefaultModel = "gemini-flash-lite-latest"
	// DefaultEmbeddingModel is the default model for generating embeddings
	DefaultEmbeddingModel = "gemini-embedding-001"
	// DefaultEmbeddingDimensions is the output dimension for embeddings (Matryoshka)
	DefaultEmbeddingDimensions = int32(768)
	// CaptionPrompt asks a multimodal model for a short description of an image.
	CaptionPrompt = "Describe this image in one short sentence. Mention the people, activity and setting you see."
)

// Generator produces raw text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configure a Gemini client. Empty fields fall back to defaults.
type Options struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	CaptionModel   string
	Dimensions     int32
	Temperature    float32
}

// Client represents a client for interacting with Gemini.
// It serves page generation, text embeddings and image captions.
type Client struct {
	apiKey         string
	modelName      string
	embeddingModel string
	captionModel   string
	dimensions     int32
	temperature    float32
	gClient        *genai.Client
}

// NewClient creates a new Gemini client.
// The API key comes from opts, then GEMINI_API_KEY or its alternative names.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			apiKey = os.Getenv("GOOGLE_AI_API_KEY")
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	c := &Client{
		apiKey:         apiKey,
		modelName:      opts.Model,
		embeddingModel: opts.EmbeddingModel,
		captionModel:   opts.CaptionModel,
		dimensions:     opts.Dimensions,
		temperature:    opts.Temperature,
	}
	if c.modelName == "" {
		c.modelName = DefaultModel
	}
	if c.embeddingModel == "" {
		c.embeddingModel = DefaultEmbeddingModel
	}
	if c.captionModel == "" {
		c.captionModel = c.modelName
	}
	if c.dimensions <= 0 {
		c.dimensions = DefaultEmbeddingDimensions
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.gClient = gClient

	return c, nil
}

// ModelName returns the generation model.
func (c *Client) ModelName() string {
	return c.modelName
}

// Generate sends the prompt to the generation model and returns the raw response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	var config *genai.GenerateContentConfig
	if c.temperature > 0 {
		temp := c.temperature
		config = &genai.GenerateContentConfig{Temperature: &temp}
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
			Role:  "user",
		}
	}

	dims := c.dimensions
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	}

	resp, err := c.gClient.Models.EmbedContent(ctx, c.embeddingModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings from API", len(texts))
	}

	vectors := make([][]float64, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("no embedding values returned for input %d", i)
		}
		vectors[i] = toFloat64(emb.Values)
	}
	return vectors, nil
}

// Caption describes an image with the multimodal caption model.
func (c *Client) Caption(ctx context.Context, path string, data []byte, mimeType string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			{Text: CaptionPrompt},
		},
		Role: "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.captionModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to caption %s: %w", path, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty caption for %s", path)
	}
	return text, nil
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
