package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockConfig configures the Bedrock embedder.
type BedrockConfig struct {
	// Region is the AWS region hosting the model.
	Region string

	// Model is the Bedrock model identifier (default: amazon.titan-embed-text-v1).
	Model string

	// Dimensions is the expected embedding dimension (0 = Titan v1 default).
	Dimensions int
}

// DefaultBedrockModel is the default Bedrock embedding model.
const DefaultBedrockModel = "amazon.titan-embed-text-v1"

// BedrockEmbedder generates embeddings via the AWS Bedrock runtime API.
type BedrockEmbedder struct {
	client *bedrockruntime.Client
	model  string
	dims   int

	mu     sync.RWMutex
	closed bool
}

// titanRequest is the InvokeModel body for Titan embedding models.
type titanRequest struct {
	InputText string `json:"inputText"`
}

// titanResponse is the InvokeModel response for Titan embedding models.
type titanResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// NewBedrockEmbedder creates a Bedrock embedder using the default AWS
// credential chain.
func NewBedrockEmbedder(ctx context.Context, cfg BedrockConfig) (*BedrockEmbedder, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultBedrockModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = BedrockTitanDimensions
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &BedrockEmbedder{
		client: bedrockruntime.NewFromConfig(awsCfg),
		model:  cfg.Model,
		dims:   cfg.Dimensions,
	}, nil
}

// Embed generates an embedding for a single text.
func (e *BedrockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	body, err := json.Marshal(titanRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke failed for model %s: %w", e.model, err)
	}

	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode bedrock response: %w", err)
	}

	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("bedrock returned empty embedding for model %s", e.model)
	}
	if e.dims != 0 && len(resp.Embedding) != e.dims {
		return nil, fmt.Errorf("unexpected embedding dimension: got %d, want %d",
			len(resp.Embedding), e.dims)
	}

	return resp.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts. Titan embedding models
// accept one input per invocation, so the batch is issued sequentially.
func (e *BedrockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the embedding dimension.
func (e *BedrockEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *BedrockEmbedder) ModelName() string {
	return e.model
}

// Close releases resources.
func (e *BedrockEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Verify interface implementation
var _ Embedder = (*BedrockEmbedder)(nil)
