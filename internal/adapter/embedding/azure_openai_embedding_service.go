package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"time"

	"wrongbook/internal/cache"
	"wrongbook/internal/config"
	"wrongbook/internal/domain"
	"wrongbook/internal/logger"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultEmbeddingTTL = 168 * time.Hour

// embeddingClient is the slice of the OpenAI client the service needs.
// Narrowed for testability.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// AzureOpenAIEmbeddingService implements domain.EmbeddingService against an
// Azure OpenAI embedding deployment. Vectors are cached in Redis keyed by a
// hash of the input text; a cache hit reports zero token usage since no
// model call was made.
type AzureOpenAIEmbeddingService struct {
	client     embeddingClient
	deployment string
	cache      domain.Cache
	cfg        *config.Config
	timeout    time.Duration
	dimensions int
	sfGroup    singleflight.Group
}

// embedResult pairs a vector with the usage of the call that produced it,
// so singleflight can hand both to every waiter.
type embedResult struct {
	Embedding []float32
	Usage     domain.TokenUsage
}

// NewAzureOpenAIEmbeddingService creates a new AzureOpenAIEmbeddingService.
func NewAzureOpenAIEmbeddingService(cfg *config.Config, cacheAdapter domain.Cache) (*AzureOpenAIEmbeddingService, error) {
	if cfg.AzureOpenAI.APIKey == "" {
		return nil, fmt.Errorf("azure openai API key cannot be empty")
	}
	if cfg.AzureOpenAI.Endpoint == "" {
		return nil, fmt.Errorf("azure openai endpoint cannot be empty")
	}

	clientConfig := openai.DefaultAzureConfig(cfg.AzureOpenAI.APIKey, cfg.AzureOpenAI.Endpoint)
	if cfg.AzureOpenAI.APIVersion != "" {
		clientConfig.APIVersion = cfg.AzureOpenAI.APIVersion
	}

	return &AzureOpenAIEmbeddingService{
		client:     openai.NewClientWithConfig(clientConfig),
		deployment: cfg.AzureOpenAI.EmbeddingDeployment,
		cache:      cacheAdapter,
		cfg:        cfg,
		timeout:    cfg.AzureOpenAI.Timeout,
		dimensions: cfg.VectorStore.Dimensions,
	}, nil
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Generate creates an embedding for the given text.
func (s *AzureOpenAIEmbeddingService) Generate(ctx context.Context, text string) ([]float32, domain.TokenUsage, error) {
	if text == "" {
		return nil, domain.TokenUsage{}, fmt.Errorf("input text cannot be empty for embedding")
	}

	log := logger.Get()
	cacheKey := cache.GenerateCacheKey("embedding", "azure", hashString(text))

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			var embedding []float32
			decoder := gob.NewDecoder(bytes.NewReader([]byte(cached)))
			if decodeErr := decoder.Decode(&embedding); decodeErr == nil {
				return embedding, domain.TokenUsage{}, nil
			}
			log.Warn("Failed to decode cached embedding, regenerating", zap.String("cacheKey", cacheKey))
		} else if err != domain.ErrCacheMiss {
			log.Warn("Embedding cache read failed", zap.Error(err), zap.String("cacheKey", cacheKey))
		}
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		callCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		resp, callErr := s.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: openai.EmbeddingModel(s.deployment),
		})
		if callErr != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", callErr)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, fmt.Errorf("received empty embedding without error")
		}
		if s.dimensions > 0 && len(resp.Data[0].Embedding) != s.dimensions {
			return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(resp.Data[0].Embedding), s.dimensions)
		}

		result := embedResult{
			Embedding: resp.Data[0].Embedding,
			Usage: domain.TokenUsage{
				PromptTokens: int64(resp.Usage.PromptTokens),
				TotalTokens:  int64(resp.Usage.TotalTokens),
			},
		}

		if s.cache != nil {
			var buffer bytes.Buffer
			if encodeErr := gob.NewEncoder(&buffer).Encode(result.Embedding); encodeErr != nil {
				log.Warn("Failed to gob encode embedding for caching", zap.Error(encodeErr))
				return result, nil
			}
			ttl := s.cfg.ParseTTLStringOrDefault(s.cfg.CacheTTLs.Embedding, defaultEmbeddingTTL)
			if setErr := s.cache.Set(ctx, cacheKey, buffer.String(), ttl); setErr != nil {
				log.Warn("Failed to cache embedding", zap.Error(setErr), zap.String("cacheKey", cacheKey))
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, domain.TokenUsage{}, err
	}

	result, ok := res.(embedResult)
	if !ok {
		return nil, domain.TokenUsage{}, fmt.Errorf("unexpected type from singleflight.Do for embedding: %T", res)
	}
	return result.Embedding, result.Usage, nil
}
