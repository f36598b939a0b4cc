package embedding

import (
	"context"
	"sync"
	"testing"
	"time"

	"wrongbook/internal/config"
	"wrongbook/internal/domain"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingClient struct {
	mu          sync.Mutex
	calls       int
	response    openai.EmbeddingResponse
	err         error
	hadDeadline bool
}

func (f *fakeEmbeddingClient) CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.mu.Lock()
	f.calls++
	_, f.hadDeadline = ctx.Deadline()
	f.mu.Unlock()
	return f.response, f.err
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]string)}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.items[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return val, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }

func newTestService(client embeddingClient, cacheAdapter domain.Cache) *AzureOpenAIEmbeddingService {
	return &AzureOpenAIEmbeddingService{
		client:     client,
		deployment: "text-embedding-ada-002",
		cache:      cacheAdapter,
		cfg:        &config.Config{},
	}
}

func TestGenerate_ReportsUsage(t *testing.T) {
	client := &fakeEmbeddingClient{
		response: openai.EmbeddingResponse{
			Data:  []openai.Embedding{{Embedding: []float32{0.1, 0.2, 0.3}}},
			Usage: openai.Usage{PromptTokens: 5, TotalTokens: 5},
		},
	}
	svc := newTestService(client, newMemoryCache())

	embedding, usage, err := svc.Generate(context.Background(), "photosynthesis overview")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
	assert.Equal(t, int64(5), usage.PromptTokens)
	assert.Equal(t, int64(0), usage.CompletionTokens)
	assert.Equal(t, int64(5), usage.TotalTokens)
}

func TestGenerate_CacheHitSkipsModelCall(t *testing.T) {
	client := &fakeEmbeddingClient{
		response: openai.EmbeddingResponse{
			Data:  []openai.Embedding{{Embedding: []float32{0.5, 0.5}}},
			Usage: openai.Usage{PromptTokens: 3, TotalTokens: 3},
		},
	}
	svc := newTestService(client, newMemoryCache())

	first, firstUsage, err := svc.Generate(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, int64(3), firstUsage.TotalTokens)

	second, secondUsage, err := svc.Generate(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Zero(t, secondUsage.TotalTokens)
	assert.Equal(t, 1, client.calls)
}

func TestGenerate_EmptyInput(t *testing.T) {
	svc := newTestService(&fakeEmbeddingClient{}, newMemoryCache())

	_, _, err := svc.Generate(context.Background(), "")
	assert.Error(t, err)
}

func TestGenerate_BoundsCallByTimeout(t *testing.T) {
	client := &fakeEmbeddingClient{
		response: openai.EmbeddingResponse{
			Data: []openai.Embedding{{Embedding: []float32{0.1}}},
		},
	}
	svc := newTestService(client, newMemoryCache())
	svc.timeout = time.Minute

	_, _, err := svc.Generate(context.Background(), "bounded call")
	require.NoError(t, err)
	assert.True(t, client.hadDeadline)
}

func TestGenerate_RejectsWrongDimensions(t *testing.T) {
	client := &fakeEmbeddingClient{
		response: openai.EmbeddingResponse{
			Data: []openai.Embedding{{Embedding: []float32{0.1, 0.2, 0.3}}},
		},
	}
	svc := newTestService(client, newMemoryCache())
	svc.dimensions = 2

	_, _, err := svc.Generate(context.Background(), "wrong size")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}
