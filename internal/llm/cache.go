package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedClient memoizes successful responses for identical prompts
type CachedClient struct {
	inner Client
	cache *lru.Cache[string, string]
}

// NewCachedClient wraps inner with an LRU of the given size.
func NewCachedClient(inner Client, size int) (*CachedClient, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}
	return &CachedClient{inner: inner, cache: cache}, nil
}

// GenerateJSON returns a cached response when the same prompt was already answered for the tier.
func (c *CachedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	key := cacheKey(prompt, tier)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := c.inner.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, v)
	return v, nil
}

// Forget drops the cached response for a prompt, e.g. after it failed validation.
func (c *CachedClient) Forget(prompt string, tier ModelTier) {
	c.cache.Remove(cacheKey(prompt, tier))
}

// Len returns the number of cached responses.
func (c *CachedClient) Len() int {
	return c.cache.Len()
}

// GetModel returns the model name for a tier
func (c *CachedClient) GetModel(tier ModelTier) string {
	return c.inner.GetModel(tier)
}

// Close releases the wrapped client
func (c *CachedClient) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}

func cacheKey(prompt string, tier ModelTier) string {
	sum := sha256.Sum256([]byte(string(tier) + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
