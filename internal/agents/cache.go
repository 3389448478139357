package agents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 256

// CachingClient memoizes replies for identical requests. A scan that finds
// the same task in several files only pays for one analysis.
type CachingClient struct {
	next  Client
	cache *lru.Cache[string, string]
}

// NewCachingClient wraps next with an LRU cache of size entries.
func NewCachingClient(next Client, size int) (*CachingClient, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}
	return &CachingClient{next: next, cache: cache}, nil
}

// Complete returns a cached reply or forwards to the wrapped client.
// Errors are never cached.
func (c *CachingClient) Complete(ctx context.Context, req Request) (string, error) {
	key := cacheKey(req)
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}
	text, err := c.next.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, text)
	return text, nil
}

// Len reports the number of cached replies.
func (c *CachingClient) Len() int {
	return c.cache.Len()
}

func cacheKey(req Request) string {
	h := sha256.New()
	for _, part := range []string{
		req.System,
		req.Prompt,
		strconv.FormatFloat(req.Temperature, 'f', -1, 64),
		strconv.Itoa(req.MaxTokens),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
