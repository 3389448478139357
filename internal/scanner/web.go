package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// droppedElements hold no readable prose.
var droppedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// scanURL fetches target and returns its visible text as one block.
func (r *Reader) scanURL(ctx context.Context, target string) []Block {
	text, err := r.fetch(ctx, target)
	if errors.Is(err, errTooLarge) {
		r.logger.Warn(ctx, "skipping oversized page",
			zap.String("url", target), zap.Int64("max_file_size", r.opts.MaxFileSize), zap.Error(err))
		return nil
	}
	if err != nil {
		r.logger.Warn(ctx, "fetch failed", zap.String("url", target), zap.Error(err))
		return nil
	}
	if strings.TrimSpace(text) == "" {
		r.logger.Debug(ctx, "fetched page has no text", zap.String("url", target))
		return nil
	}
	return []Block{{Source: target, Kind: KindURL, Text: text}}
}

func (r *Reader) fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	if r.opts.UserAgent != "" {
		req.Header.Set("User-Agent", r.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw, err := r.readBody(resp)
	if err != nil {
		return "", err
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/plain" || mediaType == "text/markdown" {
		return string(raw), nil
	}
	return StripMarkup(bytes.NewReader(raw))
}

// readBody reads one byte past MaxFileSize so an oversized page is
// rejected like an oversized file instead of being cut short.
func (r *Reader) readBody(resp *http.Response) ([]byte, error) {
	limit := r.opts.MaxFileSize
	if limit <= 0 {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}
		return raw, nil
	}
	if resp.ContentLength > limit {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", errTooLarge, resp.ContentLength, limit)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", errTooLarge, limit)
	}
	return raw, nil
}

// StripMarkup returns the text nodes of an HTML document joined by newlines.
// Contents of script, style, noscript and template elements are dropped.
func StripMarkup(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var parts []string
	depth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("failed to parse html: %w", err)
			}
			return strings.Join(parts, "\n"), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if droppedElements[string(name)] {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if droppedElements[string(name)] && depth > 0 {
				depth--
			}
		case html.TextToken:
			if depth > 0 {
				continue
			}
			if text := strings.TrimSpace(string(z.Text())); text != "" {
				parts = append(parts, text)
			}
		}
	}
}
