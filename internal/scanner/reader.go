package scanner

import (
	"context"
	"net/http"

	"github.com/fyrsmithlabs/primus/internal/logging"
	"go.uber.org/zap"
)

// Reader produces text blocks from scan targets. It holds no per-scan state
// and is safe to reuse.
type Reader struct {
	opts     Options
	client   *http.Client
	logger   *logging.Logger
	textExts map[string]bool
	docExts  map[string]bool
}

// NewReader creates a Reader. A nil logger discards diagnostics.
func NewReader(opts Options, logger *logging.Logger) *Reader {
	if logger == nil {
		logger = logging.NewNop()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Reader{
		opts:     opts,
		client:   client,
		logger:   logger.Named("scanner"),
		textExts: extensionSet(opts.TextExtensions),
		docExts:  extensionSet(opts.DocumentExtensions),
	}
}

// Scan classifies target and returns its blocks. It never fails: problems
// are logged and yield no blocks.
func (r *Reader) Scan(ctx context.Context, target string) []Block {
	if target == "" {
		return nil
	}
	kind := Classify(target)
	r.logger.Debug(ctx, "scanning target", zap.String("target", target), zap.Stringer("kind", kind))

	switch kind {
	case KindPath:
		return r.scanPath(ctx, target)
	case KindURL:
		return r.scanURL(ctx, target)
	default:
		return []Block{{Source: "<text>", Kind: KindText, Text: target}}
	}
}

// ScanAll scans each target in order. A failing target does not stop the
// batch; a cancelled context does.
func (r *Reader) ScanAll(ctx context.Context, targets []string) []Block {
	var blocks []Block
	for i, target := range targets {
		if ctx.Err() != nil {
			r.logger.Warn(ctx, "scan cancelled", zap.Int("remaining", len(targets)-i), zap.Error(ctx.Err()))
			break
		}
		blocks = append(blocks, r.Scan(ctx, target)...)
	}
	return blocks
}
