package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fyrsmithlabs/primus/internal/ignore"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// sniffLen is how much of an unrecognised file is inspected for magic bytes.
const sniffLen = 262

var errTooLarge = errors.New("file exceeds max file size")

// scanPath reads a file or walks a directory.
func (r *Reader) scanPath(ctx context.Context, path string) []Block {
	info, err := os.Stat(path)
	if err != nil {
		r.logger.Warn(ctx, "skipping unreadable path", zap.String("path", path), zap.Error(err))
		return nil
	}
	if info.IsDir() {
		return r.scanDir(ctx, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case r.textExts[ext]:
		return r.readText(ctx, path, info.Size())
	case r.docExts[ext]:
		return []Block{placeholder(path)}
	default:
		return r.readUnknown(ctx, path, info.Size())
	}
}

// scanDir walks root in lexical order, one file at a time, collecting only
// files with a recognised extension.
func (r *Reader) scanDir(ctx context.Context, root string) []Block {
	var blocks []Block
	matcher := ignore.NewMatcher(root, r.opts.IgnoreFiles)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			r.logger.Warn(ctx, "skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if path != root && (ignore.DefaultSkipDirs[d.Name()] || matcher.Ignored(rel, true)) {
				r.logger.Trace(ctx, "skipping directory", zap.String("path", path))
				return filepath.SkipDir
			}
			if err := matcher.LoadDir(rel); err != nil {
				r.logger.Warn(ctx, "failed to read ignore file", zap.String("dir", path), zap.Error(err))
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !r.textExts[ext] && !r.docExts[ext] {
			return nil
		}
		if matcher.Ignored(rel, false) {
			r.logger.Trace(ctx, "skipping ignored file", zap.String("path", path))
			return nil
		}

		if r.docExts[ext] {
			blocks = append(blocks, placeholder(path))
			return nil
		}
		info, err := d.Info()
		if err != nil {
			r.logger.Warn(ctx, "skipping unreadable file", zap.String("path", path), zap.Error(err))
			return nil
		}
		blocks = append(blocks, r.readText(ctx, path, info.Size())...)
		return nil
	})
	if err != nil {
		r.logger.Warn(ctx, "directory scan stopped early", zap.String("path", root), zap.Error(err))
	}

	r.logger.Debug(ctx, "directory scanned", zap.String("path", root), zap.Int("files", len(blocks)))
	return blocks
}

// readText reads a recognised text file in full as one block.
func (r *Reader) readText(ctx context.Context, path string, size int64) []Block {
	content, err := r.readFile(path, size)
	if err != nil {
		r.logger.Warn(ctx, "skipping unreadable file", zap.String("path", path), zap.Error(err))
		return nil
	}
	return []Block{{Source: path, Kind: KindPath, Text: string(content)}}
}

// readUnknown handles a single file with an unrecognised extension: known
// binary formats are skipped, anything else is read if it is valid UTF-8.
func (r *Reader) readUnknown(ctx context.Context, path string, size int64) []Block {
	content, err := r.readFile(path, size)
	if err != nil {
		r.logger.Warn(ctx, "skipping unreadable file", zap.String("path", path), zap.Error(err))
		return nil
	}

	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		r.logger.Warn(ctx, "skipping unsupported binary file",
			zap.String("path", path), zap.String("mime", kind.MIME.Value))
		return nil
	}
	if !utf8.Valid(content) {
		r.logger.Warn(ctx, "skipping file with invalid text encoding", zap.String("path", path))
		return nil
	}
	return []Block{{Source: path, Kind: KindPath, Text: string(content)}}
}

func (r *Reader) readFile(path string, size int64) ([]byte, error) {
	if r.opts.MaxFileSize > 0 && size > r.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", errTooLarge, size, r.opts.MaxFileSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if r.opts.MaxFileSize > 0 {
		src = io.LimitReader(f, r.opts.MaxFileSize)
	}
	return io.ReadAll(src)
}

// placeholder names a document the scanner cannot parse, e.g.
// "Review PDF documentation: manual.pdf".
func placeholder(path string) Block {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	return Block{
		Source:      path,
		Kind:        KindPath,
		Text:        fmt.Sprintf("Review %s documentation: %s", ext, filepath.Base(path)),
		Placeholder: true,
	}
}
