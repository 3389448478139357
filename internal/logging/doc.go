// Package logging provides structured logging for primus.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Stderr output, so command results on stdout stay machine-readable
//   - Optional append-only log file
//   - Automatic context field injection (scan run ID)
//   - Secret redaction at the encoder
//
// There is no package-level logger. Commands build one Logger and hand it to
// every constructor that needs it.
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	cfg.Output.File = "/home/me/.primus-os/primus.log"
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.Warn(ctx, "fetch failed", zap.String("url", target), zap.Error(err))
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	reader := scanner.NewReader(opts, tl.Logger)
//	tl.AssertLogged(t, zapcore.WarnLevel, "fetch failed")
package logging
