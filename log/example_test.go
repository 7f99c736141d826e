package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/automaton/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithPretty(false))
	logger.Info("dispatch started", slog.Int("ops", 3))
	// Output:
	// level=INFO msg="dispatch started" ops=3
}

func Example_levelVar() {
	var threshold slog.LevelVar

	logger := log.Make(os.Stdout,
		log.WithTimeLayout("none"),
		log.WithPretty(false),
		log.WithLevelVar(&threshold))

	logger.Debug("hidden")

	threshold.Set(slog.Level(log.LevelInfo.Louder()))
	logger.Debug("shown")
	// Output:
	// level=DEBUG msg=shown
}

func Example_withContext() {
	type requestIDKey struct{}

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-789")

	logger := log.Make(os.Stdout, log.WithFormat(log.FormatJSON))
	logger.InfoContext(ctx, "processing request with context")
}
