package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/interp/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	logger.Info("generated", slog.String("file", "greet_interp.go"), slog.Int("calls", 2))
	logger.Debug("not shown at the default level")
	// Output:
	// level=INFO msg=generated file=greet_interp.go calls=2
}

func Example_with() {
	logger := log.Make(os.Stdout, log.WithPretty(false), log.WithTimeLayout("none")).
		With(slog.String("dialect", "dollar"))

	logger.Warn("dangling delimiter", slog.Int("column", 7))
	// Output:
	// level=WARN msg="dangling delimiter" dialect=dollar column=7
}
