package rxcore

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/xinjiayu/rxcore/pkg/slogx"
)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used by the engine. Passing nil restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

// Logger returns the logger used by the engine.
func Logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default().With(slogx.LoggerName("rxcore"))
}

func logUnhandledError(err error) {
	Logger().Warn("unhandled stream error", slogx.Error(err))
}

func logPanic(op string, err error) {
	Logger().Error("recovered panic", panicAttrs(op, err)...)
}

func panicAttrs(op string, err error) []any {
	attrs := []any{slog.String("op", op), slogx.Error(err)}
	var pe *PanicError
	if errors.As(err, &pe) {
		attrs = append(attrs, slog.String("stack", pe.StackTrace))
	}
	return attrs
}
