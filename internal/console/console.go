// Package console provides a leveled message sink backed by zerolog.
package console

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Console writes messages with optional key/value pairs to a logger.
type Console struct {
	logger zerolog.Logger
}

// New creates a Console writing to logger. A nil logger discards everything.
func New(logger *zerolog.Logger) *Console {
	if logger == nil {
		return &Console{logger: zerolog.Nop()}
	}
	return &Console{logger: *logger}
}

// Log writes msg without a level.
func (c *Console) Log(msg string, kv ...any) {
	write(c.logger.Log(), msg, kv)
}

// Info writes msg at info level.
func (c *Console) Info(msg string, kv ...any) {
	write(c.logger.Info(), msg, kv)
}

// Debug writes msg at debug level.
func (c *Console) Debug(msg string, kv ...any) {
	write(c.logger.Debug(), msg, kv)
}

// Warn writes msg at warn level.
func (c *Console) Warn(msg string, kv ...any) {
	write(c.logger.Warn(), msg, kv)
}

// Error writes msg at error level.
func (c *Console) Error(msg string, kv ...any) {
	write(c.logger.Error(), msg, kv)
}

// Assert writes msg at error level when cond is false.
func (c *Console) Assert(cond bool, msg string, kv ...any) {
	if cond {
		return
	}
	write(c.logger.Error().Bool("assertion", false), msg, kv)
}

// write attaches kv pairs to e and sends it. A trailing key without a value
// is logged under "!BADKEY", as slog does.
func write(e *zerolog.Event, msg string, kv []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			e = e.Interface("!BADKEY", kv[i])
			break
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
