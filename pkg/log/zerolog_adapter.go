package log

import (
	"time"

	"github.com/arnavsurve/smokeshot/pkg/types"
	"github.com/rs/zerolog"
)

// ZerologAdapter implements types.Logger on top of zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewNopLogger discards everything. Runners fall back to it during validation.
func NewNopLogger() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}

// NewRouterLogger builds the run logger: timestamped zerolog JSON written into router.
func NewRouterLogger(router *Router, level zerolog.Level) *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.New(router).Level(level).With().Timestamp().Logger()}
}

func (z *ZerologAdapter) Debug() types.Event {
	return &ZerologEvent{event: z.logger.Debug()}
}

func (z *ZerologAdapter) Info() types.Event {
	return &ZerologEvent{event: z.logger.Info()}
}

func (z *ZerologAdapter) Warn() types.Event {
	return &ZerologEvent{event: z.logger.Warn()}
}

func (z *ZerologAdapter) Error() types.Event {
	return &ZerologEvent{event: z.logger.Error()}
}

func (z *ZerologAdapter) Fatal() types.Event {
	return &ZerologEvent{event: z.logger.Fatal()}
}

func (z *ZerologAdapter) With() types.Context {
	return &ZerologContext{ctx: z.logger.With()}
}

// ZerologEvent implements types.Event. A nil inner event (level disabled) is safe to use.
type ZerologEvent struct {
	event *zerolog.Event
}

func (e *ZerologEvent) Msg(msg string) {
	e.event.Msg(msg)
}

func (e *ZerologEvent) Msgf(format string, v ...any) {
	e.event.Msgf(format, v...)
}

func (e *ZerologEvent) Err(err error) types.Event {
	e.event = e.event.Err(err)
	return e
}

func (e *ZerologEvent) Interface(key string, value any) types.Event {
	e.event = e.event.Interface(key, value)
	return e
}

func (e *ZerologEvent) Str(key, value string) types.Event {
	e.event = e.event.Str(key, value)
	return e
}

func (e *ZerologEvent) Int(key string, value int) types.Event {
	e.event = e.event.Int(key, value)
	return e
}

func (e *ZerologEvent) Bool(key string, value bool) types.Event {
	e.event = e.event.Bool(key, value)
	return e
}

func (e *ZerologEvent) Dur(key string, d time.Duration) types.Event {
	e.event = e.event.Str(key, d.String())
	return e
}

// ZerologContext implements types.Context.
type ZerologContext struct {
	ctx zerolog.Context
}

func (c *ZerologContext) Str(key, value string) types.Context {
	return &ZerologContext{ctx: c.ctx.Str(key, value)}
}

func (c *ZerologContext) Int(key string, value int) types.Context {
	return &ZerologContext{ctx: c.ctx.Int(key, value)}
}

func (c *ZerologContext) Interface(key string, value any) types.Context {
	return &ZerologContext{ctx: c.ctx.Interface(key, value)}
}

func (c *ZerologContext) Timestamp() types.Context {
	return &ZerologContext{ctx: c.ctx.Timestamp()}
}

func (c *ZerologContext) Logger() types.Logger {
	return &ZerologAdapter{logger: c.ctx.Logger()}
}
