// Package zaplog builds the logr.Logger backing logcall.LogrSink, using zap
// with defaults that suit call logs.
package zaplog

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/luxas/deklarative/instrument/filetest"
)

// LevelEncoder is a symbolic link to zapcore.LevelEncoder.
type LevelEncoder = zapcore.LevelEncoder

// LowercaseLevelEncoder encodes the level of JSON call logs. Info and debug
// levels are suffixed with "(v={V})", {V} being the logr verbosity, so a
// call entered through LogrSink.AtLevel(2) shows up as "debug(v=2)".
func LowercaseLevelEncoder() LevelEncoder {
	return verbosityLevelEncoder(zapcore.Level.String, "debug")
}

// CapitalLevelEncoder is like LowercaseLevelEncoder, but with upper-case
// level names. Used in console mode.
func CapitalLevelEncoder() LevelEncoder {
	return verbosityLevelEncoder(zapcore.Level.CapitalString, "DEBUG")
}

func verbosityLevelEncoder(name func(zapcore.Level) string, debug string) LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		str := name(l)
		if l < zap.DebugLevel {
			str = debug
		}
		if l <= zap.InfoLevel {
			str += "(v=" + strconv.Itoa(int(-l)) + ")"
		}
		enc.AppendString(str)
	}
}

// NewZap returns a *Builder for a logger writing JSON to os.Stdout at
// verbosity 0.
func NewZap() *Builder {
	return &Builder{out: os.Stdout}
}

// Builder builds a logr.Logger on top of zap. The zero value is not usable,
// use NewZap.
type Builder struct {
	out         io.Writer
	level       zapcore.Level
	console     bool
	development bool
	example     bool
}

// LogTo sets where to write logs. Writes are serialized with zapcore.Lock,
// so w doesn't need to be safe for concurrent use.
func (b *Builder) LogTo(w io.Writer) *Builder {
	b.out = w
	return b
}

// LogUpto sets the highest logr verbosity that is output. Calls logged
// through logcall.LogrSink.AtLevel(n) are only output if n <= logrLevel.
// zap levels are logr levels negated, so V(1) is zap's Debug level.
//
// Negative values are ignored, as logr disallows negative verbosity.
func (b *Builder) LogUpto(logrLevel int8) *Builder {
	if logrLevel >= 0 {
		b.level = zapcore.Level(-logrLevel)
	}
	return b
}

// Console writes tab-separated lines with upper-case levels and ISO8601
// timestamps instead of JSON.
func (b *Builder) Console() *Builder {
	b.console = true
	return b
}

// Development is Console using the development encoder configuration of zap,
// with short keys and colorless capital levels.
func (b *Builder) Development() *Builder {
	b.development = true
	return b.Console()
}

// Example omits timestamps and stack traces of errors, so the output is the
// same in every run.
func (b *Builder) Example() *Builder {
	b.example = true
	return b
}

// Test makes the logger write to the golden file testdata/<test name>.log of
// g, with stack traces removed using FilterStacktraceOrigins.
func (b *Builder) Test(g *filetest.Tester) *Builder {
	return b.LogTo(g.Add(g.T.Name() + ".log").Filter(FilterStacktraceOrigins).Writer())
}

// Build builds the logger. Its name is empty.
func (b *Builder) Build() logr.Logger {
	sink := zapcore.Lock(zapcore.AddSync(b.out))

	cfg := zap.NewProductionEncoderConfig()
	if b.development {
		cfg = zap.NewDevelopmentEncoderConfig()
	}
	cfg.EncodeLevel = LowercaseLevelEncoder()
	if b.console || b.example {
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeDuration = zapcore.StringDurationEncoder
	}

	stacktraceLevel := zap.ErrorLevel
	if b.example {
		cfg.TimeKey = zapcore.OmitKey
		stacktraceLevel = zap.DPanicLevel
	}

	encoder := zapcore.NewJSONEncoder(cfg)
	if b.console {
		cfg.EncodeLevel = CapitalLevelEncoder()
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, sink, b.level)
	return zapr.NewLogger(zap.New(core, zap.AddStacktrace(stacktraceLevel), zap.ErrorOutput(sink)))
}

// FilterStacktraceOrigins removes every line in content that starts with a
// tab, i.e. the call stack output of a console logger, as the exact lines
// vary across Go versions.
func FilterStacktraceOrigins(content []byte) []byte {
	s := bufio.NewScanner(bytes.NewReader(content))
	out := make([]byte, 0, len(content))
	for s.Scan() {
		line := s.Bytes()
		if bytes.HasPrefix(line, []byte("\t")) {
			continue
		}

		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}
