package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// zapLogger adapts a *zap.SugaredLogger to Logger, with a runtime-settable
// minimum level.
type zapLogger struct {
	base *zap.SugaredLogger
	lvl  *zap.AtomicLevel
}

// New returns a Logger backed by zap, writing to w at or above lvl. If
// rotatePath is non-empty, w is ignored and output instead goes through a
// lumberjack.Logger rotating at rotatePath.
func New(lvl Level, w io.Writer, rotatePath string) Logger {
	al := zap.NewAtomicLevelAt(toZapLevel(lvl))

	var sink zapcore.WriteSyncer
	if rotatePath != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   rotatePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	} else {
		if w == nil {
			w = os.Stderr
		}
		sink = zapcore.AddSync(w)
	}

	enc := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, sink, al)
	return &zapLogger{base: zap.New(core).Sugar(), lvl: &al}
}

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Info:
		return zapcore.InfoLevel
	case Warning:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

func (z *zapLogger) SetLevel(level Level) { z.lvl.SetLevel(toZapLevel(level)) }

func (z *zapLogger) Log(level Level, message string, params ...interface{}) {
	switch level {
	case Debug:
		z.base.Debugw(message, params...)
	case Info:
		z.base.Infow(message, params...)
	case Warning:
		z.base.Warnw(message, params...)
	case Error:
		z.base.Errorw(message, params...)
	default:
		z.base.Fatalw(message, params...)
	}
}

func (z *zapLogger) Debug(message string, params ...interface{})   { z.Log(Debug, message, params...) }
func (z *zapLogger) Info(message string, params ...interface{})    { z.Log(Info, message, params...) }
func (z *zapLogger) Warning(message string, params ...interface{}) { z.Log(Warning, message, params...) }
func (z *zapLogger) Error(message string, params ...interface{})   { z.Log(Error, message, params...) }
func (z *zapLogger) Fatal(message string, params ...interface{})   { z.Log(Fatal, message, params...) }
