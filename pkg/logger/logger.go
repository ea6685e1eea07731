// Package logger provides structured logging for valreport.
// It wraps uber-go/zap with a key=value console format and rotated file output.
package logger

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Field keys shared by every stage of report generation
const (
	FieldRecordID     = "record_id"
	FieldGenerationID = "generation_id"
	FieldFormat       = "format"
	FieldStage        = "stage"
)

var bufferpool = buffer.NewPool()

var (
	globalLogger *zap.Logger
	once         sync.Once
)

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `yaml:"level"`
	// Format is the output format (json, text)
	Format string `yaml:"format"`
	// File is the log file path; when set, logs go to both console and file
	File string `yaml:"file"`
	// MaxSize is the size in megabytes before the log file is rotated
	MaxSize int `yaml:"max_size"`
	// MaxAge is the number of days to retain rotated files
	MaxAge int `yaml:"max_age"`
	// MaxBackups is the number of rotated files to retain
	MaxBackups int `yaml:"max_backups"`
	// Compress gzips rotated files
	Compress bool `yaml:"compress"`
	// AccessLog prints successful HTTP requests at info level
	AccessLog bool `yaml:"access_log"`
}

// Init initializes the global logger. Only the first call takes effect.
func Init(cfg Config) error {
	var initErr error
	once.Do(func() {
		initErr = initLogger(cfg)
	})
	return initErr
}

func initLogger(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 7
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}

	var consoleEnc, fileEnc zapcore.Encoder
	if cfg.Format == "text" {
		consoleEnc = newKVConsoleEncoder(textEncoderConfig(bracketColorLevelEncoder))
		fileEnc = newKVConsoleEncoder(textEncoderConfig(bracketLevelEncoder))
	} else {
		consoleEnc = zapcore.NewJSONEncoder(jsonEncoderConfig())
		fileEnc = consoleEnc
	}

	globalLogger = zap.New(buildCore(consoleEnc, fileEnc, level, cfg),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	return nil
}

// buildCore tees console output with a lumberjack-rotated file when configured.
func buildCore(consoleEnc, fileEnc zapcore.Encoder, level zapcore.Level, cfg Config) zapcore.Core {
	consoleCore := zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stdout), level)
	if cfg.File == "" {
		return consoleCore
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v, using console only\n", err)
		return consoleCore
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})
	return zapcore.NewTee(consoleCore, zapcore.NewCore(fileEnc, fileWriter, level))
}

func textEncoderConfig(levelEncoder zapcore.LevelEncoder) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          zapcore.OmitKey,
		CallerKey:        "caller",
		FunctionKey:      zapcore.OmitKey,
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      levelEncoder,
		EncodeTime:       bracketTimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// bracketTimeEncoder formats time as [2006-01-02 15:04:05]
func bracketTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format("2006-01-02 15:04:05") + "]")
}

// bracketLevelEncoder formats level as [INFO]
func bracketLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + level.CapitalString() + "]")
}

// bracketColorLevelEncoder formats level as [INFO] wrapped in ANSI color
func bracketColorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var color string
	switch level {
	case zapcore.DebugLevel:
		color = "\x1b[35m"
	case zapcore.InfoLevel:
		color = "\x1b[34m"
	case zapcore.WarnLevel:
		color = "\x1b[33m"
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		color = "\x1b[31m"
	default:
		color = "\x1b[0m"
	}
	enc.AppendString(color + "[" + level.CapitalString() + "]" + "\x1b[0m")
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	err := l.UnmarshalText([]byte(level))
	return l, err
}

// Get returns the global logger, or a no-op logger before Init.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Sugar returns the sugared global logger
func Sugar() *zap.SugaredLogger {
	return Get().Sugar()
}

// With creates a child logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Named creates a child logger with the given name
func Named(name string) *zap.Logger {
	return Get().Named(name)
}

// WithGeneration returns a child logger tagged with a generation and its source record.
// Empty ids are omitted.
//
//	log := logger.WithGeneration(genID, recordID)
//	log.Info("[Report] Rendering")
func WithGeneration(generationID, recordID string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if generationID != "" {
		fields = append(fields, zap.String(FieldGenerationID, generationID))
	}
	if recordID != "" {
		fields = append(fields, zap.String(FieldRecordID, recordID))
	}
	return Get().With(fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	Get().WithOptions(zap.AddCallerSkip(1)).Fatal(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// kvConsoleEncoder wraps the console encoder but prints fields as key=value
type kvConsoleEncoder struct {
	zapcore.Encoder
	cfg zapcore.EncoderConfig
}

func newKVConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &kvConsoleEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
		cfg:     cfg,
	}
}

// Clone creates a copy of the encoder
func (e *kvConsoleEncoder) Clone() zapcore.Encoder {
	return &kvConsoleEncoder{
		Encoder: e.Encoder.Clone(),
		cfg:     e.cfg,
	}
}

// EncodeEntry writes time, level, caller and message followed by key=value fields
func (e *kvConsoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufferpool.Get()

	appendPrefix := func(encode func(arr *sliceArrayEncoder)) {
		arr := &sliceArrayEncoder{}
		encode(arr)
		for _, s := range arr.elems {
			buf.AppendString(s)
			buf.AppendString(e.cfg.ConsoleSeparator)
		}
	}

	if e.cfg.TimeKey != "" && e.cfg.EncodeTime != nil {
		appendPrefix(func(arr *sliceArrayEncoder) { e.cfg.EncodeTime(entry.Time, arr) })
	}
	if e.cfg.LevelKey != "" && e.cfg.EncodeLevel != nil {
		appendPrefix(func(arr *sliceArrayEncoder) { e.cfg.EncodeLevel(entry.Level, arr) })
	}
	if e.cfg.CallerKey != "" && entry.Caller.Defined && e.cfg.EncodeCaller != nil {
		appendPrefix(func(arr *sliceArrayEncoder) { e.cfg.EncodeCaller(entry.Caller, arr) })
	}

	if e.cfg.MessageKey != "" {
		buf.AppendString(entry.Message)
	}

	for _, field := range fields {
		buf.AppendString(e.cfg.ConsoleSeparator)
		buf.AppendString(field.Key)
		buf.AppendByte('=')
		appendFieldValue(buf, field)
	}

	if e.cfg.LineEnding != "" {
		buf.AppendString(e.cfg.LineEnding)
	} else {
		buf.AppendString(zapcore.DefaultLineEnding)
	}

	return buf, nil
}

// sliceArrayEncoder collects encoder output as strings
type sliceArrayEncoder struct {
	elems []string
}

func (s *sliceArrayEncoder) add(v any)                      { s.elems = append(s.elems, fmt.Sprint(v)) }
func (s *sliceArrayEncoder) AppendBool(v bool)              { s.add(v) }
func (s *sliceArrayEncoder) AppendByteString(v []byte)      { s.elems = append(s.elems, string(v)) }
func (s *sliceArrayEncoder) AppendComplex128(v complex128)  { s.add(v) }
func (s *sliceArrayEncoder) AppendComplex64(v complex64)    { s.add(v) }
func (s *sliceArrayEncoder) AppendFloat64(v float64)        { s.add(v) }
func (s *sliceArrayEncoder) AppendFloat32(v float32)        { s.add(v) }
func (s *sliceArrayEncoder) AppendInt(v int)                { s.add(v) }
func (s *sliceArrayEncoder) AppendInt64(v int64)            { s.add(v) }
func (s *sliceArrayEncoder) AppendInt32(v int32)            { s.add(v) }
func (s *sliceArrayEncoder) AppendInt16(v int16)            { s.add(v) }
func (s *sliceArrayEncoder) AppendInt8(v int8)              { s.add(v) }
func (s *sliceArrayEncoder) AppendString(v string)          { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendUint(v uint)              { s.add(v) }
func (s *sliceArrayEncoder) AppendUint64(v uint64)          { s.add(v) }
func (s *sliceArrayEncoder) AppendUint32(v uint32)          { s.add(v) }
func (s *sliceArrayEncoder) AppendUint16(v uint16)          { s.add(v) }
func (s *sliceArrayEncoder) AppendUint8(v uint8)            { s.add(v) }
func (s *sliceArrayEncoder) AppendUintptr(v uintptr)        { s.add(v) }
func (s *sliceArrayEncoder) AppendDuration(v time.Duration) { s.elems = append(s.elems, v.String()) }
func (s *sliceArrayEncoder) AppendTime(v time.Time)         { s.elems = append(s.elems, v.String()) }
func (s *sliceArrayEncoder) AppendArray(v zapcore.ArrayMarshaler) error {
	return v.MarshalLogArray(s)
}
func (s *sliceArrayEncoder) AppendObject(v zapcore.ObjectMarshaler) error {
	return nil
}
func (s *sliceArrayEncoder) AppendReflected(v interface{}) error {
	s.add(v)
	return nil
}

func appendFieldValue(buf *buffer.Buffer, field zapcore.Field) {
	switch field.Type {
	case zapcore.StringType:
		buf.AppendString(field.String)
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		buf.AppendInt(field.Integer)
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		buf.AppendUint(uint64(field.Integer))
	case zapcore.Float64Type:
		buf.AppendFloat(math.Float64frombits(uint64(field.Integer)), 64)
	case zapcore.Float32Type:
		buf.AppendFloat(float64(math.Float32frombits(uint32(field.Integer))), 32)
	case zapcore.BoolType:
		buf.AppendBool(field.Integer == 1)
	case zapcore.DurationType:
		buf.AppendString(time.Duration(field.Integer).String())
	case zapcore.TimeType:
		if loc, ok := field.Interface.(*time.Location); ok {
			buf.AppendString(time.Unix(0, field.Integer).In(loc).String())
		} else {
			buf.AppendString(time.Unix(0, field.Integer).String())
		}
	case zapcore.TimeFullType:
		buf.AppendString(field.Interface.(time.Time).String())
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok && err != nil {
			buf.AppendString(err.Error())
		} else {
			buf.AppendString("<nil>")
		}
	case zapcore.StringerType:
		if stringer, ok := field.Interface.(fmt.Stringer); ok {
			buf.AppendString(stringer.String())
		}
	default:
		if field.Interface != nil {
			buf.AppendString(fmt.Sprint(field.Interface))
		}
	}
}
