package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures a logrus-backed Logger.
type Options struct {
	Writer io.Writer
	Level  Level
	Format Format
}

// logrusLogger implements Logger on top of a logrus entry so child loggers
// share the parent's output and level.
type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a Logger writing to opts.Writer (stdout when nil).
func New(opts Options) Logger {
	base := logrus.New()
	if opts.Writer != nil {
		base.SetOutput(opts.Writer)
	} else {
		base.SetOutput(os.Stdout)
	}
	base.SetLevel(opts.Level.logrus())

	switch opts.Format {
	case FormatText:
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg: "msg",
			},
		})
	}

	return &logrusLogger{entry: logrus.NewEntry(base)}
}

// NewJSONLogger creates a JSON logger at the given level.
func NewJSONLogger(writer io.Writer, level Level) Logger {
	return New(Options{Writer: writer, Level: level, Format: FormatJSON})
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

func (l *logrusLogger) Debug(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

func (l *logrusLogger) With(fields ...Field) Logger {
	return &logrusLogger{entry: l.entry.WithFields(toLogrusFields(fields))}
}

// SetLevel changes the level of the underlying logrus logger, which is
// shared with every child created through With.
func (l *logrusLogger) SetLevel(level Level) {
	l.entry.Logger.SetLevel(level.logrus())
}

func (l *logrusLogger) GetLevel() Level {
	return levelFromLogrus(l.entry.Logger.GetLevel())
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// End logs the operation with its duration
func (t *TimedOperation) End(extra ...Field) {
	fields := append(append([]Field{}, t.fields...), extra...)
	t.logger.Info(t.msg, append(fields, Latency(time.Since(t.start)))...)
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error) {
	fields := append([]Field{}, t.fields...)
	t.logger.Error(t.msg, append(fields, Latency(time.Since(t.start)), Error(err))...)
}
