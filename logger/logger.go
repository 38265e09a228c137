// Package logger provides prefixed, colored loggers for the services of the server.
package logger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	errorColor = "\033[31m"
	infoColor  = "\033[32m"
	warnColor  = "\033[33m"
	debugColor = "\033[90m"
	resetColor = "\033[0m"
)

var (
	ErrEmptyPrefix = errors.New("logger prefix is empty")
	ErrNilWriter   = errors.New("logger writer is nil")
)

// Logger writes lines shaped like "[PREFIX] [LEVEL] message".
type Logger struct {
	entry *logrus.Entry
}

// New returns a logger whose prefix is printed in color.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, ErrEmptyPrefix
	}
	if w == nil {
		return nil, ErrNilWriter
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&prefixFormatter{prefix: prefix, color: color})

	return &Logger{entry: logrus.NewEntry(l)}, nil
}

// Info logs at info level.
func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}

// Warning logs at warning level.
func (l *Logger) Warning(msg string) {
	l.entry.Warn(msg)
}

// Error logs at error level.
func (l *Logger) Error(msg string) {
	l.entry.Error(msg)
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string) {
	l.entry.Debug(msg)
}

// With returns a logger carrying an extra field printed after the message.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

type prefixFormatter struct {
	prefix string
	color  string
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s[%s]%s %s[%s]%s %s",
		e.Time.Format("2006/01/02 15:04:05"),
		f.color, f.prefix, resetColor,
		levelColor(e.Level), strings.ToUpper(e.Level.String()), resetColor,
		e.Message,
	)
	for k, v := range e.Data {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelColor(level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return errorColor
	case logrus.WarnLevel:
		return warnColor
	case logrus.DebugLevel, logrus.TraceLevel:
		return debugColor
	default:
		return infoColor
	}
}
