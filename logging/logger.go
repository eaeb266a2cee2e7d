// Package logging provides the minimal structured logging sink the
// continuum and its collaborators emit diagnostics through. The sink is
// opaque to its callers: construction- and lookup-time messages are
// implementation-visible only, never part of the package's contract.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger instances provide custom logging.
type Logger interface {

	// Log with level ERROR
	Error(...interface{})

	// Log formatted messages with level ERROR
	Errorf(string, ...interface{})

	// Log with level WARN
	Warn(...interface{})

	// Log formatted messages with level WARN
	Warnf(string, ...interface{})

	// Log with level INFO
	Info(...interface{})

	// Log formatted messages with level INFO
	Infof(string, ...interface{})

	// Log with level DEBUG
	Debug(...interface{})

	// Log formatted messages with level DEBUG
	Debugf(string, ...interface{})

	WithFields(map[string]interface{}) Logger
}

// DefaultLog provides a default implementation of the Logger interface,
// backed by logrus.
type DefaultLog struct {
	logger *logrus.Logger
	fields map[string]interface{}
}

// New returns a DefaultLog writing through a freshly constructed logrus
// logger.
func New() *DefaultLog {
	return &DefaultLog{logger: logrus.New(), fields: map[string]interface{}{}}
}

func (dl *DefaultLog) Error(a ...interface{}) { dl.entry().Error(a...) }
func (dl *DefaultLog) Errorf(f string, a ...interface{}) {
	dl.entry().Errorf(f, a...)
}
func (dl *DefaultLog) Warn(a ...interface{}) { dl.entry().Warn(a...) }
func (dl *DefaultLog) Warnf(f string, a ...interface{}) {
	dl.entry().Warnf(f, a...)
}
func (dl *DefaultLog) Info(a ...interface{}) { dl.entry().Info(a...) }
func (dl *DefaultLog) Infof(f string, a ...interface{}) {
	dl.entry().Infof(f, a...)
}
func (dl *DefaultLog) Debug(a ...interface{}) { dl.entry().Debug(a...) }
func (dl *DefaultLog) Debugf(f string, a ...interface{}) {
	dl.entry().Debugf(f, a...)
}

func (dl *DefaultLog) entry() *logrus.Entry {
	return dl.logger.WithFields(dl.fields)
}

// WithFields returns a Logger that attaches fields to every subsequent
// message, in addition to any fields already attached. The receiver is
// left unmodified.
func (dl *DefaultLog) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(dl.fields)+len(fields))
	for k, v := range dl.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &DefaultLog{logger: dl.logger, fields: merged}
}

// SetOutput, SetLevel and SetFormatter configure the underlying logrus
// logger directly, for callers assembling a DefaultLog by hand (tests, CLI
// wiring) rather than taking defaults.
func (dl *DefaultLog) SetOutput(w io.Writer) {
	dl.logger.SetOutput(w)
}

func (dl *DefaultLog) SetLevel(level logrus.Level) {
	dl.logger.SetLevel(level)
}

func (dl *DefaultLog) SetFormatter(formatter logrus.Formatter) {
	dl.logger.SetFormatter(formatter)
}
