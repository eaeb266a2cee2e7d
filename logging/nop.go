package logging

// nopLog discards everything written to it. It backs continuum.New's
// default logger, so building a ring without an explicit logger costs
// nothing.
type nopLog struct{}

// NewNop returns a Logger that discards every message.
func NewNop() Logger { return nopLog{} }

func (nopLog) Error(...interface{})          {}
func (nopLog) Errorf(string, ...interface{}) {}
func (nopLog) Warn(...interface{})           {}
func (nopLog) Warnf(string, ...interface{})  {}
func (nopLog) Info(...interface{})           {}
func (nopLog) Infof(string, ...interface{})  {}
func (nopLog) Debug(...interface{})          {}
func (nopLog) Debugf(string, ...interface{}) {}
func (nopLog) WithFields(map[string]interface{}) Logger { return nopLog{} }
