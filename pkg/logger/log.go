package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

type LogStatus int

const (
	VERBOSE LogStatus = iota
	DEBUG
	INFO
	SUCCESS
	NEW
	REMOVE
	STOP
	WARNING
	ERROR
	FATAL
)

func (e LogStatus) String() string {
	return []string{
		"V",
		"D",
		"I",
		"✓",
		"+",
		"-",
		"X",
		"!",
		"!!",
		"PANIC",
	}[e]
}

func (e LogStatus) Color() *color.Color {
	switch e {
	case VERBOSE, DEBUG:
		return color.New(color.FgWhite, color.Italic)
	case SUCCESS:
		return color.New(color.FgHiGreen)
	case NEW:
		return color.New(color.FgGreen, color.Italic)
	case REMOVE:
		return color.New(color.FgYellow, color.Italic)
	case STOP:
		return color.New(color.FgHiYellow)
	case WARNING:
		return color.New(color.FgYellow, color.Underline)
	case ERROR:
		return color.New(color.FgHiRed, color.Bold)
	case FATAL:
		return color.New(color.FgHiRed, color.Bold, color.Underline)
	default:
		return color.New(color.FgWhite)
	}
}

type Logger interface {
	Emit(LogStatus, string, ...interface{})
}

type loggerImpl struct {
	name string
}

func (l *loggerImpl) Emit(status LogStatus, message string, interpolations ...interface{}) {
	Log.Emit(status, l.name, message, interpolations...)
}

type LoggerManager interface {
	GetLogger(string) Logger
	Emit(LogStatus, string, string, ...interface{})
}

var Log LoggerManager = &loggerMgr{
	minStat: INFO,
	offset:  0,
}

type loggerMgr struct {
	minStat LogStatus
	offset  int
}

func (l *loggerMgr) GetLogger(name string) Logger {
	return &loggerImpl{name: name}
}

func (l *loggerMgr) Emit(status LogStatus, name string, message string, interpolations ...interface{}) {
	if status < l.minStat {
		return
	}

	l.setNameOffset(len(name))
	padding := strings.Repeat(" ", l.offset-len(name))
	msg := fmt.Sprintf("[%s] %s(%s) %s", name, padding, status, fmt.Sprintf(message, interpolations...))

	status.Color().Print(msg)
}

func (l *loggerMgr) setNameOffset(offset int) {
	if offset > l.offset {
		l.offset = offset
	}
}

// SetMinLoggingLevel adjusts the threshold below which emitted
// messages are discarded. Defaults to INFO.
func SetMinLoggingLevel(status LogStatus) {
	if mgr, ok := Log.(*loggerMgr); ok {
		mgr.minStat = status
	}
}

func Get(name string) Logger {
	return Log.GetLogger(name)
}
