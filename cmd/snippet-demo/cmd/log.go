package cmd

import (
	"io"
	"strings"

	"github.com/bombsimon/logrusr/v4"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
)

const (
	JSONFormat = "json"
	TextFormat = "text"
)

// createFormatter returns the logrus formatter named by logFormat.
func createFormatter(logFormat string) logrus.Formatter {
	switch strings.ToLower(logFormat) {
	case JSONFormat:
		return &logrus.JSONFormatter{}
	case TextFormat:
		return &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	default:
		return &logrus.TextFormatter{FullTimestamp: true}
	}
}

func newLogger(out io.Writer, logFormat string, debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(createFormatter(logFormat))
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// newLogrLogger bridges a logrus logger to logr.
func newLogrLogger(fieldLogger logrus.FieldLogger) logr.Logger {
	return logrusr.New(fieldLogger)
}
