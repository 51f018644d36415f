// Package logging maps command line settings onto the OPA standard logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/open-policy-agent/opa/logging"
	"github.com/sirupsen/logrus"
)

func GetLevel(level string) (logging.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logging.Debug, nil
	case "", "info":
		return logging.Info, nil
	case "warn":
		return logging.Warn, nil
	case "error":
		return logging.Error, nil
	default:
		return logging.Debug, fmt.Errorf("invalid log level: %v", level)
	}
}

func GetFormatter(format string) logrus.Formatter {
	switch format {
	case "text":
		return &logrus.TextFormatter{FullTimestamp: true}
	case "json-pretty":
		return &logrus.JSONFormatter{PrettyPrint: true}
	default:
		return &logrus.JSONFormatter{}
	}
}

// New returns a standard logger writing to out.
func New(out io.Writer, level, format string) (*logging.StandardLogger, error) {
	lvl, err := GetLevel(level)
	if err != nil {
		return nil, err
	}
	l := logging.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetFormatter(GetFormatter(format))
	return l, nil
}
