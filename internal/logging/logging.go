package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogging builds the JSON logger used by the CLI and the HTTP server
// and installs the same formatter on the logrus standard logger.
func SetupLogging(debug bool) *logrus.Logger {
	level := logrus.InfoLevel
	if debug {
		level = logrus.DebugLevel
	}

	formatter := &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyLevel: "loglevel",
		},
	}

	logger := logrus.Logger{
		Formatter: formatter,
		Out:       os.Stderr,
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
	}

	logrus.SetFormatter(formatter)
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)

	return &logger
}
