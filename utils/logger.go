package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

func init() {
	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	InfoLogger.SetLevel(logrus.InfoLevel)

	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	// Printf on logrus logs at info level, so the error logger must not
	// filter below that or Printf call sites go silent.
	ErrorLogger.SetLevel(logrus.InfoLevel)
}

// InitLogger applies the LOG_LEVEL env override. The loggers are usable
// before this is called.
func InitLogger() {
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		InfoLogger.SetLevel(lvl)
	}
}
