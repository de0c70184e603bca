package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logLevelFromEnv())
	logg.SetOutput(os.Stdout)
}

// LOG_LEVEL accepts any logrus level name; defaults to warn.
func logLevelFromEnv() logrus.Level {
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return logrus.WarnLevel
	}
	lvl, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}

// LogTransition records a committed workflow transition at info level.
func LogTransition(logger *logrus.Logger, entity string, id int, from string, to string, correlationId string) {
	logger.WithFields(logrus.Fields{
		"entity":         entity,
		"entity_id":      id,
		"from":           from,
		"to":             to,
		"correlation_id": correlationId,
	}).Info("workflow transition")
}
