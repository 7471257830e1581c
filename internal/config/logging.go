package config

import "github.com/sirupsen/logrus"

// ConfigureLogging sets the global logrus level and formatter for the environment tag.
func ConfigureLogging(appEnv string) {
	switch appEnv {
	case Production:
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case Staging:
		logrus.SetLevel(logrus.InfoLevel)
	default:
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
