package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureLogging(t *testing.T) {
	prevLevel, prevFormatter := logrus.GetLevel(), logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetLevel(prevLevel)
		logrus.SetFormatter(prevFormatter)
	})

	tests := []struct {
		env      string
		level    logrus.Level
		wantJSON bool
	}{
		{env: Production, level: logrus.InfoLevel, wantJSON: true},
		{env: Development, level: logrus.DebugLevel},
		{env: "", level: logrus.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			ConfigureLogging(tt.env)
			if logrus.GetLevel() != tt.level {
				t.Fatalf("expected level %s got %s", tt.level, logrus.GetLevel())
			}
			_, isJSON := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter)
			if isJSON != tt.wantJSON {
				t.Fatalf("expected json formatter %v got %T", tt.wantJSON, logrus.StandardLogger().Formatter)
			}
		})
	}

	ConfigureLogging(Staging)
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Fatalf("staging should log at info, got %s", logrus.GetLevel())
	}
}
