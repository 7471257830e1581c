package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"lunchgenie/internal/agent"
	"lunchgenie/internal/api"
	"lunchgenie/internal/config"
)

func main() {
	envPath := ".env"
	if override := strings.TrimSpace(os.Getenv("LUNCHGENIE_ENV_FILE")); override != "" {
		envPath = override
	}

	cfg, err := config.Load(envPath)
	if err != nil {
		if config.IsConfigError(err) {
			logrus.Fatalf("configuration error: %v", err)
		}
		logrus.Fatalf("load configuration: %v", err)
	}
	config.ConfigureLogging(cfg.AppEnv)
	logrus.Info(cfg.Summary())

	recommender, llm, err := agent.FromConfig(cfg)
	if err != nil {
		logrus.Fatalf("build recommender: %v", err)
	}

	var origins []string
	if raw := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	server, err := api.NewServer(api.Config{
		DBPath:         cfg.DBPath,
		AllowedOrigins: origins,
		SilentDB:       cfg.AppEnv == config.Production,
		Settings:       cfg,
		Recommender:    recommender,
		Model:          llm.Model(),
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}
	defer func() {
		if cerr := server.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close database")
		}
	}()

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	logrus.Infof("starting lunchgenie server on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
