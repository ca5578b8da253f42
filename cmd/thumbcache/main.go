package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/iTrooz/thumbnail-cache/internal/cache"
	"github.com/iTrooz/thumbnail-cache/internal/config"
	"github.com/iTrooz/thumbnail-cache/internal/scheduler"
	"github.com/iTrooz/thumbnail-cache/internal/server"
)

func main() {
	printConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	configPath := "configs/config.yaml"
	if flag.NArg() > 0 {
		configPath = flag.Arg(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *printConfig {
		if err := yaml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			log.Fatalf("Failed to print config: %v", err)
		}
		return
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	options := config.NewOptions(cfg.Options)
	engine := cache.New(cfg.Cache.Folder, cfg.Cache.PublicURL, options,
		cache.WithRemoteBase(cfg.Cache.RemoteBase),
	)

	sweeps, err := scheduler.New(cfg.Cache.Schedule, engine)
	if err != nil {
		logrus.Fatalf("Failed to schedule sweep: %v", err)
	}
	sweeps.Start()

	// Embed options and log level follow the file, everything else needs a restart
	unwatch, err := config.Watch(configPath, func(c *config.Config) {
		options.Set(c.Options)
		if level, err := logrus.ParseLevel(c.Log.Level); err == nil {
			logrus.SetLevel(level)
		}
	})
	if err != nil {
		logrus.Warnf("Config changes need a restart: %v", err)
	}

	srv := server.New(cfg, options, engine)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logrus.Infof("Shutting down")
		if unwatch != nil {
			_ = unwatch()
		}
		<-sweeps.Stop().Done()
		if err := srv.Shutdown(); err != nil {
			logrus.Errorf("Failed to shut down server: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		logrus.Fatalf("Server failed: %v", err)
	}
}
