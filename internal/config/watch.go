package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/file"
	"github.com/sirupsen/logrus"
)

// Watch reloads the configuration file at path whenever it is written and passes
// the result to onChange. A file that fails to load or validate is logged and the
// previous configuration stays in effect. The returned function stops watching.
func Watch(path string, onChange func(*Config)) (func() error, error) {
	provider := file.Provider(path)

	err := provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			logrus.Errorf("Stopped watching config file %s: %v", path, err)
			return
		}

		cfg, err := Load(path)
		if err != nil {
			logrus.Warnf("Ignoring config change: %v", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			logrus.Warnf("Ignoring invalid config change: %v", err)
			return
		}

		logrus.Infof("Reloaded config file %s", path)
		onChange(cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("watching config file: %w", err)
	}

	return provider.Unwatch, nil
}
