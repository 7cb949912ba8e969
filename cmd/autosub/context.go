package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"autosub/internal/config"
)

type commandContext struct {
	configFlag  *string
	envFileFlag *string
	overrides   *flagOverrides

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, envFileFlag *string, overrides *flagOverrides) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		envFileFlag: envFileFlag,
		overrides:   overrides,
	}
}

// ensureConfig resolves the effective configuration once per invocation:
// .env, then the config file with AUTOSUB_* overrides, then flags.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		if _, err := config.LoadDotEnv(flagValue(c.envFileFlag)); err != nil {
			c.configErr = err
			return
		}
		cfg, _, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if c.overrides != nil && c.overrides.apply(cmd, cfg) {
			if err := cfg.Finalize(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
