package main

import (
	"strings"
	"sync"

	"labeld/internal/config"
)

type commandContext struct {
	serverFlag *string
	configFlag *string
	tokenFlag  *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(serverFlag, configFlag, tokenFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		configFlag: configFlag,
		tokenFlag:  tokenFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) baseURL() string {
	if c.serverFlag != nil && strings.TrimSpace(*c.serverFlag) != "" {
		return strings.TrimRight(strings.TrimSpace(*c.serverFlag), "/")
	}
	cfg, _ := c.ensureConfig()
	bind := "127.0.0.1:7712"
	if cfg != nil && strings.TrimSpace(cfg.Paths.APIBind) != "" {
		bind = strings.TrimSpace(cfg.Paths.APIBind)
	}
	// A wildcard bind is not dialable; fall back to loopback.
	if strings.HasPrefix(bind, ":") {
		bind = "127.0.0.1" + bind
	} else if strings.HasPrefix(bind, "0.0.0.0:") {
		bind = "127.0.0.1" + strings.TrimPrefix(bind, "0.0.0.0")
	}
	return "http://" + bind
}

func (c *commandContext) token() string {
	if c.tokenFlag != nil && strings.TrimSpace(*c.tokenFlag) != "" {
		return strings.TrimSpace(*c.tokenFlag)
	}
	cfg, _ := c.ensureConfig()
	if cfg != nil {
		return strings.TrimSpace(cfg.Paths.APIToken)
	}
	return ""
}

func (c *commandContext) client() *client {
	return newClient(c.baseURL(), c.token())
}
