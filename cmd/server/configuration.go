package server

import (
	"time"
)

const (
	commonConfigurationKeyConstant       = "common"
	commonLogLevelConfigKeyConstant      = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant     = commonConfigurationKeyConstant + ".log_format"
	serverConfigurationKeyConstant       = "server"
	serverPortConfigKeyConstant          = serverConfigurationKeyConstant + ".port"
	serverAPIKeyConfigKeyConstant        = serverConfigurationKeyConstant + ".api_key"
	repositoriesConfigurationKeyConstant = "repositories"
	repositoriesBasePathConfigKeyConst   = repositoriesConfigurationKeyConstant + ".base_path"
	repositoriesAllowedConfigKeyConstant = repositoriesConfigurationKeyConstant + ".allowed"
	copilotConfigurationKeyConstant      = "copilot"
	copilotTimeoutConfigKeyConstant      = copilotConfigurationKeyConstant + ".timeout"
	defaultLogLevelValueConstant         = "info"
	defaultLogFormatValueConstant        = "structured"
	defaultListenPortValueConstant       = 5000
	defaultBasePathValueConstant         = "/var/repos"
	defaultAssistantTimeoutConstant      = 5 * time.Minute
)

// ApplicationConfiguration describes the persisted configuration for the server entrypoint.
type ApplicationConfiguration struct {
	Common       CommonConfiguration       `mapstructure:"common"`
	Server       ServerConfiguration       `mapstructure:"server"`
	Repositories RepositoriesConfiguration `mapstructure:"repositories"`
	Copilot      CopilotConfiguration      `mapstructure:"copilot"`
}

// CommonConfiguration stores logging configuration shared across commands.
type CommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ServerConfiguration stores the HTTP listener settings.
type ServerConfiguration struct {
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// RepositoriesConfiguration locates and restricts the repository checkouts
// the server operates on. An empty allow-list permits every repository name.
type RepositoriesConfiguration struct {
	BasePath string   `mapstructure:"base_path"`
	Allowed  []string `mapstructure:"allowed"`
}

// CopilotConfiguration shapes the assistant CLI invocation.
type CopilotConfiguration struct {
	Command []string      `mapstructure:"command"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// defaultConfigurationValues backstops settings absent from both the embedded
// configuration and the environment.
func defaultConfigurationValues() map[string]any {
	return map[string]any{
		commonLogLevelConfigKeyConstant:      defaultLogLevelValueConstant,
		commonLogFormatConfigKeyConstant:     defaultLogFormatValueConstant,
		serverPortConfigKeyConstant:          defaultListenPortValueConstant,
		serverAPIKeyConfigKeyConstant:        "",
		repositoriesBasePathConfigKeyConst:   defaultBasePathValueConstant,
		repositoriesAllowedConfigKeyConstant: "",
		copilotTimeoutConfigKeyConstant:      defaultAssistantTimeoutConstant,
	}
}
