package config

type Config interface {
	EnvConfig
	SlackConfig
	BootstrapConfig
}

type mainConfig struct {
	EnvVars
	Slack
	Bootstrap
}

func New() Config {
	return mainConfig{}
}
