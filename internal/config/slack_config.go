package config

type SlackConfig interface {
	GetSlackToken() string
	GetSlackAPIURL() string
}

type Slack struct{}

var _ SlackConfig = Slack{}

func (Slack) GetSlackToken() string {
	return GetEnv("SLACK_TOKEN", "")
}

func (Slack) GetSlackAPIURL() string {
	return GetEnv("SLACK_API_URL", "https://slack.com/api")
}
