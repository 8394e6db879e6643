package config

// BootstrapConfig provides the optional seed identities created on first start
// so a fresh deployment can complete a /login without out-of-band setup.
type BootstrapConfig interface {
	GetBootstrapUsername() string
	GetBootstrapMemberUsername() string
	GetBootstrapPassword() string
	GetBootstrapMultiverse() string
}

type Bootstrap struct{}

var _ BootstrapConfig = Bootstrap{}

func (Bootstrap) GetBootstrapUsername() string {
	return GetEnv("BOOTSTRAP_USERNAME", "")
}

func (Bootstrap) GetBootstrapMemberUsername() string {
	return GetEnv("BOOTSTRAP_MEMBER_USERNAME", "")
}

func (Bootstrap) GetBootstrapPassword() string {
	return GetEnv("BOOTSTRAP_PASSWORD", "")
}

func (Bootstrap) GetBootstrapMultiverse() string {
	return GetEnv("BOOTSTRAP_MULTIVERSE", "local")
}
