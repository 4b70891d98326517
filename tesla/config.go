package tesla

import "time"

const (
	DefaultOwnerAPIHost = "https://owner-api.teslamotors.com"
	DefaultAuthHost     = "https://auth.tesla.com"
	DefaultClientID     = "ownerapi"
	DefaultTimeout      = 30 * time.Second
	UserAgent           = "uttesla-go"
)

type Config struct {
	OwnerAPIHost string        `yaml:"owner_api_host"`
	AuthHost     string        `yaml:"auth_host"`
	ClientID     string        `yaml:"client_id"`
	Timeout      time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config pointing at the public Owner API.
func DefaultConfig() Config {
	return Config{
		OwnerAPIHost: DefaultOwnerAPIHost,
		AuthHost:     DefaultAuthHost,
		ClientID:     DefaultClientID,
		Timeout:      DefaultTimeout,
	}
}

// withDefaults fills every zero field from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.OwnerAPIHost == "" {
		c.OwnerAPIHost = def.OwnerAPIHost
	}
	if c.AuthHost == "" {
		c.AuthHost = def.AuthHost
	}
	if c.ClientID == "" {
		c.ClientID = def.ClientID
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}
