package sqlite

const defaultBusyTimeoutMS = 5000

// Config points the store at a database file. The file is opened in WAL
// mode.
type Config struct {
	Path          string `mapstructure:"path" yaml:"path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

func (c *Config) ToMap() map[string]interface{} {
	timeout := c.BusyTimeoutMS
	if timeout <= 0 {
		timeout = defaultBusyTimeoutMS
	}
	return map[string]interface{}{"path": c.Path, "busy_timeout_ms": timeout}
}
