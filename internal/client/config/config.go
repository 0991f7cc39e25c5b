// Package config handles configuration for the chat client: defaults, an
// optional JSON file overlay, and command-line flags, in that order of
// precedence.
package config

// Config holds runtime settings for the groupfeed CLI.
//
// Fields:
//   - ServerBaseURL: http(s) base URL of the feed server; the websocket
//     subscription endpoint is derived from it.
//   - Room: room identifier to join.
//   - S3*: object storage settings for attachment uploads (MinIO-style
//     static credentials in development).
type Config struct {
	ServerBaseURL  string
	Room           string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates c with sensible development defaults.
// NOTE: the S3 values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.Room = "lobby"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Bucket = "chat"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
