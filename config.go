package relay

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"encoding/json"
)

// Config is the ambient application configuration, loaded once at process
// start by LoadConfig and handed to New. Application-specific settings
// can be loaded into their own struct the same way, via LoadConfigInto.
type Config struct {
	// Address is the "host:port" the httpserver adapter listens on.
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address"`

	// MaxURILength bounds UriTooLong (B10); zero means unlimited.
	MaxURILength int `mapstructure:"max_uri_length" json:"max_uri_length" yaml:"max_uri_length" toml:"max_uri_length"`

	// AutoETag enables deriving a weak ETag from response bytes when a
	// route declares no etag state callback.
	AutoETag bool `mapstructure:"auto_etag" json:"auto_etag" yaml:"auto_etag" toml:"auto_etag"`

	// Debug is loaded from the config file; App.Freeze does not pass it to
	// the Engine, and error bodies are the same whether it is set or not.
	Debug bool `mapstructure:"debug" json:"debug" yaml:"debug" toml:"debug"`

	Logger LoggerConfig `mapstructure:"logger" json:"logger" yaml:"logger" toml:"logger"`

	// ACMEHosts, when non-empty, switches the httpserver adapter to
	// autocert-managed TLS for exactly these hostnames.
	ACMEHosts []string `mapstructure:"acme_hosts" json:"acme_hosts" yaml:"acme_hosts" toml:"acme_hosts"`
}

// DefaultConfig returns the zero-friendly defaults used when no config
// file is supplied.
func DefaultConfig() Config {
	return Config{
		Address: "localhost:8080",
		Logger:  LoggerConfig{Level: "info"},
	}
}

// LoadConfig reads path (extension-sniffed: .json, .yaml/.yml, or .toml)
// into a Config seeded with DefaultConfig's values, the same
// extension-dispatch pattern the teacher's own config loader uses.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := LoadConfigInto(path, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfigInto decodes path into dst, a pointer to a struct tagged for
// json/yaml/toml. Unknown keys are ignored; missing files are an error
// since callers only call this once they know a config file is expected.
func LoadConfigInto(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("relay: reading config %q: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return json.Unmarshal(raw, dst)
	case ".yaml", ".yml":
		return yaml.Unmarshal(raw, dst)
	case ".toml":
		return toml.Unmarshal(raw, dst)
	default:
		return fmt.Errorf("relay: unrecognized config extension %q", ext)
	}
}

// DecodeInto re-shapes a generic map (e.g. a provider's already-parsed
// json_body) into dst via mapstructure, honoring the same `mapstructure`
// tags Config itself uses. Exposed for application code building typed
// dependency providers on top of reserved body dependencies.
func DecodeInto(m map[string]any, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}

	return dec.Decode(m)
}
