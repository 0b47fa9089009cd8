// adapters/gam_config.go
// ----------------------
// Configuration for the Ad Manager provider family. One value serves both
// account tiers; the Registry decides which tier a ProviderID maps to.
// Credentials are a service account: either an inline PEM private key or a
// path to a key file (PEM, or the legacy PKCS#12 ".p12" the provider used to
// issue).
package adapters

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/openadtools/adbridge/utils"
)

const defaultP12Password = "notasecret"

type AdManagerConfig struct {
	NetworkCode     string `mapstructure:"network_code"`
	ApplicationName string `mapstructure:"application_name"`
	ClientEmail     string `mapstructure:"client_email"`
	PrivateKeyPEM   string `mapstructure:"private_key"`
	KeyFile         string `mapstructure:"key_file"`
	KeyFilePassword string `mapstructure:"key_file_password"`
	TokenURL        string `mapstructure:"token_url"`
	Endpoint        string `mapstructure:"endpoint"`
	APIVersion      string `mapstructure:"api_version"`
}

func (c *AdManagerConfig) Validate() error {
	if c.NetworkCode == "" {
		return fmt.Errorf("network_code is required")
	}
	if c.ApplicationName == "" {
		return fmt.Errorf("application_name is required")
	}
	if c.ClientEmail == "" {
		return fmt.Errorf("client_email is required")
	}
	if c.PrivateKeyPEM == "" && c.KeyFile == "" {
		return fmt.Errorf("one of private_key or key_file is required")
	}
	if c.PrivateKeyPEM != "" && c.KeyFile != "" {
		return fmt.Errorf("private_key and key_file are mutually exclusive")
	}
	return nil
}

func (c *AdManagerConfig) String() string {
	// Credentials stay out of log lines.
	return fmt.Sprintf("AdManagerConfig(network_code=%s, client_email=%s)", c.NetworkCode, c.ClientEmail)
}

// privateKey loads the service account key from whichever source the config
// carries.
func (c *AdManagerConfig) privateKey() (*rsa.PrivateKey, error) {
	if c.PrivateKeyPEM != "" {
		return utils.ParsePrivateKeyPEM([]byte(c.PrivateKeyPEM))
	}
	data, err := os.ReadFile(c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	if strings.HasSuffix(c.KeyFile, ".p12") {
		password := c.KeyFilePassword
		if password == "" {
			password = defaultP12Password
		}
		return utils.ParsePrivateKeyP12(data, password)
	}
	return utils.ParsePrivateKeyPEM(data)
}

// LoadAdManagerConfig reads an AdManagerConfig from a YAML/JSON/TOML file,
// with ADBRIDGE_* environment variables taking precedence. Unknown fields in
// the file are an error, not silently ignored.
func LoadAdManagerConfig(path string) (*AdManagerConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("ADBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &AdManagerConfig{}
	if err := v.UnmarshalExact(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}
