package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/yamdb/internal/flagx"
	"github.com/dmitrijs2005/yamdb/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. Fields absent from the file keep their current value
// in Config.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ConfirmationCodeLength      int            `json:"confirmation_code_length"`
	ConfirmationCodeTTL         timex.Duration `json:"confirmation_code_ttl"`
	CodeCacheBackend            string         `json:"code_cache_backend"`
	CodeCachePath               string         `json:"code_cache_path"`
	SMTPHost                    string         `json:"smtp_host"`
	SMTPUser                    string         `json:"smtp_user"`
	SMTPPassword                string         `json:"smtp_password"`
	SMTPFrom                    string         `json:"smtp_from"`
	SMTPCertPath                string         `json:"smtp_cert_path"`
	SMTPSkipVerify              *bool          `json:"smtp_skip_verify"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag in args. Without the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigPath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.CodeCacheBackend, c.CodeCacheBackend)
	setString(&config.CodeCachePath, c.CodeCachePath)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.SMTPCertPath, c.SMTPCertPath)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ConfirmationCodeTTL.Duration != 0 {
		config.ConfirmationCodeTTL = c.ConfirmationCodeTTL.Duration
	}
	if c.ConfirmationCodeLength != 0 {
		config.ConfirmationCodeLength = c.ConfirmationCodeLength
	}
	if c.SMTPSkipVerify != nil {
		config.SMTPSkipVerify = *c.SMTPSkipVerify
	}
	return nil
}
