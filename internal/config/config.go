// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config reads the client configuration file.
package config

import (
	"net/http"
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"

	"github.com/juju/xorpc/api"
)

const (
	endpointKey     = "endpoint"
	addressKey      = "address"
	dialTimeoutKey  = "dial-timeout"
	dialAttemptsKey = "dial-attempts"
	retryDelayKey   = "retry-delay"
	callTimeoutKey  = "call-timeout"
	readLimitKey    = "read-limit"
	headersKey      = "headers"
)

var configFields = schema.Fields{
	endpointKey:     schema.String(),
	addressKey:      schema.String(),
	dialTimeoutKey:  schema.TimeDuration(),
	dialAttemptsKey: schema.Int(),
	retryDelayKey:   schema.TimeDuration(),
	callTimeoutKey:  schema.TimeDuration(),
	readLimitKey:    schema.Int(),
	headersKey:      schema.StringMap(schema.String()),
}

var configDefaults = schema.Defaults{
	endpointKey:     schema.Omit,
	addressKey:      schema.Omit,
	dialTimeoutKey:  30 * time.Second,
	dialAttemptsKey: int64(3),
	retryDelayKey:   time.Second,
	callTimeoutKey:  time.Duration(0),
	readLimitKey:    int64(32 << 20),
	headersKey:      schema.Omit,
}

var configChecker = schema.FieldMap(configFields, configDefaults)

// Config holds the client configuration.
type Config struct {
	// Endpoint is the websocket URL of the API.
	Endpoint string

	// Address is the host:port of the server, used when Endpoint is
	// not set.
	Address string

	DialTimeout  time.Duration
	DialAttempts int
	RetryDelay   time.Duration
	CallTimeout  time.Duration
	ReadLimit    int64

	// Headers holds extra headers sent with the websocket handshake.
	Headers map[string]string
}

// ReadFile reads and parses the configuration file at path.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Annotatef(err, "reading %s", path)
	}
	return cfg, nil
}

// Parse parses a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	attrs := make(map[string]any)
	if err := yaml.Unmarshal(data, &attrs); err != nil {
		return nil, errors.Annotate(err, "cannot parse config")
	}
	coerced, err := configChecker.Coerce(attrs, nil)
	if err != nil {
		return nil, errors.WithType(errors.Annotate(err, "invalid config"), errors.NotValid)
	}
	valid := coerced.(map[string]any)

	cfg := &Config{
		DialTimeout:  durationValue(valid[dialTimeoutKey]),
		DialAttempts: int(intValue(valid[dialAttemptsKey])),
		RetryDelay:   durationValue(valid[retryDelayKey]),
		CallTimeout:  durationValue(valid[callTimeoutKey]),
		ReadLimit:    intValue(valid[readLimitKey]),
	}
	cfg.Endpoint, _ = valid[endpointKey].(string)
	cfg.Address, _ = valid[addressKey].(string)
	if headers, ok := valid[headersKey].(map[string]any); ok {
		cfg.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			cfg.Headers[k], _ = v.(string)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

// Validate returns an error if the configuration cannot be used to
// connect.
func (cfg *Config) Validate() error {
	if cfg.Endpoint == "" && cfg.Address == "" {
		return errors.NotValidf("config without %s or %s", endpointKey, addressKey)
	}
	info := cfg.Info()
	if err := info.Validate(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(cfg.DialOpts().Validate())
}

// Info returns the API info described by the configuration.
func (cfg *Config) Info() api.Info {
	info := api.Info{
		Addr: cfg.Address,
		URL:  cfg.Endpoint,
	}
	if len(cfg.Headers) > 0 {
		info.Header = make(http.Header, len(cfg.Headers))
		for k, v := range cfg.Headers {
			info.Header.Set(k, v)
		}
	}
	return info
}

// DialOpts returns the dial options described by the configuration.
func (cfg *Config) DialOpts() api.DialOpts {
	opts := api.DefaultDialOpts()
	opts.DialTimeout = cfg.DialTimeout
	opts.DialAttempts = cfg.DialAttempts
	opts.RetryDelay = cfg.RetryDelay
	opts.CallTimeout = cfg.CallTimeout
	opts.ReadLimit = cfg.ReadLimit
	return opts
}

func durationValue(v any) time.Duration {
	switch v := v.(type) {
	case time.Duration:
		return v
	case int64:
		return time.Duration(v)
	case int:
		return time.Duration(v)
	}
	return 0
}

func intValue(v any) int64 {
	switch v := v.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
