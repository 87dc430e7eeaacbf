package core

import (
	"fmt"
	"strings"
)

type LifecycleConfig struct {
	ResumePolicy               string `koanf:"resume_policy" mapstructure:"resume_policy"`
	BlockRedemptionOnEmergency bool   `koanf:"block_redemption_on_emergency" mapstructure:"block_redemption_on_emergency"`
}

type MonitorConfig struct {
	MinReserveRatio uint64 `koanf:"min_reserve_ratio" mapstructure:"min_reserve_ratio"`
}

type LockConfig struct {
	WaitTimeoutMS int `koanf:"wait_timeout_ms" mapstructure:"wait_timeout_ms"`
}

type Config struct {
	ServiceName     string          `koanf:"service_name" mapstructure:"service_name"`
	DefaultConfigID string          `koanf:"default_config_id" mapstructure:"default_config_id"`
	Lifecycle       LifecycleConfig `koanf:"lifecycle" mapstructure:"lifecycle"`
	Monitor         MonitorConfig   `koanf:"monitor" mapstructure:"monitor"`
	Lock            LockConfig      `koanf:"lock" mapstructure:"lock"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:     "issuance",
		DefaultConfigID: DefaultConfigID,
		Lifecycle: LifecycleConfig{
			ResumePolicy: string(ResumePolicyMatchingAuthority),
		},
		Monitor: MonitorConfig{
			MinReserveRatio: FullyBackedRatio,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.DefaultConfigID) == "" {
		return fmt.Errorf("core: default_config_id is required")
	}
	if !ResumePolicy(c.Lifecycle.ResumePolicy).Valid() {
		return fmt.Errorf("core: lifecycle.resume_policy %q is invalid", c.Lifecycle.ResumePolicy)
	}
	if c.Lock.WaitTimeoutMS < 0 {
		return fmt.Errorf("core: lock.wait_timeout_ms must not be negative")
	}
	return nil
}

func (c Config) ResumePolicy() ResumePolicy {
	return ResumePolicy(c.Lifecycle.ResumePolicy).Normalize()
}
