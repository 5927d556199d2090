package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// PID file location
	PIDFile string `mapstructure:"pid_file"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`

	// Reconcile every persisted batch on boot
	ReconcileOnBoot bool `mapstructure:"reconcile_on_boot"`

	// Per-slot timeout for the boot reconcile pass
	ReconcileTimeout time.Duration `mapstructure:"reconcile_timeout" validate:"required"`
}
