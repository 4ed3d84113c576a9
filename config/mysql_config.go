package config

import (
	"time"

	"github.com/pkg/errors"
)

type MySQLConfig struct {
	DSN          string        `json:"dsn" yaml:"dsn"`           // normally supplied via AUDIT_MYSQL_DSN
	Replicas     []string      `json:"replicas" yaml:"replicas"` // read-only DSNs used by count queries
	MaxOpenConns int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLife  time.Duration `json:"connMaxLife" yaml:"connMaxLife"`
}

func (m *MySQLConfig) Validate() []error {
	var errs = make([]error, 0)
	if m.DSN == "" {
		errs = append(errs, errors.Errorf("mysql dsn missing: set audit.mysql.dsn or %s", EnvMySQLDSN))
	}
	if m.MaxOpenConns < 0 || m.MaxIdleConns < 0 {
		errs = append(errs, errors.Errorf("audit.mysql connection limits must not be negative"))
	}
	return errs
}

func NewDefaultMySQLConfig() *MySQLConfig {
	return &MySQLConfig{
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		ConnMaxLife:  30 * time.Minute,
	}
}
