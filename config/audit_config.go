package config

import (
	"github.com/pkg/errors"
)

const (
	AuditBackendDuckDB = "duckdb"
	AuditBackendMySQL  = "mysql"
	AuditBackendSheets = "sheets"
	AuditBackendNone   = "none"
)

type AuditConfig struct {
	Backend string        `json:"backend" yaml:"backend"`
	DuckDB  *DuckDBConfig `json:"duckdb" yaml:"duckdb"`
	MySQL   *MySQLConfig  `json:"mysql" yaml:"mysql"`
	Sheets  *SheetsConfig `json:"sheets" yaml:"sheets"`
}

func (a *AuditConfig) Validate() []error {
	var errs = make([]error, 0)
	switch a.Backend {
	case AuditBackendDuckDB:
		if a.DuckDB == nil {
			return append(errs, errors.Errorf("audit.duckdb is required for backend %q", a.Backend))
		}
		errs = append(errs, a.DuckDB.Validate()...)
	case AuditBackendMySQL:
		if a.MySQL == nil {
			return append(errs, errors.Errorf("audit.mysql is required for backend %q", a.Backend))
		}
		errs = append(errs, a.MySQL.Validate()...)
	case AuditBackendSheets:
		if a.Sheets == nil {
			return append(errs, errors.Errorf("audit.sheets is required for backend %q", a.Backend))
		}
		errs = append(errs, a.Sheets.Validate()...)
	case AuditBackendNone:
	default:
		errs = append(errs, errors.Errorf("unknown audit.backend %q", a.Backend))
	}
	return errs
}

func NewDefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		Backend: AuditBackendDuckDB,
		DuckDB:  NewDefaultDuckDBConfig(),
		MySQL:   NewDefaultMySQLConfig(),
		Sheets:  NewDefaultSheetsConfig(),
	}
}
