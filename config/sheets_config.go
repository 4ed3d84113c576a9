package config

import (
	"os"

	"github.com/pkg/errors"
)

type SheetsConfig struct {
	CredentialsFile string `json:"credentialsFile" yaml:"credentialsFile"` // service account JSON
	SpreadsheetID   string `json:"spreadsheetId" yaml:"spreadsheetId"`
	Worksheet       string `json:"worksheet" yaml:"worksheet"`
}

func (s *SheetsConfig) Validate() []error {
	var errs = make([]error, 0)
	if s.SpreadsheetID == "" {
		errs = append(errs, errors.Errorf("audit.sheets.spreadsheetId must not be empty"))
	}
	if s.Worksheet == "" {
		errs = append(errs, errors.Errorf("audit.sheets.worksheet must not be empty"))
	}
	if s.CredentialsFile == "" {
		errs = append(errs, errors.Errorf("audit.sheets.credentialsFile must not be empty"))
	} else if _, err := os.Stat(s.CredentialsFile); err != nil {
		errs = append(errs, errors.Errorf("audit.sheets.credentialsFile: %v", err))
	}
	return errs
}

func NewDefaultSheetsConfig() *SheetsConfig {
	return &SheetsConfig{
		CredentialsFile: "service_account.json",
		Worksheet:       "Data",
	}
}
