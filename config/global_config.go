package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Credential environment variables. They are read after the config file so
// tokens never have to live in YAML.
const (
	EnvCanvasToken = "CANVAS_API_TOKEN"
	EnvOCRToken    = "HANDWRITING_OCR_TOKEN"
	EnvGeminiKey   = "GEMINI_API_KEY"
	EnvMySQLDSN    = "AUDIT_MYSQL_DSN"
)

type IConfig interface {
	Validate() []error
}

type GlobalConfig struct {
	Canvas   *CanvasConfig   `json:"canvas" yaml:"canvas"`
	OCR      *OCRConfig      `json:"ocr" yaml:"ocr"`
	Feedback *FeedbackConfig `json:"feedback" yaml:"feedback"`
	Cache    *CacheConfig    `json:"cache" yaml:"cache"`
	Audit    *AuditConfig    `json:"audit" yaml:"audit"`
}

func (g *GlobalConfig) Validate() []error {
	var errs = make([]error, 0)
	for _, c := range g.sections() {
		if es := c.Validate(); len(es) > 0 {
			errs = append(errs, es...)
		}
	}
	return errs
}

func (g *GlobalConfig) sections() []IConfig {
	var sections []IConfig
	if g.Canvas != nil {
		sections = append(sections, g.Canvas)
	} else {
		sections = append(sections, missingSection("canvas"))
	}
	if g.OCR != nil {
		sections = append(sections, g.OCR)
	} else {
		sections = append(sections, missingSection("ocr"))
	}
	if g.Feedback != nil {
		sections = append(sections, g.Feedback)
	} else {
		sections = append(sections, missingSection("feedback"))
	}
	if g.Cache != nil {
		sections = append(sections, g.Cache)
	}
	if g.Audit != nil {
		sections = append(sections, g.Audit)
	}
	return sections
}

type missingSection string

func (m missingSection) Validate() []error {
	return []error{errors.Errorf("config section %q is required", string(m))}
}

// ApplyEnv fills credentials that were left empty in the file from the
// process environment.
func (g *GlobalConfig) ApplyEnv() {
	if g.Canvas != nil && g.Canvas.Token == "" {
		g.Canvas.Token = os.Getenv(EnvCanvasToken)
	}
	if g.OCR != nil && g.OCR.Token == "" {
		g.OCR.Token = os.Getenv(EnvOCRToken)
	}
	if g.Feedback != nil && g.Feedback.APIKey == "" {
		g.Feedback.APIKey = os.Getenv(EnvGeminiKey)
	}
	if g.Audit != nil && g.Audit.MySQL != nil && g.Audit.MySQL.DSN == "" {
		g.Audit.MySQL.DSN = os.Getenv(EnvMySQLDSN)
	}
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Canvas:   NewDefaultCanvasConfig(),
		OCR:      NewDefaultOCRConfig(),
		Feedback: NewDefaultFeedbackConfig(),
		Cache:    NewDefaultCacheConfig(),
		Audit:    NewDefaultAuditConfig(),
	}
}

// LoadDotEnv loads KEY=VALUE pairs from envFile into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(envFile string) (bool, error) {
	if envFile == "" {
		return false, nil
	}
	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := godotenv.Load(envFile); err != nil {
		return false, errors.Wrapf(err, "load env file %s", envFile)
	}
	return true, nil
}

func TryLoadFromDisk(configFilePath string) (*GlobalConfig, error) {
	_, err := os.Stat(configFilePath)
	if err != nil {
		return nil, err
	}
	dir, file := filepath.Split(configFilePath)
	fileType := filepath.Ext(file)
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(strings.TrimSuffix(file, fileType))
	v.SetConfigType(strings.TrimPrefix(fileType, "."))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
		return nil, errors.Errorf("parse config file: %s", err.Error())
	}
	cfg := NewDefaultGlobalConfig()
	if err := v.Unmarshal(cfg, func(config *mapstructure.DecoderConfig) {
		config.TagName = strings.TrimPrefix(fileType, ".")
	}); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}
