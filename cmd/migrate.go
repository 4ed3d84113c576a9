package cmd

import (
	"context"
	"errors"

	"exam-feedback/config"
	"exam-feedback/pkg/audit"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewMigrateCommand() *cobra.Command {
	var configFilePath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the audit store",
		Long:  "Creates the audit table (or checks the worksheet) for the configured backend and reports how many rows it holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.TryLoadFromDisk(configFilePath)
			if err != nil {
				zap.S().Errorf("read config file: %s", err.Error())
				return err
			}
			if cfg.Audit == nil {
				zap.S().Error("audit config is not set")
				return errors.New("audit config is not set")
			}
			if errs := cfg.Audit.Validate(); len(errs) > 0 {
				err := errors.Join(errs...)
				zap.S().Errorf("invalid audit config: %s", err)
				return err
			}

			ctx := context.Background()
			sink, err := audit.Open(ctx, cfg.Audit)
			if err != nil {
				zap.S().Errorf("open audit store: %s", err.Error())
				return err
			}
			defer sink.Close()

			if err := sink.Migrate(ctx); err != nil {
				zap.S().Errorf("migrate failed: %s", err.Error())
				return err
			}

			count, err := sink.Count(ctx)
			if err != nil {
				zap.S().Warnf("count audit rows failed: %s", err.Error())
			} else {
				zap.S().Infof("audit store (%s) holds %d rows", cfg.Audit.Backend, count)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "config file path")
	return cmd
}
