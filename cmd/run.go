package cmd

import (
	"errors"

	"exam-feedback/config"
	"exam-feedback/pkg/audit"
	"exam-feedback/pkg/canvas"
	"exam-feedback/pkg/feedback"
	"exam-feedback/pkg/model"
	"exam-feedback/pkg/ocr"
	"exam-feedback/pkg/service"
	"exam-feedback/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRunCommand() *cobra.Command {
	var configFilePath string
	var envFilePath string
	var dryRun bool
	var onlyUsers []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process new and resubmitted submissions once",
		Long:  "Lists the assignment's submissions, transcribes each eligible PDF, generates feedback and posts the grade back to Canvas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFilePath, envFilePath)
			if err != nil {
				return err
			}

			ctx := signals.SetupSignalHandler()

			sink, err := audit.Open(ctx, cfg.Audit)
			if err != nil {
				zap.S().Errorf("open audit store: %s", err.Error())
				return err
			}
			defer sink.Close()
			if err := sink.Migrate(ctx); err != nil {
				zap.S().Errorf("prepare audit store: %s", err.Error())
				return err
			}

			genaiClient, err := feedback.NewGeminiClient(ctx, cfg.Feedback)
			if err != nil {
				return err
			}
			dispatcher := service.NewDispatcher(
				feedback.NewShortResponseStrategy(genaiClient, cfg.Feedback),
				feedback.NewLongResponseStrategy(genaiClient, cfg.Feedback),
			)
			for _, s := range cfg.Feedback.Subjects {
				dispatcher.RegisterSubject(model.SubjectCategory(s.Name), feedback.NewSubjectStrategy(genaiClient, cfg.Feedback, s))
			}

			canvasClient := canvas.NewClient(cfg.Canvas)
			pipeline := service.NewSubmissionPipeline(
				canvasClient,
				ocr.NewTranscriber(ocr.NewClient(cfg.OCR), cfg.Cache.Dir),
				service.NewClassifier(service.SubjectRulesFromConfig(cfg.Feedback.Subjects)),
				dispatcher,
				sink,
				service.PipelineOptions{
					CourseID:            canvasClient.CourseID(),
					AssignmentID:        canvasClient.AssignmentID(),
					AllowedContentTypes: cfg.Canvas.AllowedContentTypes,
					DryRun:              dryRun,
					OnlyUsers:           onlyUsers,
				},
			)

			zap.S().Info("Checking for unmarked or resubmitted submissions...")
			stats, err := pipeline.Run(ctx)
			zap.S().Infof("run finished: listed=%d eligible=%d completed=%d incomplete=%d unposted=%d",
				stats.Listed, stats.Eligible, stats.Completed, stats.Incomplete, stats.Unposted)
			if err != nil {
				zap.S().Errorf("run aborted: %s", err.Error())
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "config file path")
	cmd.Flags().StringVar(&envFilePath, "env-file", ".env", "optional file with credential environment variables")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "process submissions without posting grades or audit rows")
	cmd.Flags().StringSliceVar(&onlyUsers, "user", nil, "only process these Canvas user ids")
	return cmd
}

func loadConfig(configFilePath, envFilePath string) (*config.GlobalConfig, error) {
	loaded, err := config.LoadDotEnv(envFilePath)
	if err != nil {
		zap.S().Errorf("read env file: %s", err.Error())
		return nil, err
	}
	if loaded {
		zap.S().Debugf("loaded environment from %s", envFilePath)
	}
	cfg, err := config.TryLoadFromDisk(configFilePath)
	if err != nil {
		zap.S().Errorf("read config file: %s", err.Error())
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		err := errors.Join(errs...)
		zap.S().Errorf("invalid config: %s", err)
		return nil, err
	}
	return cfg, nil
}
