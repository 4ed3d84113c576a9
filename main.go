package main

import (
	"os"

	"exam-feedback/cmd"

	"go.uber.org/zap"
)

func main() {
	defer zap.L().Sync()
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
