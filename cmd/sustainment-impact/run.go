package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iwvelando/sustainment-impact/internal/config"
	"github.com/iwvelando/sustainment-impact/internal/forecast"
	"github.com/iwvelando/sustainment-impact/internal/logging"
	"github.com/iwvelando/sustainment-impact/internal/optimizer"
	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/output"
	"github.com/iwvelando/sustainment-impact/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configLocation   string
	outputFormatFlag string
	outputFileFlag   string
	runLogLevel      string
	optimizeFlag     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the scenarios in a configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScenarios(cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to configuration file")
	runCmd.Flags().StringVar(&outputFormatFlag, "output-format", "", "type of output override: pretty, csv, json, xlsx")
	runCmd.Flags().StringVar(&outputFileFlag, "output", "", "write output to this file instead of stdout")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&optimizeFlag, "optimize", false, "solve readiness floors and budget caps for active scenarios")
}

func runScenarios(stdout io.Writer) error {
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		logging.Fallback("main.run", fmt.Sprintf("failed to load configuration at %s", configLocation), err)
		return err
	}

	logger, err := logging.New(conf.Logging, runLogLevel)
	if err != nil {
		logging.Fallback("main.run", "failed to initialize logger", err)
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI flags take precedence over the configuration file.
	outputFormat := conf.Output.Format
	if outputFormatFlag != "" {
		outputFormat = outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Error(err.Error(), zap.String("op", "main.run"))
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.run"),
		)
	}

	var optimizations *optimizer.Result
	if optimizeFlag {
		runner, err := optimizer.NewRunner(logger, conf)
		if err != nil {
			logger.Error("failed to initialize optimizer",
				zap.String("op", "main.run"),
				zap.Error(err),
			)
			return err
		}
		optimizations, err = runner.Run()
		if err != nil {
			logger.Error("optimizer execution failed",
				zap.String("op", "main.run"),
				zap.Error(err),
			)
			return err
		}
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		logger.Error("failed to compute forecast",
			zap.String("op", "main.run"),
			zap.Error(err),
		)
		return err
	}
	if optimizations != nil {
		optimizations.Apply(&results)
	}

	target := outputFileFlag
	if target == "" {
		target = conf.Output.File
	}
	if target == "" {
		return output.Write(stdout, outputFormat, results)
	}
	return writeOutputFile(logger, target, outputFormat, results)
}

func writeOutputFile(logger *zap.Logger, path, outputFormat string, results forecast.Results) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	if err := output.Write(file, outputFormat, results); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", path, err)
	}

	logger.Info("output written",
		zap.String("op", "main.run"),
		zap.String("path", path),
		zap.String("format", outputFormat),
	)
	return nil
}
