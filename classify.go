package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"signal-classifier/models"
	"signal-classifier/pipeline"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

var (
	peakFrequency float64
	driftRate     float64
	snr           float64
	pulseWidth    float64
	apiKey        string
	exportDir     string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify one observation and print the model's answer",
	Example: `  signal-classifier classify --peak-frequency 1420.0 --drift-rate 0 --snr 10 --pulse-width 1
  signal-classifier classify --export-dir ./reports`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	defaults := models.DefaultSignalMetadata()
	classifyCmd.Flags().Float64Var(&peakFrequency, "peak-frequency", defaults.PeakFrequencyMHz, "peak frequency in MHz")
	classifyCmd.Flags().Float64Var(&driftRate, "drift-rate", defaults.DriftRateHzPerS, "drift rate in Hz/s")
	classifyCmd.Flags().Float64Var(&snr, "snr", defaults.SNRDB, "signal-to-noise ratio in dB")
	classifyCmd.Flags().Float64Var(&pulseWidth, "pulse-width", defaults.PulseWidthMS, "pulse width in ms")
	classifyCmd.Flags().StringVar(&apiKey, "api-key", "", "model API key (overrides configuration)")
	classifyCmd.Flags().StringVar(&exportDir, "export-dir", "", "write an HTML report into this directory")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	classifier, store, err := newClassifier(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := classifier.Classify(ctx, pipeline.Request{
		Metadata: models.SignalMetadata{
			PeakFrequencyMHz: peakFrequency,
			DriftRateHzPerS:  driftRate,
			SNRDB:            snr,
			PulseWidthMS:     pulseWidth,
		},
		APIKey: apiKey,
		Export: exportDir != "",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", pipeline.KindOf(err), err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Text)

	if exportDir == "" {
		return nil
	}
	if result.ExportErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", result.ExportErr)
		return nil
	}

	path, err := writeReport(exportDir, result.Export.Filename, result.Export.Body)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return nil
	}
	log.WithField("path", path).Info("report written")
	return nil
}

func writeReport(dir, name string, body []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
