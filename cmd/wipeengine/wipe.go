package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"wipeengine/internal/config"
	"wipeengine/internal/logging"
	"wipeengine/internal/pattern"
	"wipeengine/internal/report"
	"wipeengine/internal/safety"
	"wipeengine/internal/wipe"
)

var (
	methodFlag  string
	noVerify    bool
	certOut     string
	rawFlag     bool
	allowFormat bool
	profileFlag string
)

var wipeCmd = &cobra.Command{
	Use:   "wipe <target>",
	Short: "Overwrite and remove a file, directory, or device",
	Args:  cobra.ExactArgs(1),
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().StringVar(&methodFlag, "method", string(pattern.MethodQuick), "wipe method: quick|nist|dod")
	wipeCmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip post-wipe verification")
	wipeCmd.Flags().StringVar(&certOut, "cert-out", "", "write the result report as JSON to this directory")
	wipeCmd.Flags().BoolVar(&rawFlag, "raw", false, "prefer raw device access for a mounted volume when privileged")
	wipeCmd.Flags().BoolVar(&allowFormat, "allow-format", false, "permit the flash wiper's format steps to run")
	wipeCmd.Flags().StringVar(&profileFlag, "profile", "", "performance profile: safe|balanced|aggressive (default from config)")
}

func runWipe(cmd *cobra.Command, args []string) error {
	target, err := filepath.Abs(args[0])
	if err != nil {
		return &invalidArgsError{err}
	}

	method, err := pattern.ValidateMethod(methodFlag)
	if err != nil {
		return &invalidArgsError{err}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if profileFlag != "" {
		cfg.Wipe.Profile = profileFlag
	}
	if err := config.Validate(cfg); err != nil {
		return &invalidArgsError{err}
	}
	logger := logging.New(cfg, verbose)
	defer logger.Close()

	dispatcher := wipe.NewDispatcher()
	dispatcher.Guard = &safety.Guard{ExtraDenyPaths: cfg.Safety.ExtraDenyPaths}

	req := &wipe.Request{
		Target:       target,
		Method:       method,
		Verify:       !noVerify,
		PreferRaw:    rawFlag,
		AllowFormat:  allowFormat,
		MaxSpeedMBps: cfg.EffectiveMaxSpeedMBps(),
		ChunkSize:    cfg.ChunkSize(),
		Progress: func(percent int, message string) {
			if verbose {
				logger.Infof("%d%% %s", percent, message)
			}
		},
	}

	logger.Infof("profile %s: chunk_size=%d max_speed_mbps=%.1f", cfg.Wipe.Profile, req.ChunkSize, req.MaxSpeedMBps)

	logger.Infof("wiping %s with method %s", target, method)
	rep := dispatcher.Dispatch(req)

	if certOut != "" {
		doc := report.FromReport(rep)
		path, err := report.Save(certOut, doc)
		if err != nil {
			logger.Warnf("could not save report: %v", err)
		} else {
			logger.Infof("report written to %s", path)
		}
	}

	if rep.Error != nil {
		var blocked *safety.BlockedError
		if errors.As(rep.Error, &blocked) {
			return &safetyRejectedError{rep.Error}
		}
		return fmt.Errorf("wipe failed: %w", rep.Error)
	}

	fmt.Printf("status=%s kind=%s target=%s\n", rep.Status, rep.Kind, rep.Target)
	return nil
}

// invalidArgsError maps to exit code 3.
type invalidArgsError struct{ err error }

func (e *invalidArgsError) Error() string { return e.err.Error() }
func (e *invalidArgsError) Unwrap() error { return e.err }

// safetyRejectedError maps to exit code 2.
type safetyRejectedError struct{ err error }

func (e *safetyRejectedError) Error() string { return e.err.Error() }
func (e *safetyRejectedError) Unwrap() error { return e.err }

func exitFromError(err error) int {
	var invalid *invalidArgsError
	var blocked *safetyRejectedError
	switch {
	case errors.As(err, &invalid):
		return exitInvalidArgs
	case errors.As(err, &blocked):
		return exitSafetyRejected
	default:
		return exitEngineFailure
	}
}
