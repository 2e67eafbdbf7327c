// SPDX-License-Identifier: MIT
package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/audio"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/config"
	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"
)

func restoreStderrLogging(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		if _, err := applog.Configure(config.DefaultLogFormat, ""); err != nil {
			t.Errorf("restoring stderr logging: %v", err)
		}
	})
}

func TestStartPipeline(t *testing.T) {
	tests := []struct {
		name     string
		headless bool
		buildErr error
		wantFile bool
	}{
		{name: "Build Failure Keeps Stderr", buildErr: audio.ErrDeviceNotFound},
		{name: "Terminal UI Logs To File", wantFile: true},
		{name: "Headless Keeps Stderr", headless: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreStderrLogging(t)

			cfg := config.NewConfig()
			cfg.LogFile = filepath.Join(t.TempDir(), "swi.log")
			cfg.Headless = tt.headless

			p, closeLog, err := startPipeline(cfg, func(*config.Config) (*pipeline, error) {
				if tt.buildErr != nil {
					return nil, tt.buildErr
				}
				return &pipeline{}, nil
			})
			if tt.buildErr != nil {
				if !errors.Is(err, tt.buildErr) {
					t.Fatalf("startPipeline() error = %v, want %v", err, tt.buildErr)
				}
				if p != nil || closeLog != nil {
					t.Error("startPipeline() returned a pipeline alongside an error")
				}
			} else {
				if err != nil {
					t.Fatalf("startPipeline() error = %v", err)
				}
				defer closeLog()
			}

			_, statErr := os.Stat(cfg.LogFile)
			if got := statErr == nil; got != tt.wantFile {
				t.Errorf("log file exists = %v, want %v", got, tt.wantFile)
			}
		})
	}
}

func TestStartPipelineLogsAfterBuild(t *testing.T) {
	restoreStderrLogging(t)

	cfg := config.NewConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "swi.log")

	p, closeLog, err := startPipeline(cfg, func(*config.Config) (*pipeline, error) {
		applog.Infof("building")
		return &pipeline{}, nil
	})
	if err != nil {
		t.Fatalf("startPipeline() error = %v", err)
	}
	applog.Infof("running")
	p.close()
	if err := closeLog(); err != nil {
		t.Fatalf("closeLog() error = %v", err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(data), "building") {
		t.Error("a line logged while building went to the log file instead of stderr")
	}
	if !strings.Contains(string(data), "running") {
		t.Errorf("log file = %q, want the line logged after startup", data)
	}
}

func TestStartPipelineBadLogFile(t *testing.T) {
	restoreStderrLogging(t)

	cfg := config.NewConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "missing", "swi.log")

	if _, _, err := startPipeline(cfg, func(*config.Config) (*pipeline, error) {
		return &pipeline{}, nil
	}); err == nil {
		t.Error("startPipeline() with an unwritable log file succeeded")
	}
}
