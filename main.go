// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/cmd"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/analysis"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/audio"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/config"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/engine"
	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/present"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/transport"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/transport/udp"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/tui"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/pkg/build"
)

// main is the entry point for the inspector.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load the configuration
//   - Initialize PortAudio and resolve the capture device
//   - Build the analyzer, sinks, transports and recorder
//
// 2. Concurrent Phase (Hot Path):
//   - Start the capture worker
//   - Run the terminal UI, or wait for a signal when headless
//
// 3. Shutdown Phase (Cold Path):
//   - Stop the worker and close the source
//   - Close transports and finish the recording
func main() {
	os.Exit(run())
}

func run() int {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Builds without ldflags keep the default build information.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build: %v", err)
	}

	// One thread for the capture worker, one for the UI and I/O.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nRun '%s --help' for usage.\n", err, build.GetBuildFlags().Name)
		return 2
	}

	switch opts.Command {
	case cmd.CommandNone:
		return 0
	case cmd.CommandDevices:
		return listDevices(opts)
	}

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		applog.Errorf("%v", err)
		return 1
	}
	if err := opts.Apply(cfg); err != nil {
		applog.Errorf("%v", err)
		return 1
	}

	// Fatal startup errors must reach the terminal, so logs stay on stderr
	// until the pipeline is built.
	level, _ := applog.ParseLevel(cfg.LogLevel)
	applog.SetLevel(level)
	if _, err := applog.Configure(cfg.LogFormat, ""); err != nil {
		applog.Errorf("%v", err)
		return 1
	}
	applog.Infof("Main: Starting %s", build.GetBuildFlags())

	if err := audio.Initialize(); err != nil {
		applog.Errorf("%v", err)
		return 1
	}
	defer audio.Terminate()

	p, closeLog, err := startPipeline(cfg, newPipeline)
	if err != nil {
		applog.Errorf("%v", err)
		return 1
	}
	defer closeLog()
	defer p.close()

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go p.engine.Run(ctx)
	if p.broadcaster != nil {
		p.broadcaster.Start()
	}

	if cfg.Headless {
		applog.Infof("Main: Capturing headless from %q, press Ctrl+C to stop", p.device.Name)
		select {
		case <-ctx.Done():
		case <-p.engine.Done():
		}
	} else {
		model := tui.NewScopeModel(p.engine, p.views, fmt.Sprintf("%s (%s, %d ch, %.0f Hz)",
			p.device.Name, p.format.Mode, p.format.Channels, p.format.SampleRate))
		if err := tui.StartScopeUI(ctx, model); err != nil {
			applog.Errorf("Main: Terminal UI: %v", err)
		}
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	stop()
	if err := p.engine.Close(); err != nil {
		applog.Warnf("Main: Closing source: %v", err)
	}
	<-p.engine.Done()

	if err := p.engine.Err(); err != nil {
		applog.Errorf("Main: %v", err)
		return 1
	}
	return 0
}

// startPipeline builds the pipeline while logs still go to stderr. Once it
// succeeds and the terminal UI is about to own the screen, logging moves to
// cfg.LogFile. Headless runs keep logging to stderr.
func startPipeline(cfg *config.Config, newFn func(*config.Config) (*pipeline, error)) (*pipeline, func() error, error) {
	p, err := newFn(cfg)
	if err != nil {
		return nil, nil, err
	}

	logPath := cfg.LogFile
	if cfg.Headless {
		logPath = ""
	}
	closeLog, err := applog.Configure(cfg.LogFormat, logPath)
	if err != nil {
		if p.engine != nil {
			_ = p.engine.Close()
		}
		p.close()
		return nil, nil, err
	}
	if logPath != "" {
		fmt.Fprintf(os.Stderr, "Logging to %s\n", logPath)
	}
	return p, closeLog, nil
}

// pipeline holds everything built during startup.
type pipeline struct {
	device      audio.Device
	format      audio.CaptureConfig
	engine      *engine.Engine
	views       tui.Views
	broadcaster *transport.Broadcaster
	recorder    *audio.Recorder
}

// newPipeline resolves the device, opens the stream and wires the sinks.
// Every error it returns is fatal; nothing has started running yet.
func newPipeline(cfg *config.Config) (_ *pipeline, err error) {
	p := &pipeline{}
	var cleanup []func() error
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				_ = cleanup[i]()
			}
		}
	}()

	host, err := audio.NewHost()
	if err != nil {
		return nil, err
	}
	mode := audio.ModeInput
	if cfg.UseLoopback() {
		mode = audio.ModeLoopback
	}
	p.device, err = audio.ResolveDevice(host, mode)
	if err != nil {
		return nil, err
	}
	p.format = audio.CaptureConfigFor(p.device, mode, cfg.InputBlockTimeInSeconds)
	applog.Infof("Main: Using %q via %s (%d ch, %.0f Hz, %d frames/block)",
		p.device.Name, host.Name(), p.format.Channels, p.format.SampleRate, p.format.BlockLength())

	source, err := audio.OpenSource(p.device, p.format)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, source.Close)

	var (
		engineOpts []engine.Option
		analyzer   analysis.SpectrumAnalyzer
		spectrum   *present.SpectrumSink
	)

	if cfg.SpectrumEnabled() {
		window, err := analysis.ParseWindowFunc(cfg.WindowFunction)
		if err != nil {
			return nil, err
		}
		a, err := analysis.NewAnalyzer(p.format.BlockLength(), p.format.SampleRate, window)
		if err != nil {
			return nil, err
		}
		applog.Infof("Main: Spectrum of %d samples at %.0f Hz gives %d bins, %.2f Hz apart",
			a.Size(), a.SampleRate(), a.Bins(), a.FrequencyForBin(1))
		analyzer = a
	}

	if !cfg.Headless && cfg.TimeDomainScopeEnabled {
		scope := present.NewScopeSink(p.format.BlockDuration)
		p.views.Scope = scope
		p.views.ScopeRange = tui.Range{Min: cfg.TimeDomainScopeSettings.YMinLimit, Max: cfg.TimeDomainScopeSettings.YMaxLimit}
		engineOpts = append(engineOpts, engine.WithWaveformSink(scope))
	}
	if cfg.FrequencyDomainScopeEnabled || cfg.Transport.WebSocketEnabled || cfg.Transport.UDPEnabled {
		spectrum = present.NewSpectrumSink()
		engineOpts = append(engineOpts, engine.WithSpectrumSink(spectrum))
		if !cfg.Headless && cfg.FrequencyDomainScopeEnabled {
			p.views.Spectrum = spectrum
			p.views.SpectrumRange = tui.Range{Min: cfg.FrequencyDomainScopeSettings.YMinLimit, Max: cfg.FrequencyDomainScopeSettings.YMaxLimit}
		}
	}
	if !cfg.Headless && cfg.FFTSpectrumVisualizerEnabled {
		s := cfg.FFTSpectrumVisualizerSettings
		bars := present.NewBarSink(s.BarCount, s.DecayCoeff)
		p.views.Bars = bars
		p.views.BarRange = tui.Range{Min: s.YMinLimit, Max: s.YMaxLimit}
		engineOpts = append(engineOpts, engine.WithSpectrumSink(bars))
	}

	if spectrum != nil {
		transports, err := openTransports(cfg)
		if err != nil {
			return nil, err
		}
		if len(transports) > 0 {
			interval := time.Duration(cfg.Transport.UDPSendIntervalMs) * time.Millisecond
			p.broadcaster = transport.NewBroadcaster(&spectrum.Frames, interval, transports...)
			cleanup = append(cleanup, p.broadcaster.Close)
		}
	}

	if cfg.Recording.Enabled {
		p.recorder, err = audio.StartRecording(cfg.Recording.OutputFile, p.format)
		if err != nil {
			return nil, err
		}
		cleanup = append(cleanup, p.recorder.Close)
		engineOpts = append(engineOpts, engine.WithBlockWriter(p.recorder))
	}

	p.engine, err = engine.New(source, analyzer, engineOpts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// openTransports creates the enabled network sinks. On failure the ones
// already opened are closed.
func openTransports(cfg *config.Config) (_ []transport.Transport, err error) {
	var transports []transport.Transport
	defer func() {
		if err != nil {
			for _, t := range transports {
				_ = t.Close()
			}
		}
	}()

	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		if err != nil {
			return nil, err
		}
		transports = append(transports, ws)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return nil, err
		}
		publisher, err := udp.NewUDPPublisher(sender)
		if err != nil {
			_ = sender.Close()
			return nil, err
		}
		transports = append(transports, publisher)
	}

	if len(transports) > 0 && applog.GetLevel() == applog.LevelDebug {
		transports = append(transports, transport.NewLoggingTransport())
	}
	return transports, nil
}

// close releases the network sinks and finishes the recording. The source
// is closed through the engine.
func (p *pipeline) close() {
	if p.broadcaster != nil {
		if err := p.broadcaster.Close(); err != nil {
			applog.Warnf("Main: Closing transports: %v", err)
		}
	}
	if p.recorder != nil {
		frames := p.recorder.Frames()
		if err := p.recorder.Close(); err != nil {
			applog.Errorf("Main: Finishing recording: %v", err)
			return
		}
		applog.Infof("Main: Recording saved to %s (%d frames)", p.recorder.Path(), frames)
	}
}

// listDevices runs the devices subcommand.
func listDevices(opts *cmd.Options) int {
	if err := audio.Initialize(); err != nil {
		applog.Errorf("%v", err)
		return 1
	}
	defer audio.Terminate()

	if opts.Plain {
		devices, err := audio.HostDevices()
		if err != nil {
			applog.Errorf("%v", err)
			return 1
		}
		audio.ListDevices(os.Stdout, devices)
		return 0
	}

	if err := tui.StartDeviceListUI(audio.HostDevices, opts.BlockTime); err != nil {
		applog.Errorf("%v", err)
		return 1
	}
	return 0
}
