// Package app wires the command line surface to the runtime components.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"syscall"
	"time"

	"github.com/akorchak/lingopad/internal/asr"
	"github.com/akorchak/lingopad/internal/audio"
	"github.com/akorchak/lingopad/internal/cli"
	"github.com/akorchak/lingopad/internal/config"
	"github.com/akorchak/lingopad/internal/doctor"
	"github.com/akorchak/lingopad/internal/hotkey"
	"github.com/akorchak/lingopad/internal/indicator"
	"github.com/akorchak/lingopad/internal/ipc"
	"github.com/akorchak/lingopad/internal/logging"
	"github.com/akorchak/lingopad/internal/session"
	"github.com/akorchak/lingopad/internal/soundpad"
	"github.com/akorchak/lingopad/internal/translate"
	"github.com/akorchak/lingopad/internal/tts"
	"github.com/akorchak/lingopad/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("lingopad"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("lingopad"))
		return 0
	}

	switch parsed.Command {
	case cli.CommandVersion:
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	case cli.CommandVoices:
		return r.commandVoices()
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, "stop")
	case cli.CommandCancel:
		return r.forwardOrFail(ctx, "cancel")
	}

	// The remaining commands need config.
	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
	}

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandVoices() int {
	voices := tts.KnownLanguages()
	langs := make([]string, 0, len(voices))
	for lang := range voices {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		fmt.Fprintf(r.Stdout, "%s\t%s\n", lang, voices[lang])
	}
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		fmt.Fprintln(r.Stdout, audio.DescribeDevice(device))
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	resp, handled, err := tryForward(ctx, "status")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "not running")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	resp, handled, err := tryForward(ctx, command)
	if !handled {
		fmt.Fprintln(r.Stderr, "error: lingopad daemon is not running")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandRun starts the resident daemon: hotkey loop plus control socket.
func (r Runner) commandRun(ctx context.Context, cfgLoaded config.Loaded) int {
	logRuntime, err := logging.New(cfgLoaded.Config.App.LogLevel)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	socketPath := ipc.SocketPath()
	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: lingopad daemon is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	cfg := cfgLoaded.Config

	recognizer := asr.NewWhisper(cfg.Translation.ModelsDir, cfg.Translation.WhisperModel)
	defer recognizer.Close()

	router := soundpad.NewRouter(cfg.SoundPad, logger)
	defer router.Close()

	pipeline := session.Pipeline{
		Recorder:    audio.NewRecorder(cfg.Audio.Input, cfg.Audio.Fallback),
		Recognizer:  recognizer,
		Translator:  translate.NewEngine(cfg.Translation),
		Synthesizer: tts.NewEngine(cfg.TTS),
		Player:      router,
	}

	tempDir, err := logging.StateDir()
	if err != nil {
		tempDir = os.TempDir()
	}

	controller := session.NewController(session.Config{
		SourceLang:      cfg.Translation.SourceLang,
		TargetLang:      cfg.Translation.TargetLang,
		MinClipDuration: time.Duration(cfg.Audio.MinDurationMS) * time.Millisecond,
		MaxClipDuration: time.Duration(cfg.Audio.MaxDurationS) * time.Second,
		Voice:           cfg.TTS.Voice,
		Rate:            cfg.TTS.Rate,
		Volume:          cfg.TTS.Volume,
		TempDir:         tempDir,
	}, logger, pipeline, indicator.NewDesktop(logger))

	listenerHK, err := hotkey.New(cfg.App.Hotkey, cfg.App.HotkeyMode)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	loop := session.NewLoop(logger, controller, listenerHK)

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, loop)
	}()

	logger.Info("daemon start",
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
		"socket", socketPath,
		"hotkey", cfg.App.Hotkey,
		"mode", cfg.App.HotkeyMode,
		"pair", cfg.Translation.SourceLang+">"+cfg.Translation.TargetLang,
	)
	fmt.Fprintf(r.Stdout, "lingopad ready: hold %s to translate %s to %s\n",
		cfg.App.Hotkey, cfg.Translation.SourceLang, cfg.Translation.TargetLang)

	runErr := loop.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: control server failed: %v\n", serverErr)
		return 1
	}
	if runErr != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
		logger.Error("daemon failed", "error", runErr.Error())
		return 1
	}

	logger.Info("daemon stop")
	return 0
}

func tryForward(ctx context.Context, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, ipc.SocketPath(), ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
		return ipc.Response{}, false, nil
	}
	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}
