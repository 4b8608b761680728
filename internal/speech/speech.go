// Package speech wraps the optional external voice tools: whisper for
// speech-to-text, piper for text-to-speech, arecord for capture and ffplay
// for playback.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/comigor/jarvis-assistant/internal/config"
	"github.com/comigor/jarvis-assistant/internal/logger"
)

var (
	// ErrUnavailable means a required binary is not installed.
	ErrUnavailable = errors.New("speech backend is not installed")
	// ErrFailed means a backend ran but did not produce output.
	ErrFailed = errors.New("speech backend failed")
)

// Engine runs the voice tools. The binary fields may be absolute paths.
type Engine struct {
	cfg config.SpeechConfig

	Whisper  string
	Piper    string
	Recorder string
	Player   string
}

// New returns an engine that finds its tools on PATH.
func New(cfg config.SpeechConfig) *Engine {
	return &Engine{cfg: cfg, Whisper: "whisper", Piper: "piper", Recorder: "arecord", Player: "ffplay"}
}

// AutoSpeak reports whether replies should be read aloud.
func (e *Engine) AutoSpeak() bool { return bool(e.cfg.AutoSpeak) }

func lookup(bin string) (string, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, filepath.Base(bin))
	}
	return path, nil
}

// Transcribe converts an audio clip to text. filename only supplies the extension.
func (e *Engine) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if _, err := lookup(e.Whisper); err != nil {
		return "", err
	}
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".wav"
	}

	dir, err := os.MkdirTemp("", "jarvis-stt-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "audio"+ext)
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return "", err
	}
	return e.TranscribeFile(ctx, path)
}

// TranscribeFile runs whisper on a file already on disk.
func (e *Engine) TranscribeFile(ctx context.Context, path string) (string, error) {
	bin, err := lookup(e.Whisper)
	if err != nil {
		return "", err
	}

	outDir, err := os.MkdirTemp("", "jarvis-stt-out-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, bin, path,
		"--model", e.cfg.WhisperModel,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--verbose", "False",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		logger.L.Warn("whisper failed", "error", err, "output", string(out))
		return "", fmt.Errorf("%w: whisper: %v", ErrFailed, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	text, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", fmt.Errorf("%w: whisper wrote no transcript", ErrFailed)
	}
	return strings.TrimSpace(string(text)), nil
}

// Synthesize renders text to WAV bytes with piper.
func (e *Engine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	bin, err := lookup(e.Piper)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "jarvis-tts-*.wav")
	if err != nil {
		return nil, err
	}
	out := f.Name()
	f.Close()
	defer os.Remove(out)

	cmd := exec.CommandContext(ctx, bin, "--model", e.cfg.PiperVoice, "--output_file", out)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logger.L.Warn("piper failed", "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("%w: piper failed to synthesize audio", ErrFailed)
	}

	audio, err := os.ReadFile(out)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: piper produced no audio", ErrFailed)
	}
	return audio, nil
}

// Record captures a mono clip of the configured length into path.
func (e *Engine) Record(ctx context.Context, path string) error {
	bin, err := lookup(e.Recorder)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, bin, "-q",
		"-f", "S16_LE",
		"-c", "1",
		"-r", strconv.Itoa(e.cfg.SampleRate),
		"-d", strconv.Itoa(e.cfg.RecordSeconds),
		path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: record: %v: %s", ErrFailed, err, out)
	}
	return nil
}

// Speak synthesizes text and plays it, blocking until playback ends.
func (e *Engine) Speak(ctx context.Context, text string) error {
	player, err := lookup(e.Player)
	if err != nil {
		return err
	}
	audio, err := e.Synthesize(ctx, text)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "jarvis-speak-*.wav")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(audio); err != nil {
		f.Close()
		return err
	}
	f.Close()

	if err := exec.CommandContext(ctx, player, "-nodisp", "-autoexit", "-loglevel", "quiet", f.Name()).Run(); err != nil {
		return fmt.Errorf("%w: playback: %v", ErrFailed, err)
	}
	return nil
}
