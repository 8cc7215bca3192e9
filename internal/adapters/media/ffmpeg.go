package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"codeberg.org/gruf/go-ffmpreg/ffmpreg"
	"codeberg.org/gruf/go-ffmpreg/wasm"
	"github.com/tetratelabs/wazero"

	"github.com/devbush/subtranslate/internal/config"
	"github.com/devbush/subtranslate/internal/domain"
)

func ffmpegBinaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// FindFFmpeg returns a system ffmpeg: the bundled bin directory first,
// then PATH. Empty when none is installed.
func FindFFmpeg() string {
	bundled := filepath.Join(config.BinDir(), ffmpegBinaryName())
	if _, err := os.Stat(bundled); err == nil {
		return bundled
	}
	if path, err := exec.LookPath(ffmpegBinaryName()); err == nil {
		return path
	}
	return ""
}

// extractArgs converts any input to 16 kHz mono 16-bit PCM WAV
func extractArgs(input, output string) []string {
	return []string{
		"-i", input,
		"-vn",
		"-ar", fmt.Sprint(SampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		output,
	}
}

// runFFmpeg uses the ffmpeg executable at bin
func runFFmpeg(ctx context.Context, bin, input, output string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, append([]string{"-hide_banner", "-loglevel", "error"}, extractArgs(input, output)...)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// runEmbeddedFFmpeg runs the WebAssembly build of ffmpeg. The input and
// output directories are mounted into the module's filesystem.
func runEmbeddedFFmpeg(ctx context.Context, input, output string) error {
	absInput, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	inputDir := filepath.Dir(absInput)
	outputDir := filepath.Dir(absOutput)

	var stderr bytes.Buffer
	args := wasm.Args{
		Stderr: &stderr,
		Stdout: io.Discard,
		Args:   extractArgs(absInput, absOutput),
		Config: func(cfg wazero.ModuleConfig) wazero.ModuleConfig {
			fsCfg := wazero.NewFSConfig().WithDirMount(inputDir, inputDir)
			if outputDir != inputDir {
				fsCfg = fsCfg.WithDirMount(outputDir, outputDir)
			}
			return cfg.WithFSConfig(fsCfg)
		},
	}

	rc, err := ffmpreg.Ffmpeg(ctx, args)
	if err != nil {
		return fmt.Errorf("%w: embedded ffmpeg: %w", domain.ErrFFmpegNotFound, err)
	}
	if rc != 0 {
		return fmt.Errorf("embedded ffmpeg exited with code %d: %s", rc, lastLine(stderr.String()))
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
