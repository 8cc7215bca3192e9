package cli

import (
	"testing"

	"github.com/devbush/subtranslate/internal/adapters/whisper"
	"github.com/devbush/subtranslate/internal/config"
)

func findDep(deps []depStatus, name string) (depStatus, bool) {
	for _, d := range deps {
		if d.Name == name {
			return d, true
		}
	}
	return depStatus{}, false
}

func TestCollectDepsLocal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.Whisper = "/opt/whisper/whisper-cli"
	cfg.Paths.FFmpeg = "/opt/ffmpeg/ffmpeg"
	w := whisper.NewTranscriber(t.TempDir())

	deps := collectDeps(cfg, w)

	if d, _ := findDep(deps, "whisper.cpp"); !d.OK || d.Detail != "/opt/whisper/whisper-cli" {
		t.Errorf("whisper.cpp = %+v", d)
	}
	if d, _ := findDep(deps, "ffmpeg"); d.Detail != "/opt/ffmpeg/ffmpeg" {
		t.Errorf("ffmpeg = %+v", d)
	}
	if d, ok := findDep(deps, "models"); !ok || d.OK {
		t.Errorf("models = %+v, want missing default model", d)
	}
	if d, _ := findDep(deps, "translator"); !d.OK {
		t.Errorf("translator = %+v", d)
	}
}

func TestCollectDepsAPIKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Transcription.Provider = config.TranscriberOpenAI
	cfg.Translation.Provider = config.TranslatorAnthropic
	cfg.Translation.APIKey = "sk-ant-test"

	deps := collectDeps(cfg, whisper.NewTranscriber(t.TempDir()))

	if _, ok := findDep(deps, "whisper.cpp"); ok {
		t.Error("whisper.cpp listed for API transcription")
	}
	if d, _ := findDep(deps, "transcriber"); d.OK {
		t.Errorf("transcriber = %+v, want missing key", d)
	}
	if d, _ := findDep(deps, "translator"); !d.OK || d.Detail != "Anthropic, ANTHROPIC_API_KEY set" {
		t.Errorf("translator = %+v", d)
	}
}
