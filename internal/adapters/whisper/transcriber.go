package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/devbush/subtranslate/internal/config"
	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/ports"
)

// DefaultModel is used when no model is requested
const DefaultModel = "base"

// Model sizes in bytes (approximate)
var modelSizes = map[string]int64{
	"tiny":   75 * 1024 * 1024,
	"base":   142 * 1024 * 1024,
	"small":  466 * 1024 * 1024,
	"medium": 1500 * 1024 * 1024,
	"large":  3100 * 1024 * 1024,
}

// WAVConverter turns a compressed audio file into 16 kHz mono WAV, the only
// input whisper.cpp reads reliably
type WAVConverter interface {
	ToWAV(ctx context.Context, inputPath, destDir string) (string, error)
}

// Transcriber implements ports.Transcriber and ports.ModelManager using the
// whisper.cpp command line tool
type Transcriber struct {
	modelsDir string
	binPath   string
	converter WAVConverter
}

// Option configures a Transcriber
type Option func(*Transcriber)

// WithBinary pins the whisper.cpp executable instead of searching for it
func WithBinary(path string) Option {
	return func(t *Transcriber) { t.binPath = path }
}

// WithConverter converts non-WAV input before running whisper.cpp
func WithConverter(c WAVConverter) Option {
	return func(t *Transcriber) { t.converter = c }
}

// NewTranscriber creates a new Whisper transcriber
func NewTranscriber(modelsDir string, opts ...Option) *Transcriber {
	if modelsDir == "" {
		modelsDir = config.ModelsDir()
	}
	t := &Transcriber{modelsDir: modelsDir}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transcriber) Name() string {
	return "local"
}

func modelURL(name string) string {
	return fmt.Sprintf("https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-%s.bin", name)
}

func (t *Transcriber) modelPath(name string) string {
	return filepath.Join(t.modelsDir, fmt.Sprintf("ggml-%s.bin", name))
}

func (t *Transcriber) AvailableModels() []ports.Model {
	models := []ports.Model{
		{Name: "tiny", Size: modelSizes["tiny"], Description: "fastest, rough on accents and noise"},
		{Name: "base", Size: modelSizes["base"], Description: "fast, good for clear speech"},
		{Name: "small", Size: modelSizes["small"], Description: "better accuracy, moderate speed"},
		{Name: "medium", Size: modelSizes["medium"], Description: "great accuracy, slower"},
		{Name: "large", Size: modelSizes["large"], Description: "best accuracy, slow"},
	}

	for i := range models {
		models[i].Downloaded = t.IsModelDownloaded(models[i].Name)
	}

	return models
}

func (t *Transcriber) IsModelDownloaded(model string) bool {
	_, err := os.Stat(t.modelPath(model))
	return err == nil
}

func (t *Transcriber) DownloadModel(ctx context.Context, model string, progress func(downloaded, total int64)) error {
	if _, ok := modelSizes[model]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrModelNotFound, model)
	}

	if err := os.MkdirAll(t.modelsDir, 0755); err != nil {
		return err
	}

	destPath := t.modelPath(model)
	tempPath := destPath + ".tmp"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelURL(model), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download model: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	// Partial downloads are removed on failure
	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(out, &progressReader{ctx: ctx, r: resp.Body, total: resp.ContentLength, fn: progress}); err != nil {
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		return err
	}

	success = true
	return nil
}

// progressReader reports bytes read and stops on context cancellation
type progressReader struct {
	ctx   context.Context
	r     io.Reader
	read  int64
	total int64
	fn    func(downloaded, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.fn != nil {
			p.fn(p.read, p.total)
		}
	}
	return n, err
}

func (t *Transcriber) DeleteModel(model string) error {
	return os.Remove(t.modelPath(model))
}

func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts ports.TranscribeOpts) (*domain.Transcript, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	if !t.IsModelDownloaded(model) {
		return nil, fmt.Errorf("%w: %s (run: subtranslate model download %s)", domain.ErrModelNotFound, model, model)
	}

	whisperBin := t.binPath
	if whisperBin == "" {
		whisperBin = FindBinary()
	}
	if whisperBin == "" {
		return nil, fmt.Errorf("%w: whisper binary not found (install whisper.cpp)", domain.ErrTranscriptionFailed)
	}

	workDir, err := os.MkdirTemp("", "subtranslate-whisper-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(workDir)

	input := audioPath
	if !strings.EqualFold(filepath.Ext(audioPath), ".wav") && t.converter != nil {
		input, err = t.converter.ToWAV(ctx, audioPath, workDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrTranscriptionFailed, err)
		}
	}

	language := opts.Language
	if language == "" {
		language = domain.AutoLanguage
	}

	outputBase := filepath.Join(workDir, "transcript")
	args := []string{
		"-m", t.modelPath(model),
		"-f", input,
		"-of", outputBase,
		"-oj",
		"-np",
		"-l", language,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, whisperBin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrTranscriptionFailed, err, lastLine(stderr.String()))
	}

	data, err := os.ReadFile(outputBase + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: missing output: %w", domain.ErrTranscriptionFailed, err)
	}

	return parseWhisperJSON(data, model)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// FindBinary looks for whisper.cpp in the bundled bin directory, then PATH
func FindBinary() string {
	names := []string{"whisper-cli", "whisper", "whisper-cpp", "main"}
	if runtime.GOOS == "windows" {
		for i := range names {
			names[i] += ".exe"
		}
	}

	for _, name := range names {
		bundled := filepath.Join(config.BinDir(), name)
		if _, err := os.Stat(bundled); err == nil {
			return bundled
		}
	}

	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// whisperOutput is the document written by `whisper-cli -oj`
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Timestamps struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"timestamps"`
		Offsets *struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperJSON(data []byte, model string) (*domain.Transcript, error) {
	var output whisperOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("%w: invalid whisper output: %w", domain.ErrTranscriptionFailed, err)
	}

	segments := make([]domain.Segment, 0, len(output.Transcription))
	var fullText strings.Builder

	for _, item := range output.Transcription {
		var start, end float64
		if item.Offsets != nil {
			start = float64(item.Offsets.From) / 1000
			end = float64(item.Offsets.To) / 1000
		} else {
			start = parseTimestamp(item.Timestamps.From)
			end = parseTimestamp(item.Timestamps.To)
		}
		if end < start {
			end = start
		}

		text := strings.TrimSpace(item.Text)
		segments = append(segments, domain.Segment{
			Start: start,
			End:   end,
			Text:  text,
		})

		if text == "" {
			continue
		}
		if fullText.Len() > 0 {
			fullText.WriteString(" ")
		}
		fullText.WriteString(text)
	}

	return &domain.Transcript{
		Text:          fullText.String(),
		Segments:      segments,
		Model:         model,
		Language:      output.Result.Language,
		TranscribedAt: time.Now(),
	}, nil
}

var timestampRegex = regexp.MustCompile(`(\d+):(\d+):(\d+)[,.](\d+)`)

func parseTimestamp(ts string) float64 {
	matches := timestampRegex.FindStringSubmatch(ts)
	if len(matches) != 5 {
		return 0
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])
	millis, _ := strconv.Atoi(matches[4])

	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}

var (
	_ ports.Transcriber  = (*Transcriber)(nil)
	_ ports.ModelManager = (*Transcriber)(nil)
)
