package web

import (
	"html/template"
	"strings"

	"github.com/devbush/subtranslate/internal/domain"
)

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Open Source AI Subtitle Translator</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 760px; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; height: 14rem; font-family: monospace; }
#status { margin: 1rem 0; }
</style>
</head>
<body>
<h1>Open Source AI Subtitle Translator</h1>
<p>Upload an audio (.mp3) or video (.mp4) file to get a translated .srt subtitle.</p>
<form id="form">
  <p><input type="file" name="file" accept="{{.Accept}}" required></p>
  <p>
    <label>Target language
      <select name="target">
      {{- range .Languages}}
        <option value="{{.Code}}"{{if .Selected}} selected{{end}}>{{.Name}} ({{.Code}})</option>
      {{- end}}
      </select>
    </label>
  </p>
  <p><button type="submit">Translate</button></p>
</form>
<div id="status"></div>
<p id="download"></p>
<textarea id="report" readonly></textarea>
<script>
document.getElementById("form").addEventListener("submit", async (e) => {
  e.preventDefault();
  const status = document.getElementById("status");
  const download = document.getElementById("download");
  const report = document.getElementById("report");
  status.textContent = "Processing, this can take a while...";
  download.innerHTML = "";
  report.value = "";
  try {
    const res = await fetch("/api/translate", { method: "POST", body: new FormData(e.target) });
    const body = await res.json();
    if (!res.ok) { status.textContent = body.message; return; }
    status.textContent = body.message;
    report.value = body.data.report;
    const a = document.createElement("a");
    a.href = body.data.subtitle_url;
    a.textContent = "Download subtitle (.srt)";
    download.appendChild(a);
  } catch (err) {
    status.textContent = "processing failed: " + err;
  }
});
</script>
</body>
</html>
`))

type languageOption struct {
	Code     string
	Name     string
	Selected bool
}

// uiLanguages are offered in the target selector
var uiLanguages = []string{
	"ar", "de", "en", "es", "fr", "hi", "id", "it", "ja", "ko",
	"ms", "nl", "pl", "pt", "ru", "th", "tr", "uk", "vi", "zh",
}

func indexHTML(selected string) string {
	langs := make([]languageOption, 0, len(uiLanguages))
	for _, code := range uiLanguages {
		langs = append(langs, languageOption{
			Code:     code,
			Name:     domain.LanguageName(code),
			Selected: code == selected,
		})
	}

	var sb strings.Builder
	data := struct {
		Accept    string
		Languages []languageOption
	}{
		Accept:    strings.Join(domain.SupportedExtensions(), ","),
		Languages: langs,
	}
	if err := pageTemplate.Execute(&sb, data); err != nil {
		return "template error: " + err.Error()
	}
	return sb.String()
}
