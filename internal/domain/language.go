package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// AutoLanguage asks the transcriber or translator to detect the language
const AutoLanguage = "auto"

// whisperLanguages are the codes whisper reports most often. Used to map
// spelled-out language names (as returned by the OpenAI API) back to codes.
var whisperLanguages = []string{
	"en", "zh", "de", "es", "ru", "ko", "fr", "ja", "pt", "tr", "pl", "ca", "nl",
	"ar", "sv", "it", "id", "hi", "fi", "vi", "he", "uk", "el", "ms", "cs", "ro",
	"da", "hu", "ta", "no", "th", "ur", "hr", "bg", "lt", "la", "mi", "ml", "cy",
	"sk", "te", "fa", "lv", "bn", "sr", "az", "sl", "kn", "et", "mk", "br", "eu",
	"is", "hy", "ne", "mn", "bs", "kk", "sq", "sw", "gl", "mr", "pa", "si", "km",
	"sn", "yo", "so", "af", "oc", "ka", "be", "tg", "sd", "gu", "am", "yi", "lo",
	"uz", "fo", "ht", "ps", "tk", "nn", "mt", "sa", "lb", "my", "bo", "tl", "mg",
	"as", "tt", "haw", "ln", "ha", "ba", "jw", "su",
}

// ValidateLanguage accepts "auto" or any BCP 47 tag and returns it normalized
func ValidateLanguage(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, AutoLanguage) {
		return AutoLanguage, nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
	}
	return tag.String(), nil
}

// NormalizeLanguage turns a code or an English language name into a code.
// Unknown values are returned lowercased.
func NormalizeLanguage(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if tag, err := language.Parse(value); err == nil {
		base, _ := tag.Base()
		return base.String()
	}

	namer := display.English.Languages()
	for _, code := range whisperLanguages {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		if strings.EqualFold(namer.Name(tag), value) {
			return code
		}
	}
	return value
}

// LanguageName returns the English name of a language code, or "" if unknown
func LanguageName(code string) string {
	if code == "" || code == AutoLanguage {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(tag)
}
