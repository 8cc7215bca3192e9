// Package prompt builds the instructions sent to chat model translators.
package prompt

import (
	"fmt"
	"strings"

	"github.com/devbush/subtranslate/internal/domain"
)

// MaxTokens bounds a translated subtitle line or report paragraph
const MaxTokens = 4096

func describe(code string) string {
	if name := domain.LanguageName(code); name != "" {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

// Translation asks a chat model for a bare translation of text
func Translation(text, source, target string) string {
	var sb strings.Builder
	if source == "" || source == domain.AutoLanguage {
		sb.WriteString("Detect the language of the text below and translate it")
	} else {
		fmt.Fprintf(&sb, "Translate the text below from %s", describe(source))
	}
	fmt.Fprintf(&sb, " into %s.\n", describe(target))
	sb.WriteString("It is a line of a subtitle transcript. Keep the meaning and tone, ")
	sb.WriteString("do not add notes or explanations, and reply with the translation only.\n\n")
	sb.WriteString(text)
	return sb.String()
}

// Clean strips the wrapping some models add around a bare answer
func Clean(reply string) string {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") && strings.HasSuffix(reply, "```") && len(reply) >= 6 {
		reply = strings.TrimSpace(strings.Trim(reply, "`"))
	}
	return reply
}
