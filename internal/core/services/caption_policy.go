package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// figurePattern matches page text that refers to a figure, table or chart.
var figurePattern = regexp.MustCompile(`(?i)\b(figur|figure|tabell|chart|diagram|graf)\b`)

// ShouldCaption decides whether a PDF page is sent to the captioner.
// Both the caption and render switches must be on. In auto mode a page
// qualifies when it is blank, shorter than TextMinChars or mentions a figure.
func ShouldCaption(pageText string, cfg domain.CaptionConfig) bool {
	if !cfg.ImageCaptions || !cfg.RenderPages {
		return false
	}
	switch cfg.Mode {
	case domain.CaptionModeAlways:
		return true
	case domain.CaptionModeAuto:
		text := strings.TrimSpace(pageText)
		return text == "" ||
			utf8.RuneCountInString(text) < cfg.TextMinChars ||
			figurePattern.MatchString(text)
	default:
		return false
	}
}
