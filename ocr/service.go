package ocr

import (
	"image"
	"strings"
	"unicode"
)

// Result is one recognition outcome. Confidence runs 0-100. Failed
// recognition is reported as empty text with confidence 0, never as an
// error; noisy frames are the expected case on this data source.
type Result struct {
	Text       string
	Confidence float64
}

// Service is the recognition boundary. The parser only depends on this
// interface; tests drive it with scripted results.
type Service interface {
	// ReadText recognizes free text inside the region. A zero region
	// reads the whole image.
	ReadText(img image.Image, region image.Rectangle) Result
	// ReadNumber recognizes with a numeric charset only.
	ReadNumber(img image.Image, region image.Rectangle) Result
}

// IsValidPlayerName filters OCR noise from the name region. A spurious
// player corrupts the persisted player table permanently, so this errs
// toward rejecting.
func IsValidPlayerName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return false
	}

	letters := 0
	alnum := 0
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters++
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if letters == 0 {
		return false
	}
	// Mostly punctuation means a misread of table chrome.
	return alnum*2 >= len(name)
}
