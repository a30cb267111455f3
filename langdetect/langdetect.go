// Package langdetect guesses the natural language of recognized text.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// minRunes is the shortest text worth detecting.
const minRunes = 8

var (
	detector     lingua.LanguageDetector
	detectorOnce sync.Once
)

var languages = []lingua.Language{
	lingua.English,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Russian,
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithLowAccuracyMode().
			Build()
	})
	return detector
}

// Detect returns the ISO 639-1 code and English name of the language of text.
// It returns ("", "") when the text is too short or the language is unknown.
func Detect(text string) (code, name string) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minRunes {
		return "", ""
	}

	lang, ok := getDetector().DetectLanguageOf(text)
	if !ok {
		return "", ""
	}
	return strings.ToLower(lang.IsoCode639_1().String()), lang.String()
}
