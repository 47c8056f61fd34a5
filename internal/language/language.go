package language

import (
	"strings"
	"sync"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// whisperCodes lists the languages Whisper transcribes.
var whisperCodes = []string{
	"af", "ar", "az", "be", "bg", "bs", "ca", "cs", "cy", "da", "de", "el",
	"en", "es", "et", "fa", "fi", "fr", "gl", "he", "hi", "hr", "hu", "hy",
	"id", "is", "it", "ja", "kk", "kn", "ko", "lt", "lv", "mi", "mk", "mr",
	"ms", "ne", "nl", "no", "pl", "pt", "ro", "ru", "sk", "sl", "sr", "sv",
	"sw", "ta", "th", "tl", "tr", "uk", "ur", "vi", "zh",
}

var (
	indexOnce sync.Once
	supported map[string]struct{}
	byName    map[string]string
)

func buildIndex() {
	supported = make(map[string]struct{}, len(whisperCodes))
	byName = make(map[string]string, len(whisperCodes))
	namer := display.English.Languages()
	for _, code := range whisperCodes {
		supported[code] = struct{}{}
		if name := namer.Name(xlanguage.Make(code)); name != "" {
			byName[strings.ToLower(name)] = code
		}
	}
}

// ToISO2 converts a code, tag, or English name to ISO 639-1. It returns ""
// for empty or unrecognized input.
func ToISO2(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	indexOnce.Do(buildIndex)
	if code, ok := byName[value]; ok {
		return code
	}
	tag, err := xlanguage.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return ""
	}
	code := base.String()
	if len(code) != 2 {
		return ""
	}
	return code
}

// ToISO3 converts a recognized language to ISO 639-2, or "und".
func ToISO3(value string) string {
	code := ToISO2(value)
	if code == "" {
		return "und"
	}
	base, err := xlanguage.ParseBase(code)
	if err != nil {
		return "und"
	}
	return base.ISO3()
}

// DisplayName returns the English name of a language. Empty input means
// automatic detection.
func DisplayName(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Auto-detect"
	}
	code := ToISO2(value)
	if code == "" {
		return strings.ToUpper(strings.TrimSpace(value))
	}
	if name := display.English.Languages().Name(xlanguage.Make(code)); name != "" {
		return name
	}
	return strings.ToUpper(code)
}

// Supported reports whether Whisper can transcribe the language.
func Supported(value string) bool {
	code := ToISO2(value)
	if code == "" {
		return false
	}
	indexOnce.Do(buildIndex)
	_, ok := supported[code]
	return ok
}
