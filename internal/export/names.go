package export

import "unicode"

// FallbackName is used when sanitizing leaves nothing usable.
const FallbackName = "audio_file"

// SanitizeName reduces a display title to a filesystem-safe base name by
// keeping only letters and digits. Everything else, including spaces and
// path separators, is dropped. An empty result falls back to FallbackName.
func SanitizeName(title string) string {
	var b []rune
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b = append(b, r)
		}
	}
	if len(b) == 0 {
		return FallbackName
	}
	return string(b)
}
