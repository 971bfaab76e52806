package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var windowsDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SafeFilename reduces name to a flat ASCII key made of letters, digits, '_', '-' and '.'.
// Path separators become underscores, so the result never contains a directory part.
// It may return an empty string, callers must reject that.
func SafeFilename(name string) string {
	var ascii strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < unicode.MaxASCII {
			ascii.WriteRune(r)
		}
	}

	flat := strings.NewReplacer("/", " ", `\`, " ").Replace(ascii.String())
	joined := strings.Join(strings.Fields(flat), "_")

	var out strings.Builder
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			out.WriteRune(r)
		}
	}

	result := strings.Trim(out.String(), "._")
	if result == "" {
		return ""
	}

	stem, _, _ := strings.Cut(result, ".")
	if _, reserved := windowsDeviceNames[strings.ToUpper(stem)]; reserved {
		result = "_" + result
	}
	return result
}
