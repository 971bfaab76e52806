package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "report.pdf", want: "report.pdf"},
		{name: "spaces and parentheses", in: "My Report (final).pdf", want: "My_Report_final.pdf"},
		{name: "relative traversal", in: "../../../etc/passwd", want: "etc_passwd"},
		{name: "windows path", in: `C:\Users\me\notes.txt`, want: "C_Users_me_notes.txt"},
		{name: "accents folded", in: "i contain cool ümläuts.txt", want: "i_contain_cool_umlauts.txt"},
		{name: "leading dots", in: "...hidden", want: "hidden"},
		{name: "reserved device name", in: "con.txt", want: "_con.txt"},
		{name: "only unsafe chars", in: "()[]{}", want: ""},
		{name: "only separators", in: "../..", want: ""},
		{name: "non latin dropped", in: "отчёт.docx", want: "docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFilename(tt.in))
		})
	}
}

func TestSafeFilenameHasNoUnsafeCharacters(t *testing.T) {
	for _, in := range []string{"a b/c\\d (e) [f] & g?.txt", " /x/ ", "name\twith\nwhitespace.bin"} {
		got := SafeFilename(in)
		assert.NotContains(t, got, " ")
		assert.NotContains(t, got, "/")
		assert.NotContains(t, got, `\`)
		assert.NotContains(t, got, "(")
		assert.NotContains(t, got, ")")
	}
}
