package legacy

import (
	"encoding/binary"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

// textRun is a decoded run of characters and its position in the stream.
type textRun struct {
	offset int
	text   string
}

// salvage returns the readable paragraphs of a binary stream in stream order.
func salvage(data []byte, minRun int) []string {
	runs := append(utf16Runs(data, minRun), byteRuns(data, minRun)...)
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].offset < runs[j].offset })

	var out []string
	for _, r := range runs {
		for _, line := range splitParagraphs(r.text) {
			if len([]rune(line)) < minRun || !readable(line) {
				continue
			}
			if n := len(out); n > 0 && out[n-1] == line {
				continue
			}
			out = append(out, line)
		}
	}
	return out
}

// utf16Runs finds little-endian UTF-16 text at either byte alignment.
func utf16Runs(data []byte, minRun int) []textRun {
	decoder := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder()

	var runs []textRun
	for i := 0; i+1 < len(data); {
		j, prev := i, rune(0)
		for j+1 < len(data) && isUTF16Text(data, j, prev) {
			prev = utf16At(data, j)
			j += 2
		}
		if (j-i)/2 < minRun {
			i++
			continue
		}
		if text, err := decoder.Bytes(data[i:j]); err == nil {
			runs = append(runs, textRun{offset: i, text: string(text)})
		}
		i = j
	}
	return runs
}

// byteRuns finds Windows-1252 text.
func byteRuns(data []byte, minRun int) []textRun {
	decoder := charmap.Windows1252.NewDecoder()

	var runs []textRun
	for i := 0; i < len(data); {
		if !isTextByte(data[i]) {
			i++
			continue
		}
		j, high := i, 0
		for j < len(data) && isTextByte(data[j]) {
			if data[j] >= 0x80 {
				high++
			}
			j++
		}
		// Mostly-high runs are binary noise, not accented text.
		if j-i >= minRun && high*10 <= (j-i)*3 {
			if text, err := decoder.Bytes(data[i:j]); err == nil {
				runs = append(runs, textRun{offset: i, text: string(text)})
			}
		}
		i = j
	}
	return runs
}

// isUTF16Text reports whether the code unit at data[at:] continues a text
// run. Non-ASCII units must be followed by another text unit, and Latin
// Extended-A letters must follow a Latin letter, so binary noise after a
// run is not swallowed into it.
func isUTF16Text(data []byte, at int, prev rune) bool {
	r := utf16At(data, at)
	if !isTextUnit(r) {
		return false
	}
	if r < 0x80 {
		return true
	}
	if r >= 0x100 && r <= 0x17F && !isLatinLetter(prev) {
		return false
	}
	if at+3 < len(data) {
		return isTextUnit(utf16At(data, at+2))
	}
	return true
}

func utf16At(data []byte, at int) rune {
	return rune(binary.LittleEndian.Uint16(data[at:]))
}

// isTextUnit accepts Latin, Greek and Cyrillic letters and common
// typographic punctuation. Combining marks are rejected.
func isTextUnit(r rune) bool {
	switch {
	case r < 0x80:
		return isControlText(byte(r)) || (r >= 0x20 && r < 0x7F)
	case r >= 0xA0 && r <= 0x17F:
		return true
	case r >= 0x370 && r <= 0x4FF:
		return true
	}
	switch r {
	case 0x2013, 0x2014, 0x2018, 0x2019, 0x201C, 0x201D, 0x2022, 0x2026:
		return true
	}
	return false
}

func isLatinLetter(r rune) bool {
	return r < 0x180 && unicode.IsLetter(r)
}

func isTextByte(b byte) bool {
	switch {
	case isControlText(b):
		return true
	case b >= 0x20 && b < 0x7F:
		return true
	case b >= 0x80:
		// undefined in Windows-1252
		return b != 0x81 && b != 0x8D && b != 0x8F && b != 0x90 && b != 0x9D
	}
	return false
}

// isControlText accepts tab and the line and paragraph marks used by Office.
func isControlText(b byte) bool {
	return b == '\t' || b == '\n' || b == '\r' || b == '\v'
}

func splitParagraphs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\r' || r == '\n' || r == '\v'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// readable rejects runs that decode to symbols rather than words.
func readable(s string) bool {
	var letters, plain, total int
	for _, r := range s {
		total++
		switch {
		case unicode.IsLetter(r):
			letters++
			plain++
		case unicode.IsSpace(r), unicode.IsDigit(r), unicode.IsPunct(r):
			plain++
		}
	}
	return letters >= 3 && letters*2 >= total && plain*10 >= total*9
}
