// Package sentence implements the single-delimiter sentence/word parsing
// rules a storage node applies to a file's content (spec.md §4.7). It has no
// knowledge of locks, sessions, or disk layout: it is pure text
// transformation, safe to unit test in isolation from the node's network and
// filesystem code.
package sentence

import "strings"

// isDelimiter reports whether b is one of the three sentence-terminating
// characters.
func isDelimiter(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// isSpace reports whether b is ASCII whitespace. Delimiters and whitespace
// are matched byte-wise; any UTF-8 continuation byte is >= 0x80 and can
// never collide with either set, so scanning by byte rather than by rune is
// safe here.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// Parse splits content into sentences under the single-delimiter rule: a
// run of one delimiter character is a sentence boundary and is kept as the
// last character of the sentence; a run of two or more delimiter characters
// is not a boundary and is treated as an ordinary token inside the current
// sentence. Whitespace between sentences is consumed and not reproduced;
// Rebuild reintroduces a single normalizing space between sentences.
//
// An empty content string yields a nil (zero-length) slice; callers that
// need the "empty file has exactly one, empty, sentence" access rule from
// spec.md §4.7 apply that at a higher layer, since it is a storage-node
// concept rather than a parsing one.
func Parse(content string) []string {
	var sentences []string
	var buf strings.Builder

	b := []byte(content)
	i := 0
	for i < len(b) {
		c := b[i]
		if isDelimiter(c) {
			j := i
			for j < len(b) && isDelimiter(b[j]) {
				j++
			}
			runLen := j - i
			if runLen >= 2 {
				buf.Write(b[i:j])
				i = j
				continue
			}

			buf.WriteByte(c)
			sentences = append(sentences, buf.String())
			buf.Reset()
			i = j

			for i < len(b) && isSpace(b[i]) {
				i++
			}
			continue
		}

		buf.WriteByte(c)
		i++
	}

	if buf.Len() > 0 {
		sentences = append(sentences, buf.String())
	}

	return sentences
}

// Rebuild joins sentences back into a single string, one normalizing space
// between each pair. It is the inverse of Parse up to that normalization:
// Parse(Rebuild(Parse(b))) always equals Parse(b).
func Rebuild(sentences []string) string {
	return strings.Join(sentences, " ")
}

// Words splits a sentence into its maximal non-whitespace runs.
func Words(sentenceText string) []string {
	return strings.Fields(sentenceText)
}
