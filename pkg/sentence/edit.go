package sentence

import (
	"errors"
	"fmt"
)

// ErrWordOutOfRange is returned by Insert when wordIndex falls outside
// [0, current word count]. Current carries the word count so the caller can
// report it back to the client per spec.md §4.7.
type ErrWordOutOfRange struct {
	Index   int
	Current int
}

func (e *ErrWordOutOfRange) Error() string {
	return fmt.Sprintf("word index %d out of range [0,%d]", e.Index, e.Current)
}

// ErrSentenceOutOfRange is returned when a requested sentence index is not
// accessible under the access rule in spec.md §4.7. Current carries the
// sentence count.
type ErrSentenceOutOfRange struct {
	Index   int
	Current int
}

func (e *ErrSentenceOutOfRange) Error() string {
	return fmt.Sprintf("sentence index %d out of range [0,%d]", e.Index, e.Current)
}

var errEmptyInsert = errors.New("sentence: empty payload is a no-op")

// Insert tokenizes payload on whitespace and inserts the resulting words at
// wordIndex in sentenceText (insert-only: spec.md §9 Open Question 1 is
// resolved as insert-only, not insert-or-delete-on-empty). It returns the
// one or more sentences the edit produces: if the rebuilt text introduces a
// new single-delimiter boundary, the result has more than one element, the
// first of which is the sentence the edit session continues on.
//
// An empty payload is a documented no-op: Insert returns the original
// sentence unchanged and a nil error.
func Insert(sentenceText string, wordIndex int, payload string) ([]string, error) {
	words := Words(sentenceText)

	newWords := Words(payload)
	if len(newWords) == 0 {
		return []string{sentenceText}, nil
	}

	if wordIndex < 0 || wordIndex > len(words) {
		return nil, &ErrWordOutOfRange{Index: wordIndex, Current: len(words)}
	}

	merged := make([]string, 0, len(words)+len(newWords))
	merged = append(merged, words[:wordIndex]...)
	merged = append(merged, newWords...)
	merged = append(merged, words[wordIndex:]...)

	rebuilt := joinWords(merged)
	split := Parse(rebuilt)
	if len(split) == 0 {
		// Words() of an all-whitespace payload is impossible here since
		// newWords is non-empty, but a defensive empty rebuilt text still
		// yields a single empty sentence rather than zero sentences.
		return []string{""}, nil
	}
	return split, nil
}

func joinWords(words []string) string {
	out := words[0]
	for _, w := range words[1:] {
		out += " " + w
	}
	return out
}

// CurrentSentenceCount resolves how many sentences exist for a file, given
// its content already split into sentences. The access rule (spec.md §4.7)
// treats an empty file as having exactly one, empty, sentence.
func CurrentSentenceCount(sentences []string) int {
	if len(sentences) == 0 {
		return 1
	}
	return len(sentences)
}

// AccessSentence resolves index against sentences under the access rule: any
// index in [0, S-1] is accessible; index == S is accessible only if
// sentence S-1 ends with a single delimiter, appending a new empty sentence;
// any other index fails.
func AccessSentence(sentences []string, index int) (text string, appended bool, err error) {
	count := CurrentSentenceCount(sentences)

	if len(sentences) == 0 {
		if index == 0 {
			return "", false, nil
		}
		return "", false, &ErrSentenceOutOfRange{Index: index, Current: count}
	}

	if index >= 0 && index < count {
		return sentences[index], false, nil
	}

	if index == count && endsWithSingleDelimiter(sentences[count-1]) {
		return "", true, nil
	}

	return "", false, &ErrSentenceOutOfRange{Index: index, Current: count}
}

func endsWithSingleDelimiter(s string) bool {
	if len(s) == 0 {
		return false
	}
	last := s[len(s)-1]
	if !isDelimiter(last) {
		return false
	}
	if len(s) >= 2 && isDelimiter(s[len(s)-2]) {
		return false
	}
	return true
}
