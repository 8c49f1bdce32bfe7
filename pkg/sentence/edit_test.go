package sentence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertNoSplit(t *testing.T) {
	result, err := Insert("Hello world", 2, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello world ."}, result)
}

func TestInsertCausesSplit(t *testing.T) {
	// Continuation of the scenario in spec.md S2: the sentence produced by
	// the previous insert now gains a trailing word, which introduces a new
	// sentence boundary and splits in two.
	result, err := Insert("Hello world .", 3, "Bye")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello world .", "Bye"}, result)
}

func TestInsertEmptyPayloadIsNoOp(t *testing.T) {
	result, err := Insert("Hello world", 1, "   ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello world"}, result)
}

func TestInsertWordOutOfRange(t *testing.T) {
	_, err := Insert("Hello world", 5, "x")
	var target *ErrWordOutOfRange
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 2, target.Current)
}

func TestInsertAtStartShiftsRight(t *testing.T) {
	result, err := Insert("world", 0, "Hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello world"}, result)
}

func TestInsertIntoEmptySentence(t *testing.T) {
	result, err := Insert("", 0, "Hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, result)
}

func TestInsertMultiWordPayload(t *testing.T) {
	result, err := Insert("Hello world", 1, "brave new")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello brave new world"}, result)
}

func TestAccessSentenceWithinRange(t *testing.T) {
	sentences := []string{"Hi.", "Bye."}
	text, appended, err := AccessSentence(sentences, 1)
	require.NoError(t, err)
	assert.False(t, appended)
	assert.Equal(t, "Bye.", text)
}

func TestAccessSentenceAppendsWhenPriorEndsInDelimiter(t *testing.T) {
	sentences := []string{"Hi.", "Bye."}
	text, appended, err := AccessSentence(sentences, 2)
	require.NoError(t, err)
	assert.True(t, appended)
	assert.Equal(t, "", text)
}

func TestAccessSentenceRejectsAppendWithoutTrailingDelimiter(t *testing.T) {
	sentences := []string{"Hello world"}
	_, _, err := AccessSentence(sentences, 1)
	var target *ErrSentenceOutOfRange
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 1, target.Current)
}

func TestAccessSentenceOnEmptyFile(t *testing.T) {
	text, appended, err := AccessSentence(nil, 0)
	require.NoError(t, err)
	assert.False(t, appended)
	assert.Equal(t, "", text)

	_, _, err = AccessSentence(nil, 1)
	require.Error(t, err)
}

func TestAccessSentenceOutOfRangeReportsCount(t *testing.T) {
	sentences := []string{"Hi.", "Bye."}
	_, _, err := AccessSentence(sentences, 5)
	var target *ErrSentenceOutOfRange
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 2, target.Current)
}
