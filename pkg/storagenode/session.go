package storagenode

import (
	"strings"

	"github.com/corefs/docfs/pkg/sentence"
	"github.com/corefs/docfs/pkg/wire"
)

// editSession drives one WRITE's IDLE -> LOCKED -> EDITING -> (SAVED |
// ABANDONED) -> IDLE state machine (spec.md §4.2 "State machines") for a
// single (file, sentence) pair. It is created fresh for each WRITE request
// and discarded (with its lock released) when the data connection serving
// it closes, regardless of how the session ended.
type editSession struct {
	node     *Node
	file     string
	sentence int32
	username string

	sentences []string // full parse of the file at session start
	current   string    // text of the sentence currently being edited
}

// beginEdit locks (file, sentenceNum) for username and returns the session
// and the sentence text to echo back, or an error frame-worthy condition.
func (n *Node) beginEdit(file string, sentenceNum int32, username string) (*editSession, string, error) {
	content, err := n.files.Read(file)
	if err != nil {
		return nil, "", err
	}
	sentences := sentence.Parse(string(content))

	text, appended, err := sentence.AccessSentence(sentences, int(sentenceNum))
	if err != nil {
		return nil, "", err
	}
	if appended {
		sentences = append(sentences, "")
	}

	holder, ok := n.locks.Acquire(file, sentenceNum, username)
	if !ok {
		return nil, holder, errLocked{holder: holder}
	}

	return &editSession{
		node:      n,
		file:      file,
		sentence:  sentenceNum,
		username:  username,
		sentences: sentences,
		current:   text,
	}, text, nil
}

// errLocked signals a lock conflict; the caller maps it to ResultLocked with
// the holder's username as the reply's data (spec.md §4.7 "Lock rule").
type errLocked struct{ holder string }

func (e errLocked) Error() string { return "storagenode: sentence locked by " + e.holder }

// Insert applies one (word_index, payload) update frame. On ETIRW (the
// literal payload "ETIRW") it commits the whole edit and ends the session;
// the caller must not call Insert again afterwards.
func (s *editSession) Insert(wordIndex int32, payload string) (reply string, committed bool, full []byte, err error) {
	if payload == wire.ETIRWToken {
		full, err = s.commit()
		return "", true, full, err
	}

	results, err := sentence.Insert(s.current, int(wordIndex), payload)
	if err != nil {
		return "", false, nil, err
	}

	// results[0] replaces the sentence being edited; any further elements
	// are newly-split sentences inserted immediately after it (spec.md
	// §4.7 step 3).
	idx := int(s.sentence)
	rebuilt := make([]string, 0, len(s.sentences)+len(results))
	if idx < len(s.sentences) {
		rebuilt = append(rebuilt, s.sentences[:idx]...)
		rebuilt = append(rebuilt, results...)
		rebuilt = append(rebuilt, s.sentences[idx+1:]...)
	} else {
		rebuilt = append(rebuilt, s.sentences...)
		rebuilt = append(rebuilt, results...)
	}
	s.sentences = rebuilt
	s.current = results[0]
	return s.current, false, nil, nil
}

// commit rebuilds the full file from the session's sentences, snapshots the
// previous content to backup, atomically replaces the live file, releases
// the lock, and clears the undo flag (spec.md §4.7 step 4).
func (s *editSession) commit() ([]byte, error) {
	rebuilt := sentence.Rebuild(s.sentences)
	if !strings.HasSuffix(rebuilt, "\n") {
		rebuilt += "\n"
	}
	if err := s.node.files.Write(s.file, []byte(rebuilt)); err != nil {
		return nil, err
	}
	s.node.undo.ClearOnWrite(s.file)
	s.release()
	return []byte(rebuilt), nil
}

// release drops the sentence lock without committing, for a session that
// ends by client disconnect rather than ETIRW (spec.md §4.7 "Failure
// semantics": the live file is left untouched).
func (s *editSession) release() {
	s.node.locks.Release(s.file, s.sentence, s.username)
}
