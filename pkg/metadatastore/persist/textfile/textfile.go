// Package textfile implements the spec-mandated flat-text registry
// persister: one FILE: line per record, followed by zero or more ACL:
// lines, terminated by an END line (spec.md §4.5). Folders, checkpoints,
// sessions and the search cache are intentionally not carried by this
// format; pkg/metadatastore/persist/badgerstore carries the superset.
package textfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/corefs/docfs/pkg/metadatastore"
)

const registryFileName = "registry.dat"

// Persister reads and writes registry.dat under Dir.
type Persister struct {
	Dir string
}

// New returns a Persister writing registry.dat under dir.
func New(dir string) *Persister {
	return &Persister{Dir: dir}
}

func (p *Persister) path() string {
	return filepath.Join(p.Dir, registryFileName)
}

// Save writes one FILE:/ACL:*/END block per record.
func (p *Persister) Save(files []*metadatastore.FileRecord) error {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return fmt.Errorf("textfile: create registry directory: %w", err)
	}

	tmp := p.path() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("textfile: create registry temp file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range files {
		fmt.Fprintf(w, "FILE:%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			escape(rec.Name), escape(rec.Owner), escape(rec.NodeID), escape(rec.Folder),
			rec.CreatedAt.Unix(), rec.ModifiedAt.Unix(), rec.AccessedAt.Unix(),
			rec.Size, rec.WordCount, rec.CharCount)

		for _, entry := range rec.ACL {
			fmt.Fprintf(w, "ACL:%s\t%s\t%s\n", escape(entry.Username), boolStr(entry.CanRead), boolStr(entry.CanWrite))
		}
		fmt.Fprintln(w, "END")
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("textfile: write registry: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("textfile: close registry: %w", err)
	}
	return os.Rename(tmp, p.path())
}

// Load parses registry.dat, returning an empty slice (not an error) if the
// file does not yet exist — the first startup of a fresh coordinator.
func (p *Persister) Load() ([]*metadatastore.FileRecord, error) {
	f, err := os.Open(p.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("textfile: open registry: %w", err)
	}
	defer f.Close()

	var records []*metadatastore.FileRecord
	var current *metadatastore.FileRecord

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "FILE:"):
			rec, err := parseFileLine(line)
			if err != nil {
				return nil, fmt.Errorf("textfile: line %d: %w", lineNo, err)
			}
			current = rec
		case strings.HasPrefix(line, "ACL:"):
			if current == nil {
				return nil, fmt.Errorf("textfile: line %d: ACL line with no preceding FILE", lineNo)
			}
			entry, err := parseACLLine(line)
			if err != nil {
				return nil, fmt.Errorf("textfile: line %d: %w", lineNo, err)
			}
			current.ACL[entry.Username] = entry
		case line == "END":
			if current == nil {
				return nil, fmt.Errorf("textfile: line %d: END with no preceding FILE", lineNo)
			}
			records = append(records, current)
			current = nil
		case line == "":
			// tolerate blank lines between blocks
		default:
			return nil, fmt.Errorf("textfile: line %d: unrecognized line %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("textfile: scan registry: %w", err)
	}
	return records, nil
}

func parseFileLine(line string) (*metadatastore.FileRecord, error) {
	fields := strings.Split(strings.TrimPrefix(line, "FILE:"), "\t")
	if len(fields) != 10 {
		return nil, fmt.Errorf("malformed FILE line: %d fields", len(fields))
	}
	created, err := parseUnix(fields[4])
	if err != nil {
		return nil, err
	}
	modified, err := parseUnix(fields[5])
	if err != nil {
		return nil, err
	}
	accessed, err := parseUnix(fields[6])
	if err != nil {
		return nil, err
	}
	size, err := strconv.ParseInt(fields[7], 10, 64)
	if err != nil {
		return nil, err
	}
	words, err := strconv.ParseInt(fields[8], 10, 64)
	if err != nil {
		return nil, err
	}
	chars, err := strconv.ParseInt(fields[9], 10, 64)
	if err != nil {
		return nil, err
	}
	return &metadatastore.FileRecord{
		Name:        unescape(fields[0]),
		Owner:       unescape(fields[1]),
		NodeID:      unescape(fields[2]),
		Folder:      unescape(fields[3]),
		CreatedAt:   created,
		ModifiedAt:  modified,
		AccessedAt:  accessed,
		Size:        size,
		WordCount:   words,
		CharCount:   chars,
		ACL:         make(map[string]*metadatastore.ACLEntry),
		Checkpoints: make(map[string]*metadatastore.CheckpointRecord),
	}, nil
}

func parseACLLine(line string) (*metadatastore.ACLEntry, error) {
	fields := strings.Split(strings.TrimPrefix(line, "ACL:"), "\t")
	if len(fields) != 3 {
		return nil, fmt.Errorf("malformed ACL line: %d fields", len(fields))
	}
	canRead, err := strconv.ParseBool(fields[1])
	if err != nil {
		return nil, err
	}
	canWrite, err := strconv.ParseBool(fields[2])
	if err != nil {
		return nil, err
	}
	return &metadatastore.ACLEntry{
		Username: unescape(fields[0]),
		CanRead:  canRead,
		CanWrite: canWrite,
	}, nil
}

func parseUnix(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(n, 0).UTC(), nil
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// escape/unescape guard against a name or username containing a tab or
// newline, which would otherwise corrupt the line-oriented format. unescape
// is a single left-to-right pass rather than sequential ReplaceAll calls so
// a literal backslash adjacent to an escaped character round-trips
// correctly.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 't':
				b.WriteByte('\t')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
