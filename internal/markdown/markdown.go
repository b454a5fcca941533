// Package markdown reads and rewrites checkbox items in Markdown files.
//
// Only lines of the exact form "- [ ] Title" or "- [x] Title" are treated
// as task items. Everything else in a document is preserved byte for byte
// across a rewrite.
package markdown

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
)

const (
	openPrefix = "- [ ] "
	donePrefix = "- [x] "
)

// prefixLen is the length of both checkbox prefixes.
const prefixLen = len(openPrefix)

// TaskSet is an ordered title -> completed map. A title set twice keeps its
// original position; the later state wins.
type TaskSet struct {
	order []string
	state map[string]bool
}

// NewTaskSet creates an empty TaskSet.
func NewTaskSet() *TaskSet {
	return &TaskSet{state: make(map[string]bool)}
}

// Set records the completion state for a title.
func (s *TaskSet) Set(title string, completed bool) {
	if _, ok := s.state[title]; !ok {
		s.order = append(s.order, title)
	}
	s.state[title] = completed
}

// Get returns the completion state for a title and whether it is present.
func (s *TaskSet) Get(title string) (completed, ok bool) {
	completed, ok = s.state[title]
	return completed, ok
}

// Pop removes a title and returns its state and whether it was present.
func (s *TaskSet) Pop(title string) (completed, ok bool) {
	completed, ok = s.state[title]
	if !ok {
		return false, false
	}
	delete(s.state, title)
	for i, t := range s.order {
		if t == title {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return completed, true
}

// Len returns the number of titles.
func (s *TaskSet) Len() int {
	return len(s.order)
}

// Titles returns the titles in insertion order.
func (s *TaskSet) Titles() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Clone returns an independent copy.
func (s *TaskSet) Clone() *TaskSet {
	c := NewTaskSet()
	for _, t := range s.order {
		c.Set(t, s.state[t])
	}
	return c
}

// isItem reports whether a line is a checkbox item and its state.
func isItem(line string) (completed, ok bool) {
	if strings.HasPrefix(line, openPrefix) {
		return false, true
	}
	if strings.HasPrefix(line, donePrefix) {
		return true, true
	}
	return false, false
}

// itemTitle extracts the trimmed title from a checkbox line.
func itemTitle(line string) string {
	return strings.TrimSpace(line[prefixLen:])
}

// itemLine renders a checkbox line for a title and state.
func itemLine(title string, completed bool) string {
	if completed {
		return donePrefix + title + "\n"
	}
	return openPrefix + title + "\n"
}

// Parse reads checkbox items from r.
func Parse(r io.Reader) (*TaskSet, error) {
	s := NewTaskSet()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if completed, ok := isItem(line); ok {
			s.Set(itemTitle(line), completed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseFile reads checkbox items from a file. A missing file yields an
// empty set.
func ParseFile(path string) (*TaskSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewTaskSet(), nil
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Rewrite applies merged states to a document. Non-item lines and item
// order are preserved. The first item line for a title is rewritten with
// the merged state; titles not present in the document are appended as new
// item lines at the end.
func Rewrite(content []byte, merged *TaskSet) []byte {
	pending := merged.Clone()
	var buf bytes.Buffer

	rest := content
	for len(rest) > 0 {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i+1]
			rest = rest[i+1:]
		} else {
			rest = nil
		}

		text := strings.TrimSuffix(string(line), "\n")
		if _, ok := isItem(text); ok {
			if completed, found := pending.Pop(itemTitle(text)); found {
				buf.WriteString(itemLine(itemTitle(text), completed))
				continue
			}
		}
		buf.Write(line)
	}

	if pending.Len() > 0 && buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
	for _, title := range pending.Titles() {
		completed, _ := pending.Get(title)
		buf.WriteString(itemLine(title, completed))
	}

	return buf.Bytes()
}

// RewriteFile rewrites a file in place with the merged states. A missing
// file is created when there is anything to write.
func RewriteFile(path string, merged *TaskSet) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	out := Rewrite(content, merged)
	if bytes.Equal(out, content) {
		return nil
	}
	return os.WriteFile(path, out, 0644)
}
