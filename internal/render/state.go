package render

import "strings"

// State is the per-job render state. It is owned by the goroutine consuming
// the job's tokens and is not safe for concurrent use.
type State struct {
	prompts   Prompts
	chunkSize int

	text     strings.Builder
	chunks   []string
	terminal bool
}

// NewState returns an empty state. A non-positive chunkSize selects DefaultChunkSize.
func NewState(prompts Prompts, chunkSize int) *State {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &State{prompts: prompts, chunkSize: chunkSize}
}

// Push appends a fragment and recomputes the chunks. It reports false, doing
// nothing, once the state is terminal.
func (s *State) Push(fragment string) bool {
	if s.terminal {
		return false
	}
	s.text.WriteString(fragment)
	s.chunks = Chunk(s.prompts.Markdown(s.text.String()), s.chunkSize)
	return true
}

// Text returns the concatenation of all fragments so far.
func (s *State) Text() string { return s.text.String() }

// Chunks returns the current partition of the rendered text. The slice must
// not be modified.
func (s *State) Chunks() []string { return s.chunks }

// Empty reports whether no fragment has been pushed yet.
func (s *State) Empty() bool { return s.text.Len() == 0 }

// Terminate stops the state from accepting further fragments.
func (s *State) Terminate() { s.terminal = true }

// Terminal reports whether Terminate was called.
func (s *State) Terminal() bool { return s.terminal }

// Prompts returns the prompts the state renders against.
func (s *State) Prompts() Prompts { return s.prompts }
