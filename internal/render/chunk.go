package render

import "strings"

// DefaultChunkSize is the nominal maximum length of a chunk in bytes.
const DefaultChunkSize = 1500

// Chunk partitions text into space-separated runs of words. A new chunk is
// started only when the current one is already longer than size, so a chunk
// may overshoot size by up to one word. Words are never split; joining the
// chunks with single spaces yields text again.
func Chunk(text string, size int) []string {
	var chunks []string
	var cur strings.Builder
	for i, word := range strings.Split(text, " ") {
		if i == 0 {
			cur.WriteString(word)
			continue
		}
		if cur.Len() > size {
			chunks = append(chunks, cur.String())
			cur.Reset()
			cur.WriteString(word)
			continue
		}
		cur.WriteByte(' ')
		cur.WriteString(word)
	}
	return append(chunks, cur.String())
}
