package session

import "time"

// JournalLimit is the number of entries kept for display.
const JournalLimit = 100

// Journal is the bounded, append-only event log shown to the player. Only
// the controller loop writes to it.
type Journal struct {
	entries []string
	now     func() time.Time
}

func newJournal(now func() time.Time) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{entries: make([]string, 0, JournalLimit), now: now}
}

// Add appends "[HH:MM:SS] text", evicting the oldest entry past the limit.
func (j *Journal) Add(text string) {
	line := "[" + j.now().Format("15:04:05") + "] " + text
	if len(j.entries) == JournalLimit {
		copy(j.entries, j.entries[1:])
		j.entries = j.entries[:JournalLimit-1]
	}
	j.entries = append(j.entries, line)
}

// Entries returns a copy, oldest first.
func (j *Journal) Entries() []string {
	out := make([]string, len(j.entries))
	copy(out, j.entries)
	return out
}

func (j *Journal) Len() int { return len(j.entries) }
