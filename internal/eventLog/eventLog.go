// Package eventLog keeps the most recent log entries in memory so the
// browser and the status command can show them.
package eventLog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultCapacity = 50

type Entry struct {
	Index   int
	Time    time.Time
	Level   logrus.Level
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("%d: %s", e.Index, e.Message)
}

// Hook is a logrus hook holding the last Capacity entries. Entries are
// numbered from 1 in arrival order.
type Hook struct {
	mu       sync.Mutex
	capacity int
	next     int
	entries  []Entry
}

var _ logrus.Hook = (*Hook)(nil)

func New(capacity int) *Hook {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Hook{capacity: capacity, next: 1}
}

func (h *Hook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

func (h *Hook) Fire(e *logrus.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, Entry{
		Index:   h.next,
		Time:    e.Time,
		Level:   e.Level,
		Message: render(e),
	})
	h.next++

	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
	return nil
}

// Recent returns the kept entries, newest first.
func (h *Hook) Recent() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		out[len(out)-1-i] = e
	}
	return out
}

// render appends the ref field and sorted remaining fields to the message.
func render(e *logrus.Entry) string {
	var b strings.Builder
	b.WriteString(e.Message)

	if ref, ok := e.Data["ref"]; ok {
		fmt.Fprintf(&b, " %v", ref)
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k == "ref" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	return b.String()
}
