package capture_test

import (
	"sync"

	"github.com/temurbekov/threadcapture/capture"
)

// lineLogger and countLogger are the two capability shapes used throughout
// this package's tests, mirroring the "text logger" / "value logger" pair
// from the specification's scenario catalogue.

type lineLogger interface {
	LogLine(line string)
}

type countLogger interface {
	LogCount(n int)
}

type memLogger struct {
	mu    sync.Mutex
	lines []string
}

func (m *memLogger) LogLine(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
}

func (m *memLogger) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

type memCounter struct {
	mu     sync.Mutex
	values []int
}

func (m *memCounter) LogCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = append(m.values, n)
}

func (m *memCounter) Values() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.values...)
}

func logLine(line string) {
	if l, ok := capture.Current[lineLogger](); ok {
		l.LogLine(line)
	}
}

func logCount(n int) {
	if l, ok := capture.Current[countLogger](); ok {
		l.LogCount(n)
	}
}

func panicLogger() *panickingLogger { return &panickingLogger{} }

type panickingLogger struct{}

func (*panickingLogger) LogLine(string) { panic("boom") }
