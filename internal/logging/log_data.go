package logging

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogData accumulates fields and timings for one unit of work and flushes
// them as a single structured entry. It is safe for concurrent use, so
// detectors running in parallel can record into the same LogData.
type LogData struct {
	mu        *sync.Mutex
	timeItems map[string]int64
	dataItems map[string]interface{}
	logger    *logrus.Logger
}

func NewLogData(logger *logrus.Logger) *LogData {
	return &LogData{
		mu:        &sync.Mutex{},
		timeItems: make(map[string]int64),
		dataItems: make(map[string]interface{}),
		logger:    logger,
	}
}

func (l *LogData) AddTiming(entryName string) func() {
	startTime := time.Now()

	return func() {
		timeSince := time.Since(startTime).Milliseconds()
		l.mu.Lock()
		defer l.mu.Unlock()
		l.timeItems[entryName] = timeSince
	}
}

func (l *LogData) AddToExistingTiming(entryName string) func() {
	startTime := time.Now()

	return func() {
		timeSince := time.Since(startTime).Milliseconds()
		l.mu.Lock()
		defer l.mu.Unlock()
		l.timeItems[entryName] += timeSince
	}
}

func (l *LogData) AddData(key string, value interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dataItems[key] = value
}

func (l *LogData) Log() *logrus.Entry {
	entry := logrus.NewEntry(l.logger)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, value := range l.dataItems {
		entry = entry.WithField(key, value)
	}

	for key, value := range l.timeItems {
		entry = entry.WithField(key+"_ms", value)
	}

	return entry
}

type logDataKey struct{}

// WithLogData attaches ld to ctx.
func WithLogData(ctx context.Context, ld *LogData) context.Context {
	return context.WithValue(ctx, logDataKey{}, ld)
}

// GetLogData returns the LogData carried by ctx, or a fresh one writing to
// the standard logger so callers never need a nil check.
func GetLogData(ctx context.Context) *LogData {
	if ld, ok := ctx.Value(logDataKey{}).(*LogData); ok {
		return ld
	}
	return NewLogData(logrus.StandardLogger())
}
