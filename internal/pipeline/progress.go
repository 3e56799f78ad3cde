package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Analysis stages reported while processing a single document.
const (
	StageAcquire   = "acquire"
	StageCluster   = "cluster"
	StageStructure = "structure"
	StageExtract   = "extract"
	StageAggregate = "aggregate"
)

var stageOrder = []string{StageAcquire, StageCluster, StageStructure, StageExtract, StageAggregate}

// ProgressCallback receives progress updates during document and batch
// processing.
type ProgressCallback interface {
	// OnStart is called when processing begins with the total number
	// of steps or items.
	OnStart(total int)

	// OnProgress is called after each completed step or item.
	OnProgress(current, total int)

	// OnComplete is called when processing is finished.
	OnComplete()

	// OnError is called when a step or item fails.
	OnError(current int, err error)
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)              {}
func (NoOpProgressCallback) OnProgress(current, total int)  {}
func (NoOpProgressCallback) OnComplete()                    {}
func (NoOpProgressCallback) OnError(current int, err error) {}

// stageReporter maps named analysis stages onto a ProgressCallback.
type stageReporter struct {
	callback ProgressCallback
	done     int
}

func newStageReporter(callback ProgressCallback) *stageReporter {
	if callback == nil {
		callback = NoOpProgressCallback{}
	}
	callback.OnStart(len(stageOrder))
	return &stageReporter{callback: callback}
}

func (r *stageReporter) step(stage string) {
	for i, s := range stageOrder {
		if s == stage {
			r.done = i + 1
			break
		}
	}
	r.callback.OnProgress(r.done, len(stageOrder))
}

func (r *stageReporter) fail(err error) {
	r.callback.OnError(r.done, err)
	r.callback.OnComplete()
}

func (r *stageReporter) complete() {
	r.callback.OnComplete()
}

// ConsoleProgressCallback draws a progress bar on the console.
type ConsoleProgressCallback struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration
	lastUpdate     time.Time
	startTime      time.Time
	mutex          sync.Mutex
}

// NewConsoleProgressCallback creates a console progress reporter.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer:         writer,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

// WithWidth sets the progress bar width.
func (c *ConsoleProgressCallback) WithWidth(width int) *ConsoleProgressCallback {
	c.width = width
	return c
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "%s0/%d (0.0%%)\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && current < total {
		return
	}
	c.lastUpdate = now

	if total == 0 {
		return
	}
	percent := float64(current) / float64(total) * 100.0
	filled := c.width * current / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	_, _ = fmt.Fprintf(c.writer, "\r%s[%s] %d/%d (%.1f%%)", c.prefix, bar, current, total, percent)
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\n%sCompleted in %v\n", c.prefix, elapsed.Round(time.Millisecond))
}

func (c *ConsoleProgressCallback) OnError(current int, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, _ = fmt.Fprintf(c.writer, "\n%sError at step %d: %v\n", c.prefix, current, err)
}

// LogProgressCallback logs progress updates using slog.
type LogProgressCallback struct {
	logger    *slog.Logger
	level     slog.Level
	prefix    string
	interval  int
	lastLog   int
	startTime time.Time
}

// NewLogProgressCallback creates a log-based progress reporter that
// logs every interval items.
func NewLogProgressCallback(logger *slog.Logger, level slog.Level, prefix string) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{
		logger:   logger,
		level:    level,
		prefix:   prefix,
		interval: 1,
	}
}

// WithInterval sets how frequently to log progress (every N items).
func (l *LogProgressCallback) WithInterval(interval int) *LogProgressCallback {
	if interval > 0 {
		l.interval = interval
	}
	return l
}

func (l *LogProgressCallback) OnStart(total int) {
	l.startTime = time.Now()
	l.lastLog = 0
	l.logger.Log(nil, l.level, l.prefix+"starting", "total", total)
}

func (l *LogProgressCallback) OnProgress(current, total int) {
	if current-l.lastLog < l.interval && current != total {
		return
	}
	l.lastLog = current
	percent := 0.0
	if total > 0 {
		percent = float64(current) / float64(total) * 100.0
	}
	l.logger.Log(nil, l.level, l.prefix+"progress",
		"current", current,
		"total", total,
		"percent", fmt.Sprintf("%.1f", percent),
		"elapsed", time.Since(l.startTime).Round(time.Millisecond),
	)
}

func (l *LogProgressCallback) OnComplete() {
	l.logger.Log(nil, l.level, l.prefix+"completed",
		"elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgressCallback) OnError(current int, err error) {
	l.logger.Log(nil, slog.LevelError, l.prefix+"failed", "step", current, "error", err)
}

// MultiProgressCallback fans progress updates out to several callbacks.
type MultiProgressCallback struct {
	callbacks []ProgressCallback
}

// NewMultiProgressCallback creates a progress callback that reports to
// all of the given callbacks.
func NewMultiProgressCallback(callbacks ...ProgressCallback) *MultiProgressCallback {
	return &MultiProgressCallback{callbacks: callbacks}
}

// Add registers another callback.
func (m *MultiProgressCallback) Add(callback ProgressCallback) {
	m.callbacks = append(m.callbacks, callback)
}

func (m *MultiProgressCallback) OnStart(total int) {
	for _, cb := range m.callbacks {
		cb.OnStart(total)
	}
}

func (m *MultiProgressCallback) OnProgress(current, total int) {
	for _, cb := range m.callbacks {
		cb.OnProgress(current, total)
	}
}

func (m *MultiProgressCallback) OnComplete() {
	for _, cb := range m.callbacks {
		cb.OnComplete()
	}
}

func (m *MultiProgressCallback) OnError(current int, err error) {
	for _, cb := range m.callbacks {
		cb.OnError(current, err)
	}
}

// ProgressTracker keeps thread-safe progress statistics, used by the
// server to answer job status queries.
type ProgressTracker struct {
	StartTime time.Time     `json:"start_time"`
	Total     int           `json:"total"`
	Current   int           `json:"current"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed_duration"`
	mutex     sync.RWMutex
}

// NewProgressTracker creates a tracker for the given total.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		StartTime: time.Now(),
		Total:     total,
	}
}

// Update records the current position.
func (pt *ProgressTracker) Update(current, completed, failed int) {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()

	pt.Current = current
	pt.Completed = completed
	pt.Failed = failed
	pt.Elapsed = time.Since(pt.StartTime)
}

// GetStats returns a copy of the current statistics.
func (pt *ProgressTracker) GetStats() ProgressTracker {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	return ProgressTracker{
		StartTime: pt.StartTime,
		Total:     pt.Total,
		Current:   pt.Current,
		Completed: pt.Completed,
		Failed:    pt.Failed,
		Elapsed:   pt.Elapsed,
	}
}

// PercentComplete returns the completion percentage.
func (pt *ProgressTracker) PercentComplete() float64 {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	if pt.Total == 0 {
		return 0
	}
	return float64(pt.Current) / float64(pt.Total) * 100.0
}

// OnStart implements ProgressCallback.
func (pt *ProgressTracker) OnStart(total int) {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()

	pt.StartTime = time.Now()
	pt.Total = total
	pt.Current = 0
	pt.Completed = 0
	pt.Failed = 0
}

// OnProgress implements ProgressCallback.
func (pt *ProgressTracker) OnProgress(current, total int) {
	pt.Update(current, current, pt.failedCount())
}

// OnComplete implements ProgressCallback.
func (pt *ProgressTracker) OnComplete() {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()

	pt.Elapsed = time.Since(pt.StartTime)
}

// OnError implements ProgressCallback.
func (pt *ProgressTracker) OnError(current int, err error) {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()

	pt.Failed++
}

func (pt *ProgressTracker) failedCount() int {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()
	return pt.Failed
}
