package run_service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/middleware/logging"
)

// requiredTag marks keywords whose failure skips the rest of the case.
const requiredTag = "required"

// Worker executes one generated script through the external interpreter on
// its own goroutine and builds the RunResult incrementally. Lifecycle:
// Idle -> Starting -> Running -> {Completed, Failed, Cancelled}.
//
// Cancellation is cooperative and checked only at keyword boundaries; the
// interpreter offers no finer interruption granularity.
type Worker struct {
	runID      string
	scriptPath string
	testCase   models.TestCase

	interp   interfaces.Interpreter
	devices  interfaces.DeviceService
	monitor  interfaces.Monitor
	producer interfaces.KafkaService
	logger   *logging.Logger
	onFinish func(models.RunResult)

	mu      sync.Mutex
	result  models.RunResult
	started map[int]time.Time

	cancelRequested bool
	cancelProc      context.CancelFunc
	done            chan struct{}
}

func newWorker(
	runID, scriptPath string,
	tc models.TestCase,
	interp interfaces.Interpreter,
	devices interfaces.DeviceService,
	mon interfaces.Monitor,
	producer interfaces.KafkaService,
	logger *logging.Logger,
	onFinish func(models.RunResult),
) *Worker {
	return &Worker{
		runID:      runID,
		scriptPath: scriptPath,
		testCase:   tc,
		interp:     interp,
		devices:    devices,
		monitor:    mon,
		producer:   producer,
		logger:     logger.WithPrefix("WORKER"),
		onFinish:   onFinish,
		started:    make(map[int]time.Time),
		done:       make(chan struct{}),
		result: models.RunResult{
			RunID:    runID,
			Name:     tc.Name,
			State:    models.RunIdle,
			Keywords: make([]models.KeywordOutcome, 0, len(tc.Invocations)),
		},
	}
}

// Start transitions to Starting and launches the run goroutine. It returns
// immediately; the caller is never blocked on execution.
func (w *Worker) Start() {
	w.mu.Lock()
	w.result.State = models.RunStarting
	w.result.StartedAt = time.Now()
	w.mu.Unlock()

	go w.run()
}

// Cancel requests cooperative cancellation. The flag is honored at the next
// keyword boundary.
func (w *Worker) Cancel() {
	w.mu.Lock()
	w.cancelRequested = true
	w.mu.Unlock()
	w.logger.Info("Cancellation requested", "runID", w.runID)
}

// Done closes when the run reaches a terminal state.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Result returns a snapshot of the current run result.
func (w *Worker) Result() models.RunResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := w.result
	snapshot.Keywords = append([]models.KeywordOutcome(nil), w.result.Keywords...)
	return snapshot
}

func (w *Worker) cancelled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancelRequested
}

func (w *Worker) run() {
	defer close(w.done)

	ctx, cancelProc := context.WithCancel(context.Background())
	defer cancelProc()
	w.mu.Lock()
	w.cancelProc = cancelProc
	w.mu.Unlock()

	events, err := w.interp.Run(ctx, w.scriptPath)
	if err != nil {
		w.logger.Error("Failed to start interpreter", "runID", w.runID, "error", err)
		w.skipRemaining(0, "interpreter failed to start")
		w.finish(models.RunFailed)
		return
	}

	w.mu.Lock()
	w.result.State = models.RunRunning
	w.mu.Unlock()
	w.logger.Info("Run started", "runID", w.runID, "keywords", len(w.testCase.Invocations))

	total := len(w.testCase.Invocations)
	idx := 0
	requiredFailed := false
	suiteEnded := false

consume:
	for ev := range events {
		switch ev.Type {
		case models.EventKeywordStart:
			w.mu.Lock()
			w.started[idx] = time.Now()
			w.mu.Unlock()

		case models.EventKeywordEnd:
			if idx >= total {
				continue // setup/teardown noise outside the declared sequence
			}
			outcome := w.recordOutcome(idx, ev)
			w.publishProgress(idx, total, outcome)

			failed := outcome.Status == models.StatusFail
			inv := w.testCase.Invocations[idx]
			idx++

			// Keyword boundary: the only place cancellation and the
			// required-failure policy take effect.
			if w.cancelled() {
				cancelProc()
				break consume
			}
			if failed && inv.HasTag(requiredTag) {
				w.logger.Warn("Required keyword failed, skipping the rest", "runID", w.runID, "keyword", inv.Name)
				requiredFailed = true
				cancelProc()
				break consume
			}

		case models.EventSuiteEnd:
			// The interpreter's aggregate is informational; the worker's own
			// failure policy decides the terminal state. But seeing the
			// event at all proves the process finished normally.
			suiteEnded = true
		}
	}

	// Drain whatever the interpreter still emits so the process is reaped.
	for range events {
	}

	if idx < total {
		reason := "skipped: interpreter exited early"
		switch {
		case w.cancelled():
			reason = "skipped: run cancelled"
		case requiredFailed:
			reason = "skipped: required keyword failed"
		}
		w.skipRemainingFrom(idx, total, reason)
	}

	switch {
	case w.cancelled():
		// No orphaned half-open connection may survive a cancelled run.
		w.devices.ResetConnecting()
		w.finish(models.RunCancelled)
	case requiredFailed:
		w.finish(models.RunFailed)
	case !suiteEnded:
		// The stream closed without a suite result: the interpreter crashed
		// or the script never ran. That is a failed run, not a completed one.
		w.logger.Error("Interpreter stream ended without a suite result", "runID", w.runID)
		w.finish(models.RunFailed)
	default:
		w.finish(models.RunCompleted)
	}
}

// recordOutcome appends the terminal outcome for keyword idx.
func (w *Worker) recordOutcome(idx int, ev models.InterpreterEvent) models.KeywordOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	var status models.KeywordStatus
	switch ev.Status {
	case "PASS":
		status = models.StatusPass
	case "SKIP", "NOT RUN":
		status = models.StatusSkip
	default:
		status = models.StatusFail
	}

	var durationMs int64
	if startedAt, ok := w.started[idx]; ok {
		durationMs = time.Since(startedAt).Milliseconds()
	}

	outcome := models.KeywordOutcome{
		Name:       w.testCase.Invocations[idx].Name,
		Status:     status,
		Message:    ev.Message,
		DurationMs: durationMs,
	}
	w.result.Keywords = append(w.result.Keywords, outcome)
	return outcome
}

func (w *Worker) skipRemaining(from int, reason string) {
	w.skipRemainingFrom(from, len(w.testCase.Invocations), reason)
}

// skipRemainingFrom marks keywords [from, total) as Skip and publishes their
// progress events in order, keeping the per-run index sequence complete.
func (w *Worker) skipRemainingFrom(from, total int, reason string) {
	for i := from; i < total; i++ {
		w.mu.Lock()
		outcome := models.KeywordOutcome{
			Name:    w.testCase.Invocations[i].Name,
			Status:  models.StatusSkip,
			Message: reason,
		}
		w.result.Keywords = append(w.result.Keywords, outcome)
		w.mu.Unlock()

		w.publishProgress(i, total, outcome)
	}
}

func (w *Worker) publishProgress(idx, total int, outcome models.KeywordOutcome) {
	ev := models.ProgressEvent{
		RunID:        w.runID,
		KeywordIndex: idx,
		Total:        total,
		Keyword:      outcome.Name,
		Status:       outcome.Status,
		Message:      outcome.Message,
		Timestamp:    time.Now(),
	}
	w.monitor.PublishProgress(ev)

	if w.producer != nil {
		payload, err := json.Marshal(ev)
		if err == nil {
			if err := w.producer.Produce(context.Background(), []byte(w.runID), payload); err != nil {
				w.logger.Error("Failed to publish progress to Kafka", "runID", w.runID, "error", err)
			}
		}
	}
}

// finish freezes the result in its terminal state. The RunResult is complete
// and well-formed for every outcome, cancelled runs included.
func (w *Worker) finish(state models.RunState) {
	w.mu.Lock()
	w.result.State = state
	w.result.FinishedAt = time.Now()
	snapshot := w.result
	snapshot.Keywords = append([]models.KeywordOutcome(nil), w.result.Keywords...)
	w.mu.Unlock()

	w.logger.Info("Run finished", "runID", w.runID, "state", state)
	if w.onFinish != nil {
		w.onFinish(snapshot)
	}
}
