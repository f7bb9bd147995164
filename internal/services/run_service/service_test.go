package run_service

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ssbtech/hilService/internal/config"
	"github.com/ssbtech/hilService/internal/domain/entities"
	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/keywords"
	"github.com/ssbtech/hilService/internal/middleware/logging"
	"github.com/ssbtech/hilService/internal/services/monitor"
	"github.com/ssbtech/hilService/pkg/errors"
)

// fakeRepo keeps runs in memory and signals when one is finished.
type fakeRepo struct {
	mu       sync.Mutex
	runs     map[string]*entities.TestRun
	finished chan string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{runs: make(map[string]*entities.TestRun), finished: make(chan string, 8)}
}

func (r *fakeRepo) Create(run *entities.TestRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.RunID] = run
	return nil
}

func (r *fakeRepo) Finish(runID, status string, durationMs int64, failures string) error {
	r.mu.Lock()
	if run, ok := r.runs[runID]; ok {
		run.Status = status
		run.DurationMs = durationMs
		run.Failures = failures
	}
	r.mu.Unlock()
	r.finished <- runID
	return nil
}

func (r *fakeRepo) GetByRunID(runID string) (*entities.TestRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[runID], nil
}

func (r *fakeRepo) GetAll() ([]entities.TestRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.TestRun, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, *run)
	}
	return out, nil
}

func newTestService(t *testing.T, interp interfaces.Interpreter, repo interfaces.TestRunRepository) (interfaces.RunService, string) {
	t.Helper()
	outputDir := t.TempDir()
	cfg := &config.AppConfig{}
	cfg.Runner.OutputDir = outputDir

	registry, err := keywords.LoadRegistry()
	require.NoError(t, err)

	logger := logging.NewLogger(&logging.Config{Enabled: false}, "TEST")
	hub := monitor.NewHub(logger)

	svc := NewRunService(cfg, registry, interp, &fakeDevices{}, hub, nil, repo, logger)
	return svc, outputDir
}

func awaitFinished(t *testing.T, repo *fakeRepo) string {
	t.Helper()
	select {
	case runID := <-repo.finished:
		return runID
	case <-time.After(5 * time.Second):
		t.Fatal("run never finished")
		return ""
	}
}

func TestStartRunValidatesBeforeExecution(t *testing.T) {
	repo := newFakeRepo()
	svc, outputDir := newTestService(t, &fakeInterpreter{statuses: []string{"PASS"}}, repo)

	_, err := svc.StartRun(models.RunRequest{
		Name:     "Bad Case",
		Keywords: []models.KeywordCallInput{{Keyword: "definitely_not_a_keyword"}},
	})
	require.ErrorIs(t, err, errors.ErrUnknownKeyword)

	// Nothing was generated or started.
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Empty(t, entries)
	_, active := svc.ActiveRun()
	require.False(t, active)
}

func TestStartRunGeneratesScriptAndPersists(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, &fakeInterpreter{statuses: []string{"PASS", "PASS"}}, repo)

	runID, err := svc.StartRun(models.RunRequest{
		Name: "Charge Check",
		Keywords: []models.KeywordCallInput{
			{Keyword: "set_voltage", Params: map[string]string{"volts": "12.0"}},
			{Keyword: "send_can_message", Params: map[string]string{"can_id": "400", "payload": "50"}},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	require.Equal(t, runID, awaitFinished(t, repo))

	record, err := repo.GetByRunID(runID)
	require.NoError(t, err)
	require.Equal(t, entities.RunStatusCompleted, record.Status)
	require.Equal(t, 2, record.KeywordTotal)

	script, err := os.ReadFile(record.ScriptPath)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(record.ScriptPath, runID+".robot"))
	require.Contains(t, string(script), "Charge Check [id]"+runID)

	result, err := svc.Result(runID)
	require.NoError(t, err)
	require.Equal(t, models.RunCompleted, result.State)
}

func TestStartRunRejectsSecondActiveRun(t *testing.T) {
	repo := newFakeRepo()
	gate := make(chan struct{})
	startAck := make(chan struct{}, 1)
	interp := &fakeInterpreter{statuses: []string{"PASS"}, gate: gate, startAck: startAck}
	svc, outputDir := newTestService(t, interp, repo)

	req := models.RunRequest{
		Name:     "Long Run",
		Keywords: []models.KeywordCallInput{{Keyword: "delay", Params: map[string]string{"seconds": "1"}}},
	}

	runID, err := svc.StartRun(req)
	require.NoError(t, err)
	<-startAck // the run is now executing

	_, err = svc.StartRun(req)
	require.ErrorIs(t, err, errors.ErrRunActive)

	active, ok := svc.ActiveRun()
	require.True(t, ok)
	require.Equal(t, runID, active)

	// The rejected request left no script behind, only the active run's.
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, runID+".robot", entries[0].Name())

	// Finish the first run; a new one is accepted afterwards.
	gate <- struct{}{}
	require.Equal(t, runID, awaitFinished(t, repo))

	_, err = svc.StartRun(req)
	require.NoError(t, err)
	<-startAck
	gate <- struct{}{}
	awaitFinished(t, repo)
}

func TestCancelRunUnknownID(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, &fakeInterpreter{}, repo)

	err := svc.CancelRun("nope")
	require.ErrorIs(t, err, errors.ErrRunNotFound)

	_, err = svc.Result("nope")
	require.ErrorIs(t, err, errors.ErrRunNotFound)
}

func TestCancelRunEndsActiveRun(t *testing.T) {
	repo := newFakeRepo()
	gate := make(chan struct{})
	startAck := make(chan struct{}, 2)
	interp := &fakeInterpreter{statuses: []string{"PASS", "PASS"}, gate: gate, startAck: startAck}
	svc, _ := newTestService(t, interp, repo)

	runID, err := svc.StartRun(models.RunRequest{
		Name: "Cancelled Run",
		Keywords: []models.KeywordCallInput{
			{Keyword: "delay", Params: map[string]string{"seconds": "1"}},
			{Keyword: "delay", Params: map[string]string{"seconds": "1"}},
		},
	})
	require.NoError(t, err)
	<-startAck

	require.NoError(t, svc.CancelRun(runID))
	gate <- struct{}{}
	require.Equal(t, runID, awaitFinished(t, repo))

	record, err := repo.GetByRunID(runID)
	require.NoError(t, err)
	require.Equal(t, entities.RunStatusCancelled, record.Status)

	// Cancelling a finished run is rejected.
	require.ErrorIs(t, svc.CancelRun(runID), errors.ErrValidation)
}

func TestReportAggregatesFailures(t *testing.T) {
	repo := newFakeRepo()
	interp := &fakeInterpreter{statuses: []string{"PASS", "FAIL"}}
	svc, _ := newTestService(t, interp, repo)

	runID, err := svc.StartRun(models.RunRequest{
		Name: "Flaky Run",
		Keywords: []models.KeywordCallInput{
			{Keyword: "set_voltage", Params: map[string]string{"volts": "5.0"}},
			{Keyword: "measure_voltage"},
		},
	})
	require.NoError(t, err)
	awaitFinished(t, repo)

	report, err := svc.Report(runID)
	require.NoError(t, err)
	require.Equal(t, string(models.RunCompleted), report.Status)
	require.Len(t, report.Failures, 1)
	require.Equal(t, "measure_voltage", report.Failures[0].Keyword)
	require.Equal(t, "assertion failed", report.Failures[0].Message)
}
