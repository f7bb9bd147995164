package run_service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ssbtech/hilService/internal/config"
	"github.com/ssbtech/hilService/internal/domain/entities"
	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/keywords"
	"github.com/ssbtech/hilService/internal/middleware/logging"
	"github.com/ssbtech/hilService/pkg/errors"
)

type runService struct {
	parser    *keywords.Parser
	generator *keywords.Generator
	interp    interfaces.Interpreter
	devMgr    interfaces.DeviceService
	monitor   interfaces.Monitor
	producer  interfaces.KafkaService
	repo      interfaces.TestRunRepository
	logger    *logging.Logger
	outputDir string

	mu      sync.Mutex
	active  *Worker
	workers map[string]*Worker
}

// NewRunService wires the parse -> generate -> execute pipeline. At most one
// run may be active per service instance.
func NewRunService(
	cfg *config.AppConfig,
	registry *keywords.Registry,
	interp interfaces.Interpreter,
	devMgr interfaces.DeviceService,
	mon interfaces.Monitor,
	producer interfaces.KafkaService,
	repo interfaces.TestRunRepository,
	logger *logging.Logger,
) interfaces.RunService {
	return &runService{
		parser:    keywords.NewParser(registry),
		generator: keywords.NewGenerator(registry),
		interp:    interp,
		devMgr:    devMgr,
		monitor:   mon,
		producer:  producer,
		repo:      repo,
		logger:    logger.WithPrefix("RUNS"),
		outputDir: cfg.Runner.OutputDir,
		workers:   make(map[string]*Worker),
	}
}

// StartRun validates the whole request before any hardware or interpreter
// contact, renders the script artifact and hands it to a fresh worker.
func (s *runService) StartRun(req models.RunRequest) (string, error) {
	invocations, err := s.parser.ParseSequence(req.Keywords)
	if err != nil {
		return "", err
	}

	tc := models.TestCase{
		Name:          req.Name,
		Tags:          req.Tags,
		Documentation: req.Documentation,
		Invocations:   invocations,
	}

	runID := uuid.New().String()

	// The active-run check comes before any artifact is written, so a
	// rejected request leaves nothing behind in the output dir.
	s.mu.Lock()
	if s.active != nil {
		active := s.active.Result()
		if !active.State.Terminal() {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: run %s", errors.ErrRunActive, active.RunID)
		}
	}

	script := s.generator.Generate(tc, runID)
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	scriptPath := filepath.Join(s.outputDir, runID+".robot")
	if err := os.WriteFile(scriptPath, script, 0644); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("writing script artifact: %w", err)
	}

	worker := newWorker(runID, scriptPath, tc, s.interp, s.devMgr, s.monitor, s.producer, s.logger, s.persistResult)
	s.active = worker
	s.workers[runID] = worker
	s.mu.Unlock()

	if err := s.repo.Create(&entities.TestRun{
		RunID:        runID,
		Name:         tc.Name,
		Status:       entities.RunStatusRunning,
		KeywordTotal: len(invocations),
		ScriptPath:   scriptPath,
	}); err != nil {
		s.logger.Error("Failed to persist run record", "runID", runID, "error", err)
	}

	worker.Start()
	s.logger.Info("Run accepted", "runID", runID, "name", tc.Name, "keywords", len(invocations))
	return runID, nil
}

func (s *runService) CancelRun(runID string) error {
	s.mu.Lock()
	worker, ok := s.workers[runID]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", errors.ErrRunNotFound, runID)
	}
	if worker.Result().State.Terminal() {
		return fmt.Errorf("%w: run %q already finished", errors.ErrValidation, runID)
	}
	worker.Cancel()
	return nil
}

func (s *runService) Result(runID string) (*models.RunResult, error) {
	s.mu.Lock()
	worker, ok := s.workers[runID]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrRunNotFound, runID)
	}
	result := worker.Result()
	return &result, nil
}

func (s *runService) Report(runID string) (*models.RunReport, error) {
	result, err := s.Result(runID)
	if err != nil {
		return nil, err
	}

	report := &models.RunReport{
		RunID:      runID,
		Status:     string(result.State),
		Failures:   collectFailures(result.Keywords),
		DurationMs: 0,
	}
	if result.State.Terminal() {
		report.DurationMs = result.FinishedAt.Sub(result.StartedAt).Milliseconds()
	}
	return report, nil
}

func (s *runService) ActiveRun() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return "", false
	}
	result := s.active.Result()
	if result.State.Terminal() {
		return "", false
	}
	return result.RunID, true
}

// persistResult freezes the terminal result into the run history table.
func (s *runService) persistResult(result models.RunResult) {
	status := entities.RunStatusCompleted
	switch result.State {
	case models.RunFailed:
		status = entities.RunStatusFailed
	case models.RunCancelled:
		status = entities.RunStatusCancelled
	}

	failures, err := json.Marshal(collectFailures(result.Keywords))
	if err != nil {
		failures = []byte("[]")
	}

	durationMs := result.FinishedAt.Sub(result.StartedAt).Milliseconds()
	if err := s.repo.Finish(result.RunID, status, durationMs, string(failures)); err != nil {
		s.logger.Error("Failed to persist run result", "runID", result.RunID, "error", err)
	}
}

func collectFailures(outcomes []models.KeywordOutcome) []models.KeywordFailure {
	failures := make([]models.KeywordFailure, 0)
	for _, kw := range outcomes {
		if kw.Status == models.StatusFail {
			failures = append(failures, models.KeywordFailure{Keyword: kw.Name, Message: kw.Message})
		}
	}
	return failures
}
