// Package jobs runs project analyses as tracked jobs with step-by-step progress.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/axoraweb/seo-backend/internal/analyzer"
	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/axoraweb/seo-backend/internal/rewrite"
	"github.com/google/uuid"
)

// Status represents the overall job status.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Step identifiers, in execution order.
const (
	StepExtract  = "extract"
	StepDetect   = "detect"
	StepAnalyze  = "analyze"
	StepGenerate = "generate"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// Job is a snapshot of one analysis run.
type Job struct {
	ID          string                  `json:"id"`
	Status      Status                  `json:"status"`
	Steps       []models.ProcessingStep `json:"steps"`
	Analysis    *models.ProjectAnalysis `json:"analysis,omitempty"`
	Error       string                  `json:"error,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
}

// IsTerminal reports whether the job has finished.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusComplete || j.Status == StatusError
}

func (j *Job) clone() Job {
	c := *j
	c.Steps = append([]models.ProcessingStep(nil), j.Steps...)
	return c
}

// NewSteps returns the four pending analysis steps.
func NewSteps() []models.ProcessingStep {
	return []models.ProcessingStep{
		models.NewProcessingStep(StepExtract, "Extracting Project", "Extracting and analyzing project structure"),
		models.NewProcessingStep(StepDetect, "Detecting Framework", "Identifying project type (HTML/React/Next.js)"),
		models.NewProcessingStep(StepAnalyze, "Analyzing Pages", "Scanning all pages for SEO opportunities"),
		models.NewProcessingStep(StepGenerate, "Generating SEO Code", "Creating copy-paste ready SEO code"),
	}
}

// Workspace is the storage needed to unpack uploads.
type Workspace interface {
	Extract(data []byte) (string, error)
	Cleanup(dir string) error
}

// Options configures a Manager.
type Options struct {
	Workspace Workspace
	Analyzer  *analyzer.Analyzer
	// Settings resolves request metadata into rewrite settings.
	Settings func(*models.ProjectInfo) *rewrite.Settings
	Logger   *slog.Logger
}

// Manager tracks analysis jobs.
type Manager struct {
	jobs        map[string]*Job
	subscribers map[string][]chan Job
	mu          sync.RWMutex

	workspace Workspace
	analyzer  *analyzer.Analyzer
	settings  func(*models.ProjectInfo) *rewrite.Settings
	logger    *slog.Logger
}

// NewManager creates a job manager.
func NewManager(opts Options) *Manager {
	m := &Manager{
		jobs:        make(map[string]*Job),
		subscribers: make(map[string][]chan Job),
		workspace:   opts.Workspace,
		analyzer:    opts.Analyzer,
		settings:    opts.Settings,
		logger:      opts.Logger,
	}
	if m.analyzer == nil {
		m.analyzer = analyzer.New(analyzer.Options{Logger: opts.Logger})
	}
	if m.settings == nil {
		m.settings = func(info *models.ProjectInfo) *rewrite.Settings {
			return rewrite.Resolve(info, rewrite.DefaultDefaults())
		}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

func (m *Manager) register() *Job {
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusProcessing,
		Steps:     NewSteps(),
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return job
}

// Start registers a job and processes it in the background.
func (m *Manager) Start(ctx context.Context, data []byte, info *models.ProjectInfo) Job {
	job := m.register()
	snapshot := m.snapshot(job)
	go m.process(context.WithoutCancel(ctx), job, data, info)
	return snapshot
}

// Run processes a job synchronously and returns its final state.
func (m *Manager) Run(ctx context.Context, data []byte, info *models.ProjectInfo) (Job, error) {
	job := m.register()
	err := m.process(ctx, job, data, info)
	return m.snapshot(job), err
}

// Get returns a snapshot of a job.
func (m *Manager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job.clone(), nil
}

func (m *Manager) snapshot(job *Job) Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return job.clone()
}

func (m *Manager) process(ctx context.Context, job *Job, data []byte, info *models.ProjectInfo) error {
	log := m.logger.With("job", job.ID[:8])
	log.Info("analysis started", "bytes", len(data))
	s := m.settings(info)

	m.startStep(job, 0)
	dir, err := m.workspace.Extract(data)
	if err != nil {
		return m.fail(job, 0, fmt.Errorf("extracting archive: %w", err))
	}
	defer func() {
		if err := m.workspace.Cleanup(dir); err != nil {
			log.Warn("workspace cleanup failed", "error", err)
		}
	}()
	m.completeStep(job, 0)

	m.startStep(job, 1)
	inv, err := m.analyzer.Scan(ctx, dir)
	if err != nil {
		return m.fail(job, 1, fmt.Errorf("scanning project: %w", err))
	}
	m.completeStep(job, 1)
	log.Info("project detected", "type", inv.ProjectType, "framework", inv.Framework, "files", inv.Len())

	m.startStep(job, 2)
	err = m.analyzer.Inspect(ctx, inv, s, func(done, total int) {
		m.progress(job, 2, done*100/total)
	})
	if err != nil {
		return m.fail(job, 2, fmt.Errorf("analyzing project: %w", err))
	}
	m.completeStep(job, 2)

	m.startStep(job, 3)
	m.analyzer.GenerateSnippets(inv, s)
	analysis := analyzer.Summarize(inv)
	m.completeStep(job, 3)

	m.markJobComplete(job, analysis)
	log.Info("analysis complete", "pages", len(analysis.PageFiles), "readiness", analysis.SEOReadiness)
	return nil
}

func (m *Manager) startStep(job *Job, i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := job.Steps[i].Start(); err != nil {
		m.logger.Error("step transition rejected", "job", job.ID[:8], "error", err)
		return
	}
	m.publish(job)
}

func (m *Manager) progress(job *Job, i, pct int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := job.Steps[i].SetProgress(pct); err != nil {
		m.logger.Debug("ignoring progress update", "job", job.ID[:8], "error", err)
		return
	}
	m.publish(job)
}

func (m *Manager) completeStep(job *Job, i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := job.Steps[i].Complete(); err != nil {
		m.logger.Error("step transition rejected", "job", job.ID[:8], "error", err)
		return
	}
	m.publish(job)
}

func (m *Manager) markJobComplete(job *Job, analysis *models.ProjectAnalysis) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Status = StatusComplete
	job.Analysis = analysis
	now := time.Now()
	job.CompletedAt = &now
	m.publish(job)
}

// fail marks step i and the job as failed and returns err.
func (m *Manager) fail(job *Job, i int, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Steps[i].Fail()
	job.Status = StatusError
	job.Error = err.Error()
	now := time.Now()
	job.CompletedAt = &now
	m.publish(job)
	m.logger.Error("analysis failed", "job", job.ID[:8], "step", job.Steps[i].ID, "error", err)
	return err
}

// CleanupOldJobs removes finished jobs older than maxAge and returns how many were removed.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range m.jobs {
		if job.IsTerminal() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}
