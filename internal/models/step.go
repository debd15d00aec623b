package models

import "fmt"

// StepStatus represents the lifecycle state of a ProcessingStep.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepProcessing StepStatus = "processing"
	StepCompleted  StepStatus = "completed"
	StepError      StepStatus = "error"
)

// ProcessingStep is one stage of a project analysis.
type ProcessingStep struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Progress    int        `json:"progress"`
}

// NewProcessingStep returns a pending step.
func NewProcessingStep(id, name, description string) ProcessingStep {
	return ProcessingStep{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      StepPending,
	}
}

// IsTerminal reports whether the step can no longer change.
func (s *ProcessingStep) IsTerminal() bool {
	return s.Status == StepCompleted || s.Status == StepError
}

// Start moves a pending step to processing.
func (s *ProcessingStep) Start() error {
	if s.Status != StepPending {
		return fmt.Errorf("step %s: cannot start from %s", s.ID, s.Status)
	}
	s.Status = StepProcessing
	return nil
}

// SetProgress records progress for a processing step. Progress never decreases
// and is clamped to 0..100.
func (s *ProcessingStep) SetProgress(progress int) error {
	if s.Status != StepProcessing {
		return fmt.Errorf("step %s: cannot report progress while %s", s.ID, s.Status)
	}
	if progress > 100 {
		progress = 100
	}
	if progress < s.Progress {
		return fmt.Errorf("step %s: progress cannot go from %d to %d", s.ID, s.Progress, progress)
	}
	s.Progress = progress
	return nil
}

// Complete marks a processing step as done.
func (s *ProcessingStep) Complete() error {
	if s.Status != StepProcessing {
		return fmt.Errorf("step %s: cannot complete from %s", s.ID, s.Status)
	}
	s.Status = StepCompleted
	s.Progress = 100
	return nil
}

// Fail marks a non-terminal step as failed. Progress is kept as reached.
func (s *ProcessingStep) Fail() error {
	if s.IsTerminal() {
		return fmt.Errorf("step %s: already %s", s.ID, s.Status)
	}
	s.Status = StepError
	return nil
}
