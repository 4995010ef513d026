package usecase

import (
	"sync"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

// SubmissionSnapshot is a read-only copy of SubmissionState for presentation.
type SubmissionSnapshot struct {
	File       *domain.SelectedFile
	Outcome    *domain.Outcome
	Generation uint64
}

// SubmissionState holds the current selection and the latest outcome.
// Attempts are generation-stamped: only the newest attempt may write its
// outcome.
type SubmissionState struct {
	mu         sync.Mutex
	file       *domain.SelectedFile
	outcome    *domain.Outcome
	generation uint64
}

func NewSubmissionState() *SubmissionState {
	return &SubmissionState{}
}

func (s *SubmissionState) SetFile(file domain.SelectedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = &file
}

func (s *SubmissionState) SetOutcome(outcome domain.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = &outcome
}

func (s *SubmissionState) File() (domain.SelectedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return domain.SelectedFile{}, false
	}
	return *s.file, true
}

func (s *SubmissionState) Outcome() (domain.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return domain.Outcome{}, false
	}
	return *s.outcome, true
}

// Begin starts a new attempt and clears the previous outcome.
func (s *SubmissionState) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.outcome = nil
	return s.generation
}

// Complete stores outcome if generation is still the newest attempt.
func (s *SubmissionState) Complete(generation uint64, outcome domain.Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.outcome = &outcome
	return true
}

func (s *SubmissionState) Snapshot() SubmissionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SubmissionSnapshot{Generation: s.generation}
	if s.file != nil {
		file := *s.file
		snap.File = &file
	}
	if s.outcome != nil {
		outcome := *s.outcome
		snap.Outcome = &outcome
	}
	return snap
}
