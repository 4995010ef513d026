package usecase

import (
	"testing"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

func TestSubmissionStateStartsEmpty(t *testing.T) {
	state := NewSubmissionState()
	if _, ok := state.File(); ok {
		t.Fatalf("expected no file")
	}
	if _, ok := state.Outcome(); ok {
		t.Fatalf("expected no outcome")
	}
	snap := state.Snapshot()
	if snap.File != nil || snap.Outcome != nil || snap.Generation != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestSubmissionStateCompleteRejectsOldGeneration(t *testing.T) {
	state := NewSubmissionState()
	first := state.Begin()
	second := state.Begin()

	if state.Complete(first, domain.ServerError("stale")) {
		t.Fatalf("expected stale generation to be rejected")
	}
	if !state.Complete(second, domain.Success("fresh")) {
		t.Fatalf("expected newest generation to be applied")
	}
	got, ok := state.Outcome()
	if !ok || got != domain.Success("fresh") {
		t.Fatalf("expected fresh outcome, got %+v", got)
	}
}

func TestSubmissionStateSnapshotIsACopy(t *testing.T) {
	state := NewSubmissionState()
	state.SetFile(domain.SelectedFileFromBytes("a.pdf", domain.MIMETypePDF, []byte("a")))
	state.SetOutcome(domain.Success("ok"))

	snap := state.Snapshot()
	snap.Outcome.Text = "mutated"
	snap.File.Name = "mutated.pdf"

	got, _ := state.Outcome()
	if got.Text != "ok" {
		t.Fatalf("snapshot mutation leaked into state: %+v", got)
	}
	file, _ := state.File()
	if file.Name != "a.pdf" {
		t.Fatalf("snapshot mutation leaked into state: %s", file.Name)
	}
}
