// Package console renders submission outcomes for a terminal.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiGrey   = "\x1b[90m"
)

type style struct {
	label  string
	colour string
}

var styles = map[domain.Category]style{
	domain.CategorySuccess:           {label: "SUCCESS", colour: ansiGreen},
	domain.CategoryDuplicate:         {label: "DUPLICATE", colour: ansiYellow},
	domain.CategoryValidationWarning: {label: "WARNING", colour: ansiYellow},
	domain.CategoryServerError:       {label: "ERROR", colour: ansiRed},
	domain.CategoryUnknownError:      {label: "UNKNOWN", colour: ansiRed},
	domain.CategoryNoFileSelected:    {label: "NO FILE", colour: ansiGrey},
}

type Renderer struct {
	mu     sync.Mutex
	out    io.Writer
	colour bool
}

func NewRenderer(out io.Writer, colour bool) *Renderer {
	return &Renderer{out: out, colour: colour}
}

// Render writes one "[LABEL] text" line for the outcome.
func (r *Renderer) Render(outcome domain.Outcome) error {
	st, ok := styles[outcome.Category]
	if !ok {
		st = style{label: "UNKNOWN", colour: ansiRed}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.colour {
		_, err = fmt.Fprintf(r.out, "%s[%s]%s %s\n", st.colour, st.label, ansiReset, outcome.Text)
	} else {
		_, err = fmt.Fprintf(r.out, "[%s] %s\n", st.label, outcome.Text)
	}
	if err != nil {
		return fmt.Errorf("render outcome: %w", err)
	}
	return nil
}
