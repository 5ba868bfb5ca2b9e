package service

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"jarbas/internal/adapters/ingest/dataset"
)

// progress rewrites a single status line on the operator display.
// Write errors are ignored
type progress struct {
	w     io.Writer
	p     *message.Printer
	width int // widest line on screen so far
}

func newProgress(w io.Writer) *progress {
	return &progress{
		w:     w,
		p:     message.NewPrinter(language.English),
		width: utf8.RuneCountInString(dataset.LoadingLine),
	}
}

// update overwrites the status line with the running total
func (p *progress) update(total int) { p.write(total, "\r") }

// done writes the final total and ends the line
func (p *progress) done(total int) { p.write(total, "\n") }

func (p *progress) write(total int, end string) {
	line := p.p.Sprintf("%d reimbursements updated.", total)
	if n := utf8.RuneCountInString(line); n < p.width {
		line += strings.Repeat(" ", p.width-n)
	} else {
		p.width = n
	}
	_, _ = fmt.Fprint(p.w, line+end)
}
