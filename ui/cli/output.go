// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	plainStyle  = lipgloss.NewStyle()
)

// printer serializes console lines; progress callbacks may arrive from
// several goroutines.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) line(style lipgloss.Style, s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, style.Render(s))
}

func (p *printer) plain(s string) { p.line(plainStyle, s) }
func (p *printer) ok(s string)    { p.line(okStyle, s) }
func (p *printer) fail(s string)  { p.line(failStyle, s) }
func (p *printer) dim(s string)   { p.line(dimStyle, s) }
