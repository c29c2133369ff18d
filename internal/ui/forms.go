// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/l8vibe-tui/internal/ui/styles"
)

// form is a vertical list of labelled text inputs with one focused field.
type form struct {
	labels []string
	fields []textinput.Model
	focus  int
}

type fieldSpec struct {
	label       string
	placeholder string
	secret      bool
	limit       int
}

func newForm(specs ...fieldSpec) form {
	f := form{}
	for _, s := range specs {
		in := textinput.New()
		in.Placeholder = s.placeholder
		in.Prompt = ""
		if s.limit > 0 {
			in.CharLimit = s.limit
		}
		if s.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '*'
		}
		f.labels = append(f.labels, s.label)
		f.fields = append(f.fields, in)
	}
	return f
}

func newLoginForm() form {
	return newForm(
		fieldSpec{label: "Email", placeholder: "you@example.com", limit: 254},
		fieldSpec{label: "Password", placeholder: "password", secret: true, limit: 128},
	)
}

func newCreateForm() form {
	return newForm(
		fieldSpec{label: "Project name", placeholder: "My landing page", limit: 100},
		fieldSpec{label: "Description", placeholder: "What are you building?", limit: 500},
		fieldSpec{label: "Claude.ai API key", placeholder: "sk-ant-...", secret: true, limit: 200},
	)
}

// Focus focuses field i and blurs the others. An index past the last field
// leaves every field blurred.
func (f *form) Focus(i int) tea.Cmd {
	f.focus = i
	var cmd tea.Cmd
	for j := range f.fields {
		if j == i {
			cmd = f.fields[j].Focus()
		} else {
			f.fields[j].Blur()
		}
	}
	return cmd
}

// Blur removes focus from every field.
func (f *form) Blur() {
	f.Focus(len(f.fields))
}

// Move shifts focus by delta, wrapping over n stops (n may exceed the field
// count for extra focusable widgets after the form).
func (f *form) Move(delta, n int) tea.Cmd {
	if n <= 0 {
		return nil
	}
	return f.Focus(((f.focus+delta)%n + n) % n)
}

// Focused reports the focused index.
func (f *form) Focused() int {
	return f.focus
}

// Value returns the value of field i.
func (f *form) Value(i int) string {
	return f.fields[i].Value()
}

// SetValue sets field i.
func (f *form) SetValue(i int, v string) {
	f.fields[i].SetValue(v)
}

// Reset clears every field and focuses the first.
func (f *form) Reset() tea.Cmd {
	for i := range f.fields {
		f.fields[i].Reset()
	}
	return f.Focus(0)
}

// Update forwards msg to the focused field.
func (f *form) Update(msg tea.Msg) tea.Cmd {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return cmd
}

// SetWidth sets the input width of every field.
func (f *form) SetWidth(w int) {
	for i := range f.fields {
		f.fields[i].Width = w
	}
}

// View renders the labelled fields.
func (f *form) View(theme *styles.Theme) string {
	var b strings.Builder
	for i, in := range f.fields {
		b.WriteString(theme.Label.Render(f.labels[i]))
		b.WriteString("\n")
		style := theme.InputBlurred
		if i == f.focus {
			style = theme.InputFocused
		}
		b.WriteString(style.Render(in.View()))
		b.WriteString("\n")
	}
	return b.String()
}
