// Package prompt assembles generation prompts from named sections.
package prompt

import (
	"strings"
)

// Section is one titled block of prompt lines
type Section struct {
	Title string
	Lines []string
}

// Builder keeps an ordered list of named sections and renders them to text at the end.
// Sections merged by name are inserted just above the anchor section.
type Builder struct {
	anchor   string
	sections []*Section
}

// NewBuilder creates a builder whose merged sections are placed above anchor
func NewBuilder(anchor string) *Builder {
	return &Builder{anchor: anchor}
}

func (b *Builder) find(title string) int {
	for i, s := range b.sections {
		if s.Title == title {
			return i
		}
	}
	return -1
}

// Add appends a section at the end. An existing section of the same title receives the lines instead.
func (b *Builder) Add(title string, lines ...string) {
	if i := b.find(title); i >= 0 {
		b.sections[i].Lines = append(b.sections[i].Lines, lines...)
		return
	}
	b.sections = append(b.sections, &Section{Title: title, Lines: append([]string(nil), lines...)})
}

// Merge appends lines to the section named title, creating it immediately above the
// anchor if it does not exist yet. Without an anchor the section goes to the end.
func (b *Builder) Merge(title string, lines ...string) {
	if i := b.find(title); i >= 0 {
		b.sections[i].Lines = append(b.sections[i].Lines, lines...)
		return
	}

	s := &Section{Title: title, Lines: append([]string(nil), lines...)}
	at := b.find(b.anchor)
	if at < 0 {
		b.sections = append(b.sections, s)
		return
	}
	b.sections = append(b.sections, nil)
	copy(b.sections[at+1:], b.sections[at:])
	b.sections[at] = s
}

// Has reports whether a section exists
func (b *Builder) Has(title string) bool {
	return b.find(title) >= 0
}

// Titles returns the section titles in render order
func (b *Builder) Titles() []string {
	titles := make([]string, len(b.sections))
	for i, s := range b.sections {
		titles[i] = s.Title
	}
	return titles
}

// Render joins every non-empty section into the final prompt text
func (b *Builder) Render() string {
	blocks := make([]string, 0, len(b.sections))
	for _, s := range b.sections {
		if len(s.Lines) == 0 {
			continue
		}
		var sb strings.Builder
		if s.Title != "" {
			sb.WriteString("### ")
			sb.WriteString(s.Title)
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(s.Lines, "\n"))
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}
