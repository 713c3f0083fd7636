// Package format renders composed declarations as Go source.
package format

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/mixgen/pkg/core"
)

// Printer writes Go source with tab indentation.
type Printer struct {
	output      *bytes.Buffer
	depth       int
	atLineStart bool
}

func newPrinter() *Printer {
	return &Printer{
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// String returns the rendered output.
func (p *Printer) String() string {
	return strings.TrimRight(p.output.String(), "\n") + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

// line writes s followed by a newline.
func (p *Printer) line(s string) {
	p.write(s)
	p.writeln()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth; i++ {
		p.output.WriteByte('\t')
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// comments writes each comment line on its own line.
func (p *Printer) comments(lines []string) {
	for _, c := range lines {
		p.line(c)
	}
}

// formatList prints count items separated by sep.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}

func (p *Printer) field(f core.Field) {
	p.comments(f.Doc)
	if !f.Embedded {
		p.write(f.Name)
		p.space()
	}
	p.write(f.Type)
	if f.Tag != "" {
		p.space()
		p.write(f.Tag)
	}
	if f.Comment != "" {
		p.space()
		p.write(f.Comment)
	}
	p.writeln()
}

// signature writes "Name(params) results".
func (p *Printer) signature(name string, sig core.Signature) {
	p.write(name)
	p.write("(")
	p.write(sig.Params)
	p.write(")")
	if sig.Results != "" {
		p.space()
		p.write(sig.Results)
	}
}

func (p *Printer) method(m core.Behavior) {
	p.comments(m.Doc)
	p.write("func (")
	if m.Receiver.Name != "" {
		p.write(m.Receiver.Name)
		p.space()
	}
	if m.Receiver.Pointer {
		p.write("*")
	}
	p.write(m.Receiver.Type)
	p.write(") ")
	p.signature(m.Name, m.Signature)
	if m.Body != "" {
		p.space()
		p.write(m.Body)
	}
	p.writeln()
}
