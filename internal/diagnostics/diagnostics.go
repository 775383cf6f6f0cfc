// Package diagnostics defines the closed error taxonomy produced by
// internal/semantic and internal/compiler, together with their source
// locations (spec.md §7).
package diagnostics

import (
	"fmt"

	"github.com/fluxscript/flux/internal/token"
)

// Code is a closed enumeration of diagnostic kinds. Every error the type
// checker can produce maps to exactly one of these.
type Code string

const (
	UndefinedIdentifier Code = "UndefinedIdentifier"
	UndefinedBuiltin     Code = "UndefinedBuiltin"
	CannotUnify          Code = "CannotUnify"
	CannotConstrain      Code = "CannotConstrain"
	OccursCheck          Code = "OccursCheck"
	MissingLabel         Code = "MissingLabel"
	ExtraLabel           Code = "ExtraLabel"
	CannotUnifyLabel     Code = "CannotUnifyLabel"
	MissingArgument      Code = "MissingArgument"
	ExtraArgument        Code = "ExtraArgument"
	CannotUnifyArgument  Code = "CannotUnifyArgument"
	CannotUnifyReturn    Code = "CannotUnifyReturn"
	MissingPipeArgument  Code = "MissingPipeArgument"
	MultiplePipeArguments Code = "MultiplePipeArguments"
	InvalidBinOp         Code = "InvalidBinOp"
	InvalidUnaryOp       Code = "InvalidUnaryOp"
	InvalidReturn        Code = "InvalidReturn"
	InvalidImportPath    Code = "InvalidImportPath"
	ImportCycle          Code = "ImportCycle"
	MissingConstraint    Code = "MissingConstraint"
	Bug                  Code = "Bug"
)

// Diagnostic is one located error. File is the path supplied to the
// compiler for the file that produced it; Start/End delimit the
// offending source span.
type Diagnostic struct {
	File    string
	Start   token.Pos
	End     token.Pos
	Code    Code
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%s: %s: %s", d.File, d.Start, d.Code, d.Message)
}

// New constructs a Diagnostic anchored at a single token's span.
func New(file string, tok token.Token, code Code, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		File:    file,
		Start:   tok.Start,
		End:     tok.End,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// List collects diagnostics across an inference pass. Flux reports every
// error it can find in a file rather than stopping at the first (spec.md
// §4.D, §7) — List is the accumulator used for that.
type List struct {
	items []*Diagnostic
}

func (l *List) Add(d *Diagnostic) { l.items = append(l.items, d) }

func (l *List) Items() []*Diagnostic { return l.items }

func (l *List) Len() int { return len(l.items) }

func (l *List) Error() string {
	if len(l.items) == 0 {
		return ""
	}
	msg := l.items[0].Error()
	if len(l.items) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(l.items)-1)
	}
	return msg
}
