// Package itermap detects and normalizes affine iteration maps: it rewrites
// a set of integer index expressions over loop variables into sums of
// scaled splits of fused iterators, checks the result covers its inputs
// bijectively (or, in surjective mode, only that the splits used of each
// mark tile it consistently), and can invert
// or subspace-divide the resulting map. It plays the role of TVM's
// arith::IterAffineMap pass.
package itermap

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Kind identifies why a detection, normalization, fusion, or inversion
// attempt failed. Every value here corresponds to one of spec.md §7's named
// error kinds.
type Kind string

const (
	SanityFailed            Kind = "sanity_failed"
	BadPredicate            Kind = "bad_predicate"
	NonAffine               Kind = "non_affine"
	NotDivisible            Kind = "not_divisible"
	CannotDivideByIterator  Kind = "cannot_divide_by_iterator"
	FuseFailed              Kind = "fuse_failed"
	CannotDivSumWithBase    Kind = "cannot_div_sum_with_base"
	InconsistentOffset      Kind = "inconsistent_offset"
	UnnormalizablePredicate Kind = "unnormalizable_predicate"
	OverlappingConstraints  Kind = "overlapping_constraints"
	IncompleteSplit         Kind = "incomplete_split"
	UncoveredMark           Kind = "uncovered_mark"
	NotIndependent          Kind = "not_independent"
)

// Diagnostic records one failure: what kind it was, a human-readable
// message, and the index of the top-level index expression or predicate
// conjunct it concerns (the input IR here has no source file, so a span
// degenerates to "which index" — SPEC_FULL §"Diagnostic spans").
type Diagnostic struct {
	Kind    Kind
	Message string
	Index   int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] index %d: %s", d.Kind, d.Index, d.Message)
}

// Session accumulates diagnostics across one detect/normalize/divide/invert
// call, mirroring the teacher's plain []error accumulation idiom but with a
// typed Kind so callers can branch on failure category. A nil *Session is
// valid and silently drops diagnostics, so internal helpers can be called
// without always plumbing a live session through.
type Session struct {
	diags  []Diagnostic
	logger *log.Logger
}

// NewSession constructs an empty session. logger may be nil, in which case
// the session logs nothing.
func NewSession(logger *log.Logger) *Session {
	return &Session{logger: logger}
}

// Fail appends a diagnostic of the given kind at the given index.
func (s *Session) Fail(kind Kind, index int, format string, args ...any) {
	if s == nil {
		return
	}
	d := Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Index: index}
	s.diags = append(s.diags, d)
	if s.logger != nil {
		s.logger.Debugf("%s", d.String())
	}
}

// Failed reports whether any diagnostic has been recorded.
func (s *Session) Failed() bool {
	return s != nil && len(s.diags) > 0
}

// Diagnostics returns every diagnostic recorded so far, in order.
func (s *Session) Diagnostics() []Diagnostic {
	if s == nil {
		return nil
	}
	return s.diags
}

// mark returns the current diagnostic count, a checkpoint patchIndex can
// later patch forward from.
func (s *Session) mark() int {
	if s == nil {
		return 0
	}
	return len(s.diags)
}

// Logger returns the session's logger, or nil if none was given.
func (s *Session) Logger() *log.Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

// patchIndex overwrites the Index field of every diagnostic recorded since
// position from with idx, letting a caller that processes a list of
// top-level expressions attribute a diagnostic raised deep inside a
// recursive rewrite to "which index" it was processing (spec.md's
// diagnostic span, degenerated per SPEC_FULL).
func (s *Session) patchIndex(from, idx int) {
	if s == nil {
		return
	}
	for i := from; i < len(s.diags); i++ {
		s.diags[i].Index = idx
	}
}
