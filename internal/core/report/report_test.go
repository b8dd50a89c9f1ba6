package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailAndWarn_SetSeverity(t *testing.T) {
	f := Fail(KindDuplicateName, "f.aya", Span{}, "duplicate %s", "x")
	assert.Equal(t, SeverityError, f.Severity)
	assert.Equal(t, KindDuplicateName, f.Kind)

	w := Warn(KindShadowingWarn, "f.aya", Span{}, "shadowed %s", "x")
	assert.Equal(t, SeverityWarning, w.Severity)
}

func TestBufferReporter_ResetClears(t *testing.T) {
	b := NewBufferReporter()
	b.Report(Fail(KindIOFailure, "f.aya", Span{}, "boom"))
	assert.Len(t, b.Diagnostics(), 1)

	b.Reset()
	assert.Empty(t, b.Diagnostics())
}

func TestByURI_GroupsByFile(t *testing.T) {
	diags := []Diagnostic{
		Fail(KindIOFailure, "a.aya", Span{}, "a1"),
		Fail(KindIOFailure, "b.aya", Span{}, "b1"),
		Fail(KindIOFailure, "a.aya", Span{}, "a2"),
	}
	grouped := ByURI(diags)
	assert.Len(t, grouped["a.aya"], 2)
	assert.Len(t, grouped["b.aya"], 1)
}

func TestExpandHints_AddsOneEntryPerHint(t *testing.T) {
	d := Warn(KindAmbiguousNameWarn, "a.aya", NewSpan(0, 1), "ambiguous")
	d.Hints = []Span{NewSpan(5, 6), NewSpan(10, 11)}

	expanded := ExpandHints([]Diagnostic{d})
	assert.Len(t, expanded, 3)
	assert.Empty(t, expanded[0].Hints)
	assert.Equal(t, NewSpan(5, 6), expanded[1].Span)
	assert.Equal(t, NewSpan(10, 11), expanded[2].Span)
}

func TestNewSpan_PanicsOnInvertedBounds(t *testing.T) {
	assert.Panics(t, func() { NewSpan(5, 1) })
}
