package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporterMonotonicAndClamped(t *testing.T) {
	var got []int
	r := NewReporter(func(pct int) { got = append(got, pct) })

	r.Report(-5)
	r.Report(10)
	r.Report(7)
	r.Report(10)
	r.Report(55)
	r.Report(250)
	r.Report(99)

	assert.Equal(t, []int{0, 10, 55, 100}, got)

	last := -1
	for _, p := range got {
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
		assert.Greater(t, p, last)
		last = p
	}
}

func TestReporterFraction(t *testing.T) {
	var got []int
	r := NewReporter(func(pct int) { got = append(got, pct) })

	r.Fraction(1, 4)
	r.Fraction(2, 4)
	r.Fraction(0, 0)
	r.Fraction(4, 4)

	assert.Equal(t, []int{25, 50, 100}, got)
}

func TestReporterDoneOnce(t *testing.T) {
	calls := 0
	r := NewReporter(func(pct int) { calls++ })

	r.Done()
	r.Done()
	r.Report(100)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 100, r.Last())
}

func TestReporterNilCallback(t *testing.T) {
	r := NewReporter(nil)
	assert.NotPanics(t, func() {
		r.Report(50)
		r.Done()
	})
}
