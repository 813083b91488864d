package scraper

// Reporter funnels progress percentages to a callback, clamping to [0,100]
// and never going backwards. A Reporter with a nil callback is a no-op.
type Reporter struct {
	cb   func(int)
	last int
}

// NewReporter wraps a progress callback. cb may be nil.
func NewReporter(cb func(int)) *Reporter {
	return &Reporter{cb: cb, last: -1}
}

// Report emits pct if it advances the previous value.
func (r *Reporter) Report(pct int) {
	if r.cb == nil {
		return
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct <= r.last {
		return
	}
	r.last = pct
	r.cb(pct)
}

// Fraction reports done/total as a percentage. No-op when total is zero.
func (r *Reporter) Fraction(done, total int) {
	if total <= 0 {
		return
	}
	r.Report(done * 100 / total)
}

// Done reports completion.
func (r *Reporter) Done() {
	r.Report(100)
}

// Last returns the last emitted percentage, -1 before the first report.
func (r *Reporter) Last() int {
	return r.last
}
