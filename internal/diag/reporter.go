package diag

// Reporter is the minimal sink stages emit into.
// Implementations: BagReporter (collects), NopReporter (discards).
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter adapts a *Bag to the Reporter interface.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops everything; useful for probing passes.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
