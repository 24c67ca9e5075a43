package server

// LocatorResolver resolves a paper's content-locator string to an actual
// location. Resolution is an external concern; the server only consumes the
// boolean availability and the optional location.
type LocatorResolver interface {
	// Available reports whether content exists for the locator.
	Available(locator string) bool
	// Resolve returns a concrete location for the locator, if any.
	Resolve(locator string) (string, bool)
}

// NopResolver reports nothing available. Used when no resolver is wired.
type NopResolver struct{}

func (NopResolver) Available(string) bool         { return false }
func (NopResolver) Resolve(string) (string, bool) { return "", false }
