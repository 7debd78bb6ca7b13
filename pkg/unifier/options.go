package unifier

import "github.com/sibils/journals/pkg/authority"

// Option configures a Unifier.
type Option func(*Unifier)

// WithAuthorities replaces the default priority table.
func WithAuthorities(table *authority.Table) Option {
	return func(u *Unifier) {
		if table != nil {
			u.authorities = table
		}
	}
}

// WithChecksumValidation toggles ISSN check-digit enforcement during
// key resolution. Enabled by default.
func WithChecksumValidation(enabled bool) Option {
	return func(u *Unifier) {
		u.validateChecksum = enabled
	}
}

// WithProvenance toggles field-level provenance tracking. Enabled by
// default; disable for large batch runs where the provenance map is
// not exported.
func WithProvenance(enabled bool) Option {
	return func(u *Unifier) {
		u.trackProvenance = enabled
	}
}
