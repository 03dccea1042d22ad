package domain

import "time"

// PreferenceProfile is a named bundle of ranking preferences. A rank request
// may reference a profile by ID; explicit request values override the
// profile field-by-field.
type PreferenceProfile struct {
	// ID is the unique profile identity.
	ID string `validate:"required"`

	// Name is the human-readable profile name.
	Name string `validate:"required"`

	// Keywords are preferred terms matched against title, description and
	// company tokens.
	Keywords []string

	// Locations are preferred locations, compared after normalisation.
	Locations []string

	// Companies are preferred companies, compared after normalisation.
	Companies []string

	// RemoteOnly biases ranking towards postings mentioning remote work and
	// actively penalises ones that do not.
	RemoteOnly bool

	// CreatedAt is when the profile was created.
	CreatedAt time.Time

	// UpdatedAt is when the profile was last updated.
	UpdatedAt time.Time
}
