package domain

const (
	// DefaultProfile is the preference profile used when the caller does not name one.
	DefaultProfile = "default"

	// PreferenceTheme is the preference key holding the persisted Theme.
	PreferenceTheme = "theme"
)
