package domain

// Settings is the process-wide configuration. Loaded once at startup,
// changed only through explicit user actions, persisted on every change.
type Settings struct {
	DefaultAmbientTemp  float64 `json:"defaultAmbientTemp"` // °F
	DefaultHumidity     float64 `json:"defaultHumidity"`    // percent
	SummerMode          string  `json:"summerMode"`         // "auto", "on", "off"
	EnableNotifications bool    `json:"enableNotifications"`
	EnableFoldReminders bool    `json:"enableFoldReminders"`
	Theme               string  `json:"theme"` // "light" or "dark"
}

// DefaultSettings returns the first-run configuration.
func DefaultSettings() *Settings {
	return &Settings{
		DefaultAmbientTemp:  76,
		DefaultHumidity:     68,
		SummerMode:          "auto",
		EnableNotifications: true,
		EnableFoldReminders: true,
		Theme:               "light",
	}
}
