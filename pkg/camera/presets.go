package camera

// Preset names for common capture hint sets
const (
	PresetDefault = "default"
	Preset480p    = "480p"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
)

// Presets returns all available preset configurations.
// Presets only change the resolution and framerate hints, never the URL.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		Preset480p:    withSize(640, 480, 30),
		Preset720p:    withSize(1280, 720, 30),
		Preset1080p:   withSize(1920, 1080, 30),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetDefault,
		Preset480p,
		Preset720p,
		Preset1080p,
	}
}

// ApplyPreset copies the named preset's hints onto cfg.
// Returns false if the preset is unknown.
func ApplyPreset(cfg *Config, name string) bool {
	p, ok := Presets()[name]
	if !ok {
		return false
	}
	cfg.Width, cfg.Height, cfg.Framerate = p.Width, p.Height, p.Framerate
	return true
}

func withSize(w, h, fps int) Config {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	cfg.Framerate = fps
	return cfg
}
