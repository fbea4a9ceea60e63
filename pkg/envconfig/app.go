package envconfig

import (
	"time"
)

// LoadTimeZone resolves the TIME_ZONE environment variable to a location.
// Date-bucket queries and reports run in this zone.
func LoadTimeZone() (*time.Location, error) {
	name := GetEnv("TIME_ZONE", "Local")
	if name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// LoadSessionTTL returns how long a login session stays valid.
func LoadSessionTTL() time.Duration {
	if raw := GetEnv("SESSION_TTL", ""); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			return ttl
		}
	}
	return 14 * 24 * time.Hour
}

// LoadReportFont returns the path to the UTF-8 TTF font embedded into PDF
// reports. The report text is Russian, so the font must carry Cyrillic
// glyphs.
func LoadReportFont() string {
	return GetEnv("REPORT_FONT", "fonts/DejaVuSans.ttf")
}
