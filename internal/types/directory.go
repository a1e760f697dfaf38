package types

// PathFilterConfig contains configuration for the path filter.
type PathFilterConfig struct {
	IgnoredPatterns   []string `json:"ignoredPatterns"`
	AllowedExtensions []string `json:"allowedExtensions"`
}
