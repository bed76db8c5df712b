package gemini

// Exported for testing.
var (
	BuildContents = buildContents
	BuildConfig   = buildConfig
)
