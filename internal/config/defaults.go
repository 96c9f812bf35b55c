package config

// Default values applied by Load when a key is not set.
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "console"
	DefaultThrottleMS = 100
	DefaultDebounceMS = 100
)

// DefaultWatcherIgnorePatterns lists directories and file globs the watcher
// skips. Users can override via watcher.ignore_patterns.
var DefaultWatcherIgnorePatterns = []string{
	".git",
	".svn",
	".hg",
	".breve",
	"node_modules",
	"vendor",
	".venv",
	"venv",
	"__pycache__",
	"*.pyc",
	".DS_Store",
	"Thumbs.db",
	"dist",
	"build",
	"coverage",
	"*.log",
	".idea",
	".vscode",
	"*.swp",
	"*.swo",
	"*~",
}

// IgnoreSet returns a set of patterns for O(1) lookups. Uses the provided
// list if non-empty, otherwise falls back to defaults.
func IgnoreSet(patterns []string) map[string]bool {
	list := DefaultWatcherIgnorePatterns
	if len(patterns) > 0 {
		list = patterns
	}

	set := make(map[string]bool, len(list))
	for _, p := range list {
		set[p] = true
	}
	return set
}
