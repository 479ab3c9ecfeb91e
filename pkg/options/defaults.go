package options

import (
	"os"
	"time"
)

const (
	// DefaultDataDir is the root directory ioadapter uses when no
	// override is supplied.
	DefaultDataDir = "/var/lib/shardbit"

	// DefaultDirPermission is applied to value segment directories.
	DefaultDirPermission os.FileMode = 0o755

	// DefaultFilePermission is applied to individual segment files.
	DefaultFilePermission os.FileMode = 0o644

	// DefaultEnableCompression turns zstd compression on by default.
	DefaultEnableCompression = true

	// DefaultIOTimeout bounds a single read or write.
	DefaultIOTimeout = 5 * time.Second
)

var defaultOptions = Options{
	DataDir:           DefaultDataDir,
	DirPermission:     DefaultDirPermission,
	FilePermission:    DefaultFilePermission,
	EnableCompression: DefaultEnableCompression,
	IOTimeout:         DefaultIOTimeout,
}

// NewDefaultOptions returns a copy of the package's default Options.
func NewDefaultOptions() Options {
	return defaultOptions
}
