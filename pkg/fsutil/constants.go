package fsutil

// File and directory permission constants used for the install tree.
const (
	FileModeDefault = 0o644 // -rw-r--r--
	DirModeDefault  = 0o755 // drwxr-xr-x

	// DefaultChunkSize is the copy buffer size used when streaming archive
	// entries to disk. Small on purpose: peak memory is the buffer, not the file.
	DefaultChunkSize = 512
)
