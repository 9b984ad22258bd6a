package cli

// Formatting values for tabular output.
const (
	// TabWidth is the padding between columns.
	TabWidth = 2
	// unknownVersion is shown for installed packages without a version file.
	unknownVersion = "-"
)
