package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for uploaded file display names.
	MaxFileNameLength = 255

	// DefaultMaxFileSizeMB is the per-file upload limit when none is configured.
	DefaultMaxFileSizeMB = 20

	// DefaultMaxFilesPerUpload is the batch size limit of one upload request.
	DefaultMaxFilesPerUpload = 5

	// DefaultRootFolderName names the root folder created on first start.
	DefaultRootFolderName = "Root"
)
