package config

const (
	// DefaultMaxImages is how many images one achievement description may hold.
	DefaultMaxImages = 10

	// MaxEditorImageBytes is the size ceiling for images inserted from the
	// rich text editor.
	MaxEditorImageBytes = 5 << 20

	// MaxPageImageBytes is the ceiling for standalone page images, which
	// get a larger allowance than inline editor images.
	MaxPageImageBytes = 10 << 20

	// MaxFilenameLength bounds original file names kept in metadata.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFilenameLength = 255
)
