package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"achievements/internal/auth"
	"achievements/internal/config"
	"achievements/internal/content/sanitizer"
	"achievements/internal/editor"
	"achievements/internal/upload"
)

const defaultEndpoint = "http://localhost:8080/api/uploads/images"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	endpoint  string
	token     string
	encoding  string
	maxImages int
	sanitize  bool
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "editorctl",
		Short: "Edit achievement descriptions from the command line",
		Long: `editorctl hosts the achievement content editor outside a browser.

It loads a description from a file, places the cursor, runs toolbar
commands, uploads and inserts images, and inspects or exports the result.

Examples:
  # Insert an image after the word "medal"
  editorctl insert-image --in desc.html --out desc.html --image medal.png --after medal

  # Center the first paragraph
  editorctl format --in desc.html --select "Won" --command justifyCenter

  # Export as markdown
  editorctl export --in desc.html --format markdown`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.endpoint, "endpoint", envOr("EDITOR_UPLOAD_ENDPOINT", defaultEndpoint), "image upload endpoint")
	flags.StringVar(&opts.token, "token", os.Getenv("EDITOR_TOKEN"), "access token sent with uploads")
	flags.StringVar(&opts.encoding, "encoding", string(upload.EncodingMultipart), "upload encoding: multipart or data-url")
	flags.IntVar(&opts.maxImages, "max-images", config.DefaultMaxImages, "maximum images per description")
	flags.BoolVar(&opts.sanitize, "sanitize", true, "sanitize content before writing it out")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(
		newInsertImageCommand(opts),
		newFormatCommand(opts),
		newInspectCommand(opts),
		newExportCommand(opts),
	)
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// newSurface builds a surface for one command run, loaded with the content
// of path. The access token goes into the shared session store the upload
// client reads from.
func (o *rootOptions) newSurface(cmd *cobra.Command, path string, customize func(*editor.Options)) (*editor.Surface, error) {
	session := auth.DefaultSessionStore()
	if o.token != "" {
		session.SetToken(o.token)
	}

	opts := editor.Options{
		MaxImages:      o.maxImages,
		UploadEndpoint: o.endpoint,
		UploadEncoding: upload.Encoding(o.encoding),
		Credentials:    session,
		Logger:         o.logger(cmd),
	}
	if o.sanitize {
		opts.Sanitizer = sanitizer.NewHTMLSanitizer()
	}
	if customize != nil {
		customize(&opts)
	}

	s, err := editor.New(opts)
	if err != nil {
		return nil, err
	}

	markup, err := readContent(path)
	if err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.SetContent(markup); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// readContent returns the file's markup; an empty path is an empty document.
func readContent(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}

// writeContent writes markup to path, or to the command output when path is empty.
func writeContent(cmd *cobra.Command, path, markup string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), markup+"\n")
		return err
	}
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		return fmt.Errorf("write content: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
