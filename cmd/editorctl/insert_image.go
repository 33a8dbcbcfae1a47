package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"achievements/internal/config"
	"achievements/internal/editor"
	"achievements/internal/upload"
)

type insertImageOptions struct {
	in      string
	out     string
	image   string
	after   string
	alt     string
	profile string
	retries uint
	delay   time.Duration
	timeout time.Duration
}

func newInsertImageCommand(root *rootOptions) *cobra.Command {
	opts := &insertImageOptions{}

	cmd := &cobra.Command{
		Use:   "insert-image",
		Short: "Upload an image and insert it into a description",
		Long: `Upload an image file and insert it at the cursor.

The cursor is placed after the first occurrence of --after, or at the end of
the document. Uploads rejected by the server or lost to the network are
retried up to --retries times; invalid or oversized files are not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsertImage(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.in, "in", "", "file holding the current description (empty document when omitted)")
	cmd.Flags().StringVar(&opts.out, "out", "", "file to write the result to (stdout when omitted)")
	cmd.Flags().StringVar(&opts.image, "image", "", "image file to upload")
	cmd.Flags().StringVar(&opts.after, "after", "", "place the cursor after this text")
	cmd.Flags().StringVar(&opts.alt, "alt", "", "alt text (defaults to the file name)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "upload profile: editor or page (default editor)")
	cmd.Flags().UintVar(&opts.retries, "retries", 2, "retries after a server or network failure")
	cmd.Flags().DurationVar(&opts.delay, "retry-delay", time.Second, "initial delay between retries")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", time.Minute, "deadline for each upload attempt")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runInsertImage(cmd *cobra.Command, root *rootOptions, opts *insertImageOptions) error {
	profiles, err := config.LoadProfiles()
	if err != nil {
		return err
	}
	profile, err := profiles.Get(opts.profile)
	if err != nil {
		return err
	}

	file, err := readImage(opts.image)
	if err != nil {
		return err
	}
	// Non-images are left to the surface, which reports them as invalid.
	if file.IsImage() && !profile.Allows(file.MIMEType) {
		return fmt.Errorf("%s profile does not accept %s", profile.Name, file.MIMEType)
	}

	endpoint, err := withProfile(root.endpoint, profile.Name)
	if err != nil {
		return err
	}

	s, err := root.newSurface(cmd, opts.in, func(o *editor.Options) {
		o.UploadEndpoint = endpoint
		o.MaxImageBytes = profile.MaxBytes
		o.AltText = opts.alt
	})
	if err != nil {
		return err
	}
	defer s.Destroy()

	if opts.after != "" {
		if !s.SelectText(opts.after, true) {
			return fmt.Errorf("text %q not found", opts.after)
		}
	} else {
		s.Focus()
	}

	ctx := cmd.Context()
	var result *upload.Result
	err = retry.Do(
		func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, opts.timeout)
			defer cancel()
			res, err := s.InsertImageFromDrop(attemptCtx, []upload.File{*file})
			if err != nil {
				return err
			}
			result = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(opts.retries+1),
		retry.Delay(opts.delay),
		retry.RetryIf(upload.Retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "upload attempt %d failed: %s\n", n+1, upload.UserMessage(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}

	if err := writeContent(cmd, opts.out, s.GetContent()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "inserted %s (%s)\n", result.URL, s.ImageSummary())
	return nil
}

// readImage loads path and works out its MIME type from the extension,
// falling back to content sniffing.
func readImage(path string) (*upload.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	mimeType, _, _ := mime.ParseMediaType(mime.TypeByExtension(filepath.Ext(path)))
	if mimeType == "" {
		mimeType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	return &upload.File{Name: filepath.Base(path), MIMEType: mimeType, Data: data}, nil
}

// withProfile adds the profile query parameter to the upload endpoint.
func withProfile(endpoint, profile string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("profile", profile)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
