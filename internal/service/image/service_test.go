package image

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"achievements/internal/config"
	"achievements/internal/domain"
	"achievements/internal/domain/models"
	"achievements/internal/domain/repositories"
	"achievements/internal/domain/services"
	authsvc "achievements/internal/service/auth"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeImageRepo struct {
	mu      sync.Mutex
	images  map[uuid.UUID]*models.UploadedImage
	created int
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[uuid.UUID]*models.UploadedImage)}
}

func (r *fakeImageRepo) Create(_ context.Context, image *models.UploadedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[image.ID] = image
	r.created++
	return nil
}

func (r *fakeImageRepo) GetByID(_ context.Context, id uuid.UUID) (*models.UploadedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	image, ok := r.images[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "image not found"}
	}
	return image, nil
}

// fakeTxManager runs fn directly and reports whether it failed, standing
// in for a rollback.
type fakeTxManager struct {
	rolledBack bool
	commitErr  error
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if err := fn(ctx); err != nil {
		m.rolledBack = true
		return err
	}
	return m.commitErr
}

type fakeStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: make(map[string][]byte)} }

func (s *fakeStore) Put(_ context.Context, key string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) URL(key string) string { return "https://cdn.example.com/uploads/" + key }

type fixture struct {
	svc   services.ImageService
	repo  *fakeImageRepo
	tx    *fakeTxManager
	store *fakeStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	profiles, err := config.LoadProfiles()
	require.NoError(t, err)

	f := &fixture{repo: newFakeImageRepo(), tx: &fakeTxManager{}, store: newFakeStore()}
	f.svc = NewImageService(
		f.repo,
		f.tx,
		f.store,
		profiles,
		authsvc.NewOwnerBasedAuthorizer(f.repo),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func pngOfSize(n int) []byte {
	data := make([]byte, n)
	copy(data, pngHeader)
	return data
}

func TestImageService_Upload(t *testing.T) {
	userID := uuid.NewString()

	t.Run("stores png", func(t *testing.T) {
		f := newFixture(t)
		image, err := f.svc.Upload(context.Background(), &services.UploadImageRequest{
			UserID:       userID,
			Filename:     `C:\photos\trophy.png`,
			DeclaredType: "image/png",
			Data:         pngOfSize(1024),
		})
		require.NoError(t, err)

		assert.Equal(t, "trophy.png", image.OriginalName)
		assert.Equal(t, "image/png", image.MIMEType)
		assert.Equal(t, "editor", image.Profile)
		assert.Equal(t, int64(1024), image.Size)
		assert.Equal(t, "https://cdn.example.com/uploads/"+image.ID.String()+".png", image.URL)
		assert.Contains(t, f.store.objects, image.ID.String()+".png")
		assert.Equal(t, 1, f.repo.created)
	})

	tests := []struct {
		name    string
		req     services.UploadImageRequest
		wantErr error
	}{
		{
			name:    "empty file",
			req:     services.UploadImageRequest{UserID: userID, Filename: "a.png", DeclaredType: "image/png"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing filename",
			req:     services.UploadImageRequest{UserID: userID, DeclaredType: "image/png", Data: pngOfSize(10)},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "text declared",
			req:     services.UploadImageRequest{UserID: userID, Filename: "notes.txt", DeclaredType: "text/plain", Data: []byte("hello")},
			wantErr: domain.ErrUnsupportedMediaType,
		},
		{
			name:    "text disguised as png",
			req:     services.UploadImageRequest{UserID: userID, Filename: "a.png", DeclaredType: "image/png", Data: []byte("just some text")},
			wantErr: domain.ErrUnsupportedMediaType,
		},
		{
			name:    "over editor limit",
			req:     services.UploadImageRequest{UserID: userID, Filename: "big.png", DeclaredType: "image/png", Data: pngOfSize(6 << 20)},
			wantErr: domain.ErrPayloadTooLarge,
		},
		{
			name:    "svg not allowed for editor",
			req:     services.UploadImageRequest{UserID: userID, Filename: "a.svg", DeclaredType: "image/svg+xml", Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)},
			wantErr: domain.ErrUnsupportedMediaType,
		},
		{
			name:    "unknown profile",
			req:     services.UploadImageRequest{UserID: userID, Profile: "banner", Filename: "a.png", DeclaredType: "image/png", Data: pngOfSize(10)},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "bad user id",
			req:     services.UploadImageRequest{UserID: "nope", Filename: "a.png", DeclaredType: "image/png", Data: pngOfSize(10)},
			wantErr: domain.ErrUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := tt.req
			_, err := f.svc.Upload(context.Background(), &req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.store.objects)
		})
	}

	t.Run("page profile allows larger images", func(t *testing.T) {
		f := newFixture(t)
		image, err := f.svc.Upload(context.Background(), &services.UploadImageRequest{
			UserID:       userID,
			Profile:      "page",
			Filename:     "banner.png",
			DeclaredType: "image/png",
			Data:         pngOfSize(6 << 20),
		})
		require.NoError(t, err)
		assert.Equal(t, "page", image.Profile)
	})

	t.Run("store failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		f.store.putErr = errors.New("disk full")

		_, err := f.svc.Upload(context.Background(), &services.UploadImageRequest{
			UserID: userID, Filename: "a.png", DeclaredType: "image/png", Data: pngOfSize(10),
		})
		require.Error(t, err)
		assert.True(t, f.tx.rolledBack)
	})

	t.Run("commit failure removes stored bytes", func(t *testing.T) {
		f := newFixture(t)
		f.tx.commitErr = errors.New("connection reset")

		_, err := f.svc.Upload(context.Background(), &services.UploadImageRequest{
			UserID: userID, Filename: "a.png", DeclaredType: "image/png", Data: pngOfSize(10),
		})
		require.Error(t, err)
		assert.Empty(t, f.store.objects)
	})
}

func TestImageService_GetImage(t *testing.T) {
	f := newFixture(t)
	owner := uuid.NewString()

	image, err := f.svc.Upload(context.Background(), &services.UploadImageRequest{
		UserID: owner, Filename: "a.png", DeclaredType: "image/png", Data: bytes.Clone(pngHeader),
	})
	require.NoError(t, err)

	got, err := f.svc.GetImage(context.Background(), image.ID.String(), owner)
	require.NoError(t, err)
	assert.Equal(t, image.URL, got.URL)

	_, err = f.svc.GetImage(context.Background(), image.ID.String(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.GetImage(context.Background(), uuid.NewString(), owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.GetImage(context.Background(), "not-a-uuid", owner)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestImageService_MaxUploadBytes(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, int64(config.MaxPageImageBytes), f.svc.MaxUploadBytes())
}
