package gallery_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/gallery"
	"github.com/Oxyrus/parish/internal/media"
	"github.com/Oxyrus/parish/internal/storage"
	"github.com/Oxyrus/parish/internal/storage/sqlite"
)

func TestAlbumScenario(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	created, err := env.manager.CreateAlbum(ctx, gallery.AlbumInput{
		Title:     "Sunday Service",
		Date:      "2024-11-24",
		EventType: "weekly",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created.Album.PhotoCount)
	assert.Nil(t, created.Album.CoverImage)
	assert.Empty(t, created.Photos)
	assert.NotNil(t, created.Photos)

	_, err = env.manager.AddPhotoToAlbum(ctx, created.Album.ID, gallery.PhotoInput{URL: "http://x/a.jpg"})
	require.NoError(t, err)

	detail, err := env.manager.GetAlbum(ctx, created.Album.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Album.PhotoCount)
	require.Len(t, detail.Photos, 1)
	assert.Equal(t, "http://x/a.jpg", detail.Photos[0].URL)

	require.NoError(t, env.manager.DeleteAlbum(ctx, created.Album.ID))

	_, err = env.manager.GetAlbum(ctx, created.Album.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	n, err := env.store.Photos().CountByAlbum(ctx, created.Album.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	err = env.manager.DeleteAlbum(ctx, created.Album.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateAlbumRejectsInvalidInput(t *testing.T) {
	env := newEnv(t)

	cases := map[string]gallery.AlbumInput{
		"missing title": {Date: "2024-11-24", EventType: "weekly"},
		"blank title":   {Title: "   ", Date: "2024-11-24", EventType: "weekly"},
		"missing date":  {Title: "Vigil", EventType: "special"},
		"bad date":      {Title: "Vigil", Date: "24/11/2024", EventType: "special"},
		"missing type":  {Title: "Vigil", Date: "2024-11-24"},
		"unknown type":  {Title: "Vigil", Date: "2024-11-24", EventType: "monthly"},
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.manager.CreateAlbum(context.Background(), input)
			assert.ErrorIs(t, err, apperr.ErrBadRequest)
		})
	}

	albums, err := env.manager.ListAlbums(context.Background(), storage.AlbumFilter{})
	require.NoError(t, err)
	assert.Empty(t, albums)
}

func TestPhotoCountTracksPhotos(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	album := env.album(t, "Harvest", "2024-10-06", "special")

	var ids []int64
	for _, u := range []string{"/images/a.jpg", "/images/b.jpg", "/images/c.jpg"} {
		p, err := env.manager.AddPhotoToAlbum(ctx, album.ID, gallery.PhotoInput{URL: u})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	require.NoError(t, env.manager.DeletePhoto(ctx, ids[1]))

	want, err := env.store.Photos().CountByAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Equal(t, 2, want)

	detail, err := env.manager.GetAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, want, detail.Album.PhotoCount)
	assert.Len(t, detail.Photos, want)
	assert.Equal(t, ids[2], detail.Photos[0].ID, "newest photo first")

	list, err := env.manager.ListAlbums(ctx, storage.AlbumFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, want, list[0].PhotoCount)
}

func TestAddPhotoToAlbumErrors(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	album := env.album(t, "Youth Night", "2024-09-13", "special")

	_, err := env.manager.AddPhotoToAlbum(ctx, album.ID, gallery.PhotoInput{URL: "  "})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = env.manager.AddPhotoToAlbum(ctx, album.ID+100, gallery.PhotoInput{URL: "http://x/a.jpg"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = env.manager.DeletePhoto(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddPhotosFromUploadCountsPartialAttach(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	album := env.album(t, "Baptism", "2024-08-18", "special")

	env.photos.failFrom = 2

	caption := "Baptism service"
	result, err := env.manager.AddPhotosFromUpload(ctx, album.ID, []gallery.UploadFile{
		upload("one.jpg"), upload("two.jpg"), upload("three.jpg"),
	}, &caption)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Attached)
	assert.False(t, result.Complete())
	require.Len(t, result.Items, 3)
	assert.NoError(t, result.Items[0].Err)
	require.NotNil(t, result.Items[0].Photo)
	assert.Equal(t, caption, *result.Items[0].Photo.Caption)
	for _, item := range result.Items[1:] {
		assert.Error(t, item.Err)
		assert.NotNil(t, item.File, "file was stored before attach failed")
		assert.Nil(t, item.Photo)
	}

	n, err := env.store.Photos().CountByAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAddPhotosFromUploadStopsAtWriteFailure(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	album := env.album(t, "Choir", "2024-07-07", "weekly")

	env.backend.failOn = 2

	result, err := env.manager.AddPhotosFromUpload(ctx, album.ID, []gallery.UploadFile{
		upload("a.jpg"), upload("b.jpg"), upload("c.jpg"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Attached)
	assert.NoError(t, result.Items[0].Err)
	assert.ErrorIs(t, result.Items[1].Err, apperr.ErrStorageWrite)
	assert.ErrorIs(t, result.Items[2].Err, gallery.ErrNotAttempted)
	assert.ErrorIs(t, result.FirstError(), apperr.ErrStorageWrite)
}

func TestAddPhotosFromUploadPreconditions(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, err := env.manager.AddPhotosFromUpload(ctx, 1, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = env.manager.AddPhotosFromUpload(ctx, 42, []gallery.UploadFile{upload("a.jpg")}, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Zero(t, env.backend.puts, "nothing is stored for a missing album")
}

func TestUpdateAlbumMergesFields(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	album := env.album(t, "Easter", "2024-03-31", "special")

	title := "Easter Sunday"
	updated, err := env.manager.UpdateAlbum(ctx, album.ID, gallery.AlbumPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Easter Sunday", updated.Title)
	assert.Equal(t, "2024-03-31", updated.Date.Format(storage.DateLayout))
	assert.Equal(t, storage.EventSpecial, updated.EventType)

	bad := "March 31"
	_, err = env.manager.UpdateAlbum(ctx, album.ID, gallery.AlbumPatch{Date: &bad})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = env.manager.UpdateAlbum(ctx, album.ID+1, gallery.AlbumPatch{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetCover(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	first := env.album(t, "Retreat", "2024-05-10", "special")
	second := env.album(t, "Midweek", "2024-05-15", "weekly")

	photo, err := env.manager.AddPhotoToAlbum(ctx, first.ID, gallery.PhotoInput{URL: "/images/albums/1/cover.jpg"})
	require.NoError(t, err)

	album, err := env.manager.SetCover(ctx, first.ID, photo.ID)
	require.NoError(t, err)
	require.NotNil(t, album.CoverImage)
	assert.Equal(t, photo.URL, *album.CoverImage)

	_, err = env.manager.SetCover(ctx, second.ID, photo.ID)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	cleared, err := env.manager.UpdateAlbum(ctx, first.ID, gallery.AlbumPatch{CoverImage: storage.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.CoverImage)
}

func TestDeleteAlbumRemovesFiles(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	album := env.album(t, "Thanksgiving", "2024-11-28", "special")

	_, err := env.manager.AddPhotosFromUpload(ctx, album.ID, []gallery.UploadFile{upload("a.jpg")}, nil)
	require.NoError(t, err)
	require.Len(t, env.backend.objects, 1)

	require.NoError(t, env.manager.DeleteAlbum(ctx, album.ID))
	assert.Empty(t, env.backend.objects)
}

func TestDeleteAlbumKeepsFilesUsedByAnotherAlbum(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	source := env.album(t, "Retreat", "2024-06-01", "special")
	other := env.album(t, "Highlights", "2024-12-31", "special")

	result, err := env.manager.AddPhotosFromUpload(ctx, source.ID, []gallery.UploadFile{upload("a.jpg")}, nil)
	require.NoError(t, err)
	url := result.Items[0].Photo.URL

	_, err = env.manager.AddPhotoToAlbum(ctx, other.ID, gallery.PhotoInput{URL: url})
	require.NoError(t, err)

	require.NoError(t, env.manager.DeleteAlbum(ctx, source.ID))
	assert.Len(t, env.backend.objects, 1, "a photo in another album still links here")
}

func TestDeleteAlbumKeepsFilesUsedAsAnotherCover(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	source := env.album(t, "Retreat", "2024-06-01", "special")
	other := env.album(t, "Highlights", "2024-12-31", "special")

	result, err := env.manager.AddPhotosFromUpload(ctx, source.ID, []gallery.UploadFile{upload("a.jpg")}, nil)
	require.NoError(t, err)

	_, err = env.manager.UpdateAlbum(ctx, other.ID, gallery.AlbumPatch{CoverImage: storage.Some(result.Items[0].Photo.URL)})
	require.NoError(t, err)

	require.NoError(t, env.manager.DeleteAlbum(ctx, source.ID))
	assert.Len(t, env.backend.objects, 1)

	require.NoError(t, env.manager.DeleteAlbum(ctx, other.ID))
	assert.Len(t, env.backend.objects, 1, "files live under the first album's prefix")
}

func TestDeleteAlbumIgnoresSimilarPrefixes(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	first := env.album(t, "One", "2024-01-07", "weekly")
	for i := 0; i < 9; i++ {
		env.album(t, "Filler", "2024-01-14", "weekly")
	}
	eleventh := env.album(t, "Eleven", "2024-03-03", "weekly")
	require.NotEqual(t, first.ID, eleventh.ID)

	_, err := env.manager.AddPhotosFromUpload(ctx, first.ID, []gallery.UploadFile{upload("a.jpg")}, nil)
	require.NoError(t, err)
	_, err = env.manager.AddPhotosFromUpload(ctx, eleventh.ID, []gallery.UploadFile{upload("b.jpg")}, nil)
	require.NoError(t, err)

	require.NoError(t, env.manager.DeleteAlbum(ctx, first.ID))
	require.Len(t, env.backend.objects, 1)
	for key := range env.backend.objects {
		assert.True(t, strings.HasPrefix(key, media.AlbumPrefix(eleventh.ID)), key)
	}
}

type testEnv struct {
	store   *sqlite.Store
	photos  *flakyPhotos
	backend *memoryBackend
	manager *gallery.Manager
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "parish.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := &memoryBackend{}
	photos := &flakyPhotos{Photos: store.Photos()}

	return &testEnv{
		store:   store,
		photos:  photos,
		backend: backend,
		manager: gallery.NewManager(logger, store.Albums(), photos, media.NewIngestor(logger, backend)),
	}
}

func (e *testEnv) album(t *testing.T, title, date, eventType string) storage.Album {
	t.Helper()
	detail, err := e.manager.CreateAlbum(context.Background(), gallery.AlbumInput{
		Title:     title,
		Date:      date,
		EventType: eventType,
	})
	require.NoError(t, err)
	return detail.Album
}

func upload(name string) gallery.UploadFile {
	return gallery.UploadFile{Upload: media.Upload{
		Filename:    name,
		Size:        4,
		ContentType: "image/jpeg",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("jpeg")), nil
		},
	}}
}

// flakyPhotos fails every Create from the failFrom-th call on.
type flakyPhotos struct {
	storage.Photos
	creates  int
	failFrom int
}

func (f *flakyPhotos) Create(ctx context.Context, input storage.PhotoCreate) (storage.Photo, error) {
	f.creates++
	if f.failFrom > 0 && f.creates >= f.failFrom {
		return storage.Photo{}, errors.New("database is locked")
	}
	return f.Photos.Create(ctx, input)
}

type memoryBackend struct {
	objects map[string]int
	puts    int
	failOn  int
}

func (m *memoryBackend) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	m.puts++
	if m.failOn > 0 && m.puts == m.failOn {
		return "", errors.New("no space left on device")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.objects == nil {
		m.objects = make(map[string]int)
	}
	m.objects[key] = len(data)
	return "/images/" + key, nil
}

func (m *memoryBackend) RemovePrefix(_ context.Context, prefix string) error {
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
		}
	}
	return nil
}
