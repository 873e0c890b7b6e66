package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Oxyrus/parish/internal/storage"
	"github.com/Oxyrus/parish/internal/storage/sqlite"
)

func TestOpenCreatesSchema(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)

	ctx := context.Background()

	albums, err := store.Albums().List(ctx, storage.AlbumFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(albums) != 0 {
		t.Fatalf("expected no albums, got %d", len(albums))
	}

	photos, err := store.Photos().ListByAlbum(ctx, 1)
	if err != nil {
		t.Fatalf("ListByAlbum returned error: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("expected no photos, got %d", len(photos))
	}

	if _, err := store.Settings().Get(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected settings to be absent, got %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parish.db")

	first, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	closeStore(t, first)

	second, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("second Open returned error: %v", err)
	}
	closeStore(t, second)
}

func TestAlbumLifecycle(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	created, err := store.Albums().Create(ctx, storage.AlbumCreate{
		Title:     "Sunday Service",
		Date:      date(2024, 11, 24),
		EventType: storage.EventWeekly,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID == 0 {
		t.Fatalf("expected album ID to be set")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be populated")
	}
	if created.CoverImage != nil {
		t.Fatalf("expected no cover image, got %q", *created.CoverImage)
	}
	if created.PhotoCount != 0 {
		t.Fatalf("expected photo count 0, got %d", created.PhotoCount)
	}
	if !created.Date.Equal(date(2024, 11, 24)) {
		t.Fatalf("unexpected date %v", created.Date)
	}

	newTitle := "Sunday Worship"
	updated, err := store.Albums().Update(ctx, created.ID, storage.AlbumUpdate{
		Title: &newTitle,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != newTitle {
		t.Fatalf("expected updated title %q, got %q", newTitle, updated.Title)
	}
	if updated.EventType != storage.EventWeekly || !updated.Date.Equal(created.Date) {
		t.Fatalf("expected untouched fields to survive a partial update, got %+v", updated)
	}

	withCover, err := store.Albums().Update(ctx, created.ID, storage.AlbumUpdate{
		CoverImage: storage.Some("/images/albums/1/cover.jpg"),
	})
	if err != nil {
		t.Fatalf("Update cover returned error: %v", err)
	}
	if withCover.CoverImage == nil || *withCover.CoverImage != "/images/albums/1/cover.jpg" {
		t.Fatalf("expected cover image to be set, got %v", withCover.CoverImage)
	}
	if withCover.Title != newTitle {
		t.Fatalf("expected title to be untouched, got %q", withCover.Title)
	}

	cleared, err := store.Albums().Update(ctx, created.ID, storage.AlbumUpdate{
		CoverImage: storage.Null[string](),
	})
	if err != nil {
		t.Fatalf("Update clear returned error: %v", err)
	}
	if cleared.CoverImage != nil {
		t.Fatalf("expected cover image to be cleared")
	}

	if err := store.Albums().Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := store.Albums().GetByID(ctx, created.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Albums().Delete(ctx, created.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound on repeated delete, got %v", err)
	}
}

func TestAlbumValidation(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	_, err := store.Albums().Create(ctx, storage.AlbumCreate{
		Title:     "Harvest",
		Date:      date(2024, 10, 6),
		EventType: storage.EventType("monthly"),
	})
	if !errors.Is(err, storage.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown event type, got %v", err)
	}

	album := createAlbum(t, store, "Harvest", date(2024, 10, 6), storage.EventSpecial)

	bad := storage.EventType("yearly")
	if _, err := store.Albums().Update(ctx, album.ID, storage.AlbumUpdate{EventType: &bad}); !errors.Is(err, storage.ErrValidation) {
		t.Fatalf("expected ErrValidation on update, got %v", err)
	}

	title := "Missing"
	if _, err := store.Albums().Update(ctx, album.ID+100, storage.AlbumUpdate{Title: &title}); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown album, got %v", err)
	}
}

func TestAlbumListFilterAndOrder(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	createAlbum(t, store, "Easter", date(2024, 3, 31), storage.EventSpecial)
	createAlbum(t, store, "Week 1", date(2024, 1, 7), storage.EventWeekly)
	createAlbum(t, store, "Christmas", date(2024, 12, 25), storage.EventSpecial)
	createAlbum(t, store, "Week 2", date(2024, 1, 14), storage.EventWeekly)

	special, err := store.Albums().List(ctx, storage.AlbumFilter{
		EventType: storage.EventSpecial,
		Order:     storage.OldestFirst,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(special) != 2 {
		t.Fatalf("expected 2 special albums, got %d", len(special))
	}
	for _, a := range special {
		if a.EventType != storage.EventSpecial {
			t.Fatalf("unexpected event type %q in special listing", a.EventType)
		}
	}
	if special[0].Title != "Easter" || special[1].Title != "Christmas" {
		t.Fatalf("expected ascending dates, got %q then %q", special[0].Title, special[1].Title)
	}

	all, err := store.Albums().List(ctx, storage.AlbumFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 albums, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Date.After(all[i-1].Date) {
			t.Fatalf("expected descending dates, got %v before %v", all[i-1].Date, all[i].Date)
		}
	}
}

func TestPhotoCountTracksPhotos(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	album := createAlbum(t, store, "Choir Night", date(2024, 6, 1), storage.EventSpecial)
	other := createAlbum(t, store, "Week 22", date(2024, 6, 2), storage.EventWeekly)

	var ids []int64
	for _, url := range []string{"/a.jpg", "/b.jpg", "/c.jpg"} {
		photo, err := store.Photos().Create(ctx, storage.PhotoCreate{AlbumID: album.ID, URL: url})
		if err != nil {
			t.Fatalf("Create photo returned error: %v", err)
		}
		ids = append(ids, photo.ID)
	}
	if _, err := store.Photos().Create(ctx, storage.PhotoCreate{AlbumID: other.ID, URL: "/d.jpg"}); err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}

	assertCount(t, store, album.ID, 3)

	if err := store.Photos().Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete photo returned error: %v", err)
	}
	assertCount(t, store, album.ID, 2)
	assertCount(t, store, other.ID, 1)

	if err := store.Photos().Delete(ctx, ids[0]); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound on repeated photo delete, got %v", err)
	}
}

func TestPhotosLifecycle(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	album := createAlbum(t, store, "City Outreach", date(2024, 8, 10), storage.EventSpecial)

	takenAt := time.Date(2024, 8, 10, 14, 5, 0, 0, time.UTC)
	caption := "Team photo"

	first, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID: album.ID,
		URL:     "/images/albums/1/team.jpg",
		Caption: &caption,
		TakenAt: &takenAt,
	})
	if err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}

	second, err := store.Photos().Create(ctx, storage.PhotoCreate{
		AlbumID: album.ID,
		URL:     "https://cdn.example.org/street.jpg",
	})
	if err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}

	photos, err := store.Photos().ListByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("ListByAlbum returned error: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	if photos[0].ID != second.ID || photos[1].ID != first.ID {
		t.Fatalf("expected newest first [%d %d], got [%d %d]", second.ID, first.ID, photos[0].ID, photos[1].ID)
	}

	got, err := store.Photos().GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.TakenAt == nil || !got.TakenAt.Equal(takenAt) {
		t.Fatalf("expected TakenAt %v, got %v", takenAt, got.TakenAt)
	}
	if got.Caption == nil || *got.Caption != caption {
		t.Fatalf("expected caption %q, got %v", caption, got.Caption)
	}
	if second.Caption != nil {
		t.Fatalf("expected nil caption, got %q", *second.Caption)
	}

	withPhotos, list, err := store.Albums().GetWithPhotos(ctx, album.ID)
	if err != nil {
		t.Fatalf("GetWithPhotos returned error: %v", err)
	}
	if withPhotos.PhotoCount != len(list) || len(list) != 2 {
		t.Fatalf("expected photo count to match list, got %d and %d", withPhotos.PhotoCount, len(list))
	}
}

func TestPhotoRequiresExistingAlbum(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)

	_, err := store.Photos().Create(context.Background(), storage.PhotoCreate{
		AlbumID: 404,
		URL:     "/orphan.jpg",
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing album, got %v", err)
	}
}

func TestDeleteAlbumCascadesPhotos(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	album := createAlbum(t, store, "Baptism", date(2024, 5, 5), storage.EventSpecial)
	var photoIDs []int64
	for i := 0; i < 5; i++ {
		photo, err := store.Photos().Create(ctx, storage.PhotoCreate{AlbumID: album.ID, URL: "/p.jpg"})
		if err != nil {
			t.Fatalf("Create photo returned error: %v", err)
		}
		photoIDs = append(photoIDs, photo.ID)
	}

	if err := store.Albums().Delete(ctx, album.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	n, err := store.Photos().CountByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("CountByAlbum returned error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no photos after cascade, got %d", n)
	}
	for _, id := range photoIDs {
		if _, err := store.Photos().GetByID(ctx, id); err != storage.ErrNotFound {
			t.Fatalf("expected photo %d to be gone, got %v", id, err)
		}
	}
	if _, _, err := store.Albums().GetWithPhotos(ctx, album.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGetWithPhotosDuringDeleteSeesAllOrNothing(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	const photos = 20
	album := createAlbum(t, store, "Confirmation", date(2024, 6, 9), storage.EventSpecial)
	for i := 0; i < photos; i++ {
		if _, err := store.Photos().Create(ctx, storage.PhotoCreate{AlbumID: album.ID, URL: "/p.jpg"}); err != nil {
			t.Fatalf("Create photo returned error: %v", err)
		}
	}

	start := make(chan struct{})
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < 50; i++ {
				got, list, err := store.Albums().GetWithPhotos(ctx, album.ID)
				if errors.Is(err, storage.ErrNotFound) {
					return
				}
				if err != nil {
					t.Errorf("GetWithPhotos returned error: %v", err)
					return
				}
				if len(list) != photos || got.PhotoCount != photos {
					t.Errorf("expected all %d photos or none, got %d rows and count %d", photos, len(list), got.PhotoCount)
					return
				}
			}
		}()
	}

	close(start)
	if err := store.Albums().Delete(ctx, album.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	wg.Wait()

	if _, _, err := store.Albums().GetWithPhotos(ctx, album.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCountReferencesLooksOutsideAlbum(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	first := createAlbum(t, store, "First", date(2024, 1, 7), storage.EventWeekly)
	second := createAlbum(t, store, "Second", date(2024, 1, 14), storage.EventWeekly)

	own := "/images/albums/1/1-a.jpg"
	if _, err := store.Photos().Create(ctx, storage.PhotoCreate{AlbumID: first.ID, URL: own}); err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}

	count := func() int {
		t.Helper()
		n, err := store.Photos().CountReferences(ctx, "/albums/1/", first.ID)
		if err != nil {
			t.Fatalf("CountReferences returned error: %v", err)
		}
		return n
	}

	if n := count(); n != 0 {
		t.Fatalf("expected own photos to be ignored, got %d", n)
	}

	if _, err := store.Photos().Create(ctx, storage.PhotoCreate{AlbumID: second.ID, URL: "/images/albums/11/2-b.jpg"}); err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}
	if n := count(); n != 0 {
		t.Fatalf("expected a longer album id not to match, got %d", n)
	}

	if _, err := store.Photos().Create(ctx, storage.PhotoCreate{AlbumID: second.ID, URL: own}); err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}
	if _, err := store.Albums().Update(ctx, second.ID, storage.AlbumUpdate{CoverImage: storage.Some(own)}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if n := count(); n != 2 {
		t.Fatalf("expected photo and cover references, got %d", n)
	}
}

func TestSermonsLifecycle(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	scripture := "John 3:16"
	older, err := store.Sermons().Create(ctx, storage.SermonCreate{
		Title:     "Grace",
		Date:      date(2024, 2, 4),
		Speaker:   "Pastor Ade",
		Scripture: &scripture,
	})
	if err != nil {
		t.Fatalf("Create sermon returned error: %v", err)
	}
	newer, err := store.Sermons().Create(ctx, storage.SermonCreate{
		Title:   "Faith",
		Date:    date(2024, 3, 3),
		Speaker: "Pastor Ade",
	})
	if err != nil {
		t.Fatalf("Create sermon returned error: %v", err)
	}

	if _, err := store.Sermons().Create(ctx, storage.SermonCreate{Title: "No speaker", Date: date(2024, 1, 1)}); !errors.Is(err, storage.ErrValidation) {
		t.Fatalf("expected ErrValidation without speaker, got %v", err)
	}

	latest, err := store.Sermons().List(ctx, 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(latest) != 1 || latest[0].ID != newer.ID {
		t.Fatalf("expected newest sermon only, got %+v", latest)
	}

	video := "https://youtube.com/watch?v=1"
	updated, err := store.Sermons().Update(ctx, older.ID, storage.SermonUpdate{
		VideoURL:  storage.Some(video),
		Scripture: storage.Null[string](),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.VideoURL == nil || *updated.VideoURL != video {
		t.Fatalf("expected video url to be set")
	}
	if updated.Scripture != nil {
		t.Fatalf("expected scripture to be cleared")
	}
	if updated.Title != "Grace" {
		t.Fatalf("expected title untouched, got %q", updated.Title)
	}

	if err := store.Sermons().Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := store.Sermons().Delete(ctx, older.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound on repeated delete, got %v", err)
	}
}

func TestPostsTypeValidationAndFilter(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	if _, err := store.Posts().Create(ctx, storage.PostCreate{Title: "x", Content: "y", Type: "blog"}); !errors.Is(err, storage.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown type, got %v", err)
	}

	testimony, err := store.Posts().Create(ctx, storage.PostCreate{Title: "Healed", Content: "Thank God", Type: storage.PostTestimony})
	if err != nil {
		t.Fatalf("Create post returned error: %v", err)
	}
	if testimony.Date.IsZero() {
		t.Fatalf("expected date to default to creation time")
	}
	if _, err := store.Posts().Create(ctx, storage.PostCreate{Title: "Retreat", Content: "Join us", Type: storage.PostNews}); err != nil {
		t.Fatalf("Create post returned error: %v", err)
	}

	news, err := store.Posts().List(ctx, storage.PostFilter{Type: storage.PostNews})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(news) != 1 || news[0].Type != storage.PostNews {
		t.Fatalf("expected a single news post, got %+v", news)
	}

	author := "Sister Grace"
	updated, err := store.Posts().Update(ctx, testimony.ID, storage.PostUpdate{Author: storage.Some(author)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Author == nil || *updated.Author != author || updated.Content != "Thank God" {
		t.Fatalf("unexpected post after partial update: %+v", updated)
	}
}

func TestDepartmentsLifecycle(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	leader := "Bro. Tunde"
	choir, err := store.Departments().Create(ctx, storage.DepartmentCreate{
		Name:        "Choir",
		Description: "Music ministry",
		Leader:      &leader,
	})
	if err != nil {
		t.Fatalf("Create department returned error: %v", err)
	}
	if _, err := store.Departments().Create(ctx, storage.DepartmentCreate{Name: "Ushering"}); err != nil {
		t.Fatalf("Create department returned error: %v", err)
	}

	list, err := store.Departments().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Choir" {
		t.Fatalf("expected departments ordered by name, got %+v", list)
	}

	updated, err := store.Departments().Update(ctx, choir.ID, storage.DepartmentUpdate{Leader: storage.Null[string]()})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Leader != nil || updated.Description != "Music ministry" {
		t.Fatalf("unexpected department after update: %+v", updated)
	}
}

func TestSettingsSingleton(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	inserted, err := store.Settings().Insert(ctx, storage.Settings{ChurchName: "Parish"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if !inserted {
		t.Fatalf("expected first insert to create the row")
	}

	inserted, err = store.Settings().Insert(ctx, storage.Settings{ChurchName: "Other"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if inserted {
		t.Fatalf("expected second insert to be a no-op")
	}

	got, err := store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ChurchName != "Parish" {
		t.Fatalf("expected original row to survive, got %q", got.ChurchName)
	}

	city := "Jönköping"
	updated, err := store.Settings().Update(ctx, storage.SettingsUpdate{City: &city, YoutubeURL: storage.Some("https://youtube.com/@parish")})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.City != city || updated.YoutubeURL == nil || updated.ChurchName != "Parish" {
		t.Fatalf("unexpected settings after update: %+v", updated)
	}

	replaced, err := store.Settings().Upsert(ctx, storage.Settings{ChurchName: "Renamed"})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if replaced.ChurchName != "Renamed" || replaced.City != "" || replaced.YoutubeURL != nil {
		t.Fatalf("expected full replacement, got %+v", replaced)
	}
}

func TestAdminUpsertByEmail(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	first, err := store.Admins().Upsert(ctx, storage.AdminUpsert{Email: "Admin@Example.org", PasswordHash: "h1", Name: "Admin"})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	second, err := store.Admins().Upsert(ctx, storage.AdminUpsert{Email: "admin@example.org", PasswordHash: "h2", Name: "Pastor"})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same admin row, got %d and %d", first.ID, second.ID)
	}
	if second.PasswordHash != "h2" || second.Name != "Pastor" {
		t.Fatalf("expected hash and name to be refreshed, got %+v", second)
	}
}

func newStore(t *testing.T) storage.Store {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "parish.db")

	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	return store
}

func closeStore(t *testing.T, store storage.Store) {
	t.Helper()
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func createAlbum(t *testing.T, store storage.Store, title string, d time.Time, eventType storage.EventType) storage.Album {
	t.Helper()
	album, err := store.Albums().Create(context.Background(), storage.AlbumCreate{
		Title:     title,
		Date:      d,
		EventType: eventType,
	})
	if err != nil {
		t.Fatalf("create album %q: %v", title, err)
	}
	return album
}

func assertCount(t *testing.T, store storage.Store, albumID int64, want int) {
	t.Helper()
	ctx := context.Background()

	album, err := store.Albums().GetByID(ctx, albumID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if album.PhotoCount != want {
		t.Fatalf("expected photo count %d, got %d", want, album.PhotoCount)
	}

	n, err := store.Photos().CountByAlbum(ctx, albumID)
	if err != nil {
		t.Fatalf("CountByAlbum returned error: %v", err)
	}
	if n != want {
		t.Fatalf("expected %d photo rows, got %d", want, n)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
