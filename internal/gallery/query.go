package gallery

import (
	"context"
	"strings"
	"time"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/storage"
)

// PublicAlbum is the album shape served to anonymous visitors.
type PublicAlbum struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Date       string  `json:"date"`
	EventType  string  `json:"eventType"`
	CoverImage *string `json:"coverImage"`
	PhotoCount int     `json:"photoCount"`
}

type PublicPhoto struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Caption   *string   `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
}

type PublicAlbumDetail struct {
	PublicAlbum
	Photos []PublicPhoto `json:"photos"`
}

// Query is the read-only projection of the manager for public pages.
type Query struct {
	manager *Manager
}

func NewQuery(manager *Manager) *Query {
	return &Query{manager: manager}
}

func (q *Query) Albums(ctx context.Context, filter storage.AlbumFilter) ([]PublicAlbum, error) {
	albums, err := q.manager.ListAlbums(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]PublicAlbum, 0, len(albums))
	for _, album := range albums {
		out = append(out, toPublicAlbum(album))
	}
	return out, nil
}

func (q *Query) Album(ctx context.Context, id int64) (PublicAlbumDetail, error) {
	detail, err := q.manager.GetAlbum(ctx, id)
	if err != nil {
		return PublicAlbumDetail{}, err
	}

	photos := make([]PublicPhoto, 0, len(detail.Photos))
	for _, p := range detail.Photos {
		photos = append(photos, PublicPhoto{
			ID:        p.ID,
			URL:       p.URL,
			Caption:   p.Caption,
			CreatedAt: p.CreatedAt,
		})
	}

	return PublicAlbumDetail{
		PublicAlbum: toPublicAlbum(detail.Album),
		Photos:      photos,
	}, nil
}

func toPublicAlbum(a storage.Album) PublicAlbum {
	return PublicAlbum{
		ID:         a.ID,
		Title:      a.Title,
		Date:       a.Date.Format(storage.DateLayout),
		EventType:  string(a.EventType),
		CoverImage: a.CoverImage,
		PhotoCount: a.PhotoCount,
	}
}

// ParseFilter maps the "type" query value onto a listing filter. Empty and
// "all" match every album.
func ParseFilter(raw string) (storage.EventType, error) {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "", "all":
		return "", nil
	default:
		t := storage.EventType(v)
		if !t.Valid() {
			return "", apperr.BadRequest("type must be all, weekly or special")
		}
		return t, nil
	}
}

// ParseOrder maps the "sort" query value onto a date ordering, newest first
// by default.
func ParseOrder(raw string) (storage.AlbumOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "newest":
		return storage.NewestFirst, nil
	case "oldest":
		return storage.OldestFirst, nil
	default:
		return storage.NewestFirst, apperr.BadRequest("sort must be newest or oldest")
	}
}
