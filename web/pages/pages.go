// Package pages holds the public gallery pages. The markup lives in
// gallery.templ; run `go tool templ generate` after editing it.
package pages

import (
	"fmt"
	"net/url"

	"github.com/a-h/templ"

	"github.com/Oxyrus/parish/internal/gallery"
)

// GalleryData drives the album index page.
type GalleryData struct {
	ChurchName string
	Albums     []gallery.PublicAlbum
	// Type and Sort echo the active filter so the links can mark it.
	Type string
	Sort string
}

type AlbumData struct {
	ChurchName string
	Album      gallery.PublicAlbumDetail
}

var filters = []struct{ Value, Label string }{
	{"all", "All events"},
	{"weekly", "Weekly services"},
	{"special", "Special events"},
}

func pageTitle(churchName, title string) string {
	if churchName == "" {
		return title
	}
	return title + " | " + churchName
}

func filterURL(eventType, sort string) templ.SafeURL {
	return templ.URL("/gallery?type=" + url.QueryEscape(eventType) + "&sort=" + sortValue(sort))
}

func sortToggleURL(eventType, sort string) templ.SafeURL {
	next := "oldest"
	if sortValue(sort) == "oldest" {
		next = "newest"
	}
	return filterURL(typeValue(eventType), next)
}

func sortToggleLabel(sort string) string {
	if sortValue(sort) == "oldest" {
		return "Newest first"
	}
	return "Oldest first"
}

func albumURL(id int64) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/gallery/%d", id))
}

func meta(date string, photos int) string {
	return date + " · " + photoLabel(photos)
}

func caption(c *string) string {
	if c == nil {
		return ""
	}
	return *c
}

func photoLabel(n int) string {
	if n == 1 {
		return "1 photo"
	}
	return fmt.Sprintf("%d photos", n)
}

func sortValue(s string) string {
	if s == "oldest" {
		return s
	}
	return "newest"
}

func typeValue(t string) string {
	if t == "" {
		return "all"
	}
	return t
}
