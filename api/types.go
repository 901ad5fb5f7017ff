package api

import (
	"fmt"
	"time"

	"github.com/Skryldev/recipebook/recipe"
)

// Recipe is the JSON view of a recipe. The image itself is served by the
// image route.
type Recipe struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Difficulty  string `json:"difficulty"`
	DateAdded   string `json:"date_added"`
	ImageURL    string `json:"image_url"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`
}

func toAPI(r *recipe.Recipe) Recipe {
	out := Recipe{
		ID:         r.ID,
		Title:      r.Title,
		Author:     r.Author,
		Difficulty: string(r.Difficulty),
		DateAdded:  r.DateAdded.UTC().Format(time.RFC3339),
		ImageURL:   fmt.Sprintf("/recipes/v1/%d/image", r.ID),
	}
	if r.Image != nil {
		b := r.Image.Bounds()
		out.ImageWidth, out.ImageHeight = b.Dx(), b.Dy()
	}
	return out
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Empty means
// "now" and is left to the service.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date_added must be YYYY-MM-DD or RFC 3339: %q", s)
	}
	return t, nil
}
