// Package chart describes line charts and renders them to image files.
package chart

import (
	"strings"
	"time"
	"unicode"
)

// Point is one sample of a line.
type Point struct {
	Date  time.Time
	Value float64
}

// Line is a named series drawn on a chart.
type Line struct {
	Name   string
	Points []Point
}

// Annotation places Text at the given coordinates.
type Annotation struct {
	Date  time.Time
	Value float64
	Text  string
}

// Chart is a labeled line chart over dates. A zero XMin or XMax lets the
// renderer fit the axis to the data.
type Chart struct {
	Title       string
	XLabel      string
	YLabel      string
	XMin        time.Time
	XMax        time.Time
	Lines       []Line
	Annotations []Annotation
}

// Renderer turns a Chart into an artifact and returns where it went.
type Renderer interface {
	Render(c Chart) (string, error)
}

// Slug derives a file-system friendly name from a chart title.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "chart"
	}
	return slug
}
