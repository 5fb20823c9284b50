package analyzer

import "image"

// Kind is what the detector saw.
type Kind string

const (
	KindText        Kind = "text"
	KindBackground  Kind = "background"
	KindVisualOther Kind = "visual-other"
)

// Role is the narrative function of an element, recomputed by the classifier.
type Role string

const (
	RoleTitle      Role = "title"
	RoleStat       Role = "stat"
	RoleCTA        Role = "cta"
	RoleBody       Role = "body"
	RoleBackground Role = "background"
)

// Rect is a rectangle in source-image pixel space.
type Rect struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// RectFrom converts an image.Rectangle.
func RectFrom(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Image returns r as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Malformed reports a rectangle with negative extent.
func (r Rect) Malformed() bool {
	return r.Width < 0 || r.Height < 0
}

// Element is a detected region of the source image.
type Element struct {
	ID         int     `yaml:"id" json:"id"`
	Kind       Kind    `yaml:"kind" json:"kind"`
	Content    string  `yaml:"content" json:"content"`
	Position   Rect    `yaml:"position" json:"position"`
	Role       Role    `yaml:"semantic_role" json:"semanticRole"`
	Confidence float64 `yaml:"confidence" json:"detectionConfidence"`
}

// ImageMeta carries the source dimensions the classifier needs.
type ImageMeta struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// MetaOf reads dimensions from an image.
func MetaOf(img image.Image) ImageMeta {
	b := img.Bounds()
	return ImageMeta{Width: b.Dx(), Height: b.Dy()}
}
