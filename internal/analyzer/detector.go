package analyzer

import "image"

// Detector finds raw, role-untagged elements in an image. Roles and ids are
// assigned afterwards by ClassifyElements.
type Detector interface {
	Detect(img image.Image) ([]Element, error)
}
