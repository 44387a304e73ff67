package media

import (
	"image"

	"github.com/disintegration/imaging"
)

type transform func(image.Image) *image.NRGBA

// transforms lists the steps applied for each EXIF orientation, first step first.
// imaging.Rotate90 turns counter-clockwise, imaging.Rotate270 turns clockwise.
var transforms = map[uint32][]transform{
	2: {imaging.FlipH},
	3: {imaging.Rotate180},
	4: {imaging.FlipH, imaging.Rotate180},
	5: {imaging.FlipH, imaging.Rotate270},
	6: {imaging.Rotate270},
	7: {imaging.FlipH, imaging.Rotate90},
	8: {imaging.Rotate90},
}

// Normalize returns an upright copy of img for the given orientation code.
// Codes 0, 1 and anything out of range are the identity. If a step yields an empty
// image the untransformed buffer is returned instead.
func Normalize(img image.Image, orientation uint32) *image.NRGBA {
	src := imaging.Clone(img)

	steps, ok := transforms[orientation]
	if !ok {
		return src
	}

	out := src
	for _, step := range steps {
		next := step(out)
		if next == nil || next.Bounds().Empty() {
			return src
		}
		out = next
	}
	return out
}
