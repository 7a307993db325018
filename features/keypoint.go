// Package features detects ORB keypoints in a normalized image and computes
// one binary descriptor per keypoint.
package features

import (
	"github.com/chewxy/math32"
	"gocv.io/x/gocv"
)

// Keypoint is a detected interest point.
type Keypoint struct {
	// X is the column of the keypoint centre.
	X float32 `json:"x"`
	// Y is the row of the keypoint centre.
	Y float32 `json:"y"`
	// Size is the diameter of the meaningful neighbourhood.
	Size float32 `json:"size"`
	// Angle is the orientation in degrees, [0, 360). -1 if not applicable.
	Angle float32 `json:"angle"`
	// Response is the detector score used for ranking.
	Response float32 `json:"response"`
	// Octave is the pyramid level the keypoint was found at.
	Octave int `json:"octave"`
}

// Direction returns the unit vector of the keypoint orientation.
func (k Keypoint) Direction() (dx, dy float32) {
	if k.Angle < 0 {
		return 1, 0
	}
	rad := k.Angle * math32.Pi / 180
	return math32.Cos(rad), math32.Sin(rad)
}

func fromGoCV(kp gocv.KeyPoint) Keypoint {
	return Keypoint{
		X:        float32(kp.X),
		Y:        float32(kp.Y),
		Size:     float32(kp.Size),
		Angle:    float32(kp.Angle),
		Response: float32(kp.Response),
		Octave:   kp.Octave,
	}
}

// Keypoints is the ordered keypoint list of one image.
type Keypoints []Keypoint

