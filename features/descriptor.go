package features

import (
	"fmt"
	"math/bits"

	"gocv.io/x/gocv"
)

// Descriptor is a fixed-length binary signature of one keypoint.
type Descriptor []byte

// Distance returns the Hamming distance (number of differing bits) to other.
// Descriptors of different lengths are compared over the shorter prefix plus
// every bit of the remainder.
func (d Descriptor) Distance(other Descriptor) int {
	n := len(d)
	if len(other) < n {
		n = len(other)
	}
	dist := 0
	for i := 0; i < n; i++ {
		dist += bits.OnesCount8(d[i] ^ other[i])
	}
	for _, b := range d[n:] {
		dist += bits.OnesCount8(b)
	}
	for _, b := range other[n:] {
		dist += bits.OnesCount8(b)
	}
	return dist
}

// DescriptorSet is the ordered descriptor list of one image, aligned by index
// with its Keypoints.
type DescriptorSet struct {
	// Length is the number of bytes per descriptor.
	Length int
	// Descriptors holds one entry per keypoint.
	Descriptors []Descriptor
}

// NewDescriptorSet builds a set from descriptors that must all share the same
// length.
func NewDescriptorSet(descriptors []Descriptor) (DescriptorSet, error) {
	if len(descriptors) == 0 {
		return DescriptorSet{}, nil
	}
	length := len(descriptors[0])
	for i, d := range descriptors {
		if len(d) != length {
			return DescriptorSet{}, fmt.Errorf("descriptor %d has %d bytes, want %d", i, len(d), length)
		}
	}
	return DescriptorSet{Length: length, Descriptors: descriptors}, nil
}

// Len returns the number of descriptors.
func (s DescriptorSet) Len() int {
	return len(s.Descriptors)
}

// Empty reports whether the set has no descriptors.
func (s DescriptorSet) Empty() bool {
	return len(s.Descriptors) == 0
}

// ToMat packs the set into an N x Length CV_8U Mat. The caller must Close it.
func (s DescriptorSet) ToMat() (gocv.Mat, error) {
	if s.Empty() {
		return gocv.NewMat(), nil
	}
	flat := make([]byte, 0, s.Len()*s.Length)
	for _, d := range s.Descriptors {
		flat = append(flat, d...)
	}
	return gocv.NewMatFromBytes(s.Len(), s.Length, gocv.MatTypeCV8U, flat)
}

// descriptorSetFromMat copies the rows of an N x L CV_8U Mat.
func descriptorSetFromMat(mat gocv.Mat) (DescriptorSet, error) {
	if mat.Empty() {
		return DescriptorSet{}, nil
	}
	if mat.Type() != gocv.MatTypeCV8U {
		return DescriptorSet{}, fmt.Errorf("descriptor mat has type %v, want CV_8U", mat.Type())
	}

	rows, cols := mat.Rows(), mat.Cols()
	data := mat.ToBytes()
	if len(data) != rows*cols {
		return DescriptorSet{}, fmt.Errorf("descriptor mat holds %d bytes, want %d", len(data), rows*cols)
	}

	descriptors := make([]Descriptor, rows)
	for r := 0; r < rows; r++ {
		d := make(Descriptor, cols)
		copy(d, data[r*cols:(r+1)*cols])
		descriptors[r] = d
	}
	return DescriptorSet{Length: cols, Descriptors: descriptors}, nil
}
