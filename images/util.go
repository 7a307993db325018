package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"gocv.io/x/gocv"
)

// ComputeMatChecksum generates a deterministic checksum for a Mat. Two Mats
// with the same shape and pixels produce the same checksum.
//
// Arguments:
// - mat: The Mat to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for an empty Mat.
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	hash := md5.New()
	var shape [12]byte
	binary.LittleEndian.PutUint32(shape[0:], uint32(mat.Rows()))
	binary.LittleEndian.PutUint32(shape[4:], uint32(mat.Cols()))
	binary.LittleEndian.PutUint32(shape[8:], uint32(mat.Type()))
	hash.Write(shape[:])
	hash.Write(mat.ToBytes())
	return fmt.Sprintf("%x", hash.Sum(nil))
}
