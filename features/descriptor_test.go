package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Descriptor
		want int
	}{
		{"identical", Descriptor{0xAA, 0x55}, Descriptor{0xAA, 0x55}, 0},
		{"one bit", Descriptor{0x00, 0x00}, Descriptor{0x01, 0x00}, 1},
		{"all bits", Descriptor{0x00, 0x00}, Descriptor{0xFF, 0xFF}, 16},
		{"length mismatch", Descriptor{0x0F}, Descriptor{0x0F, 0x03}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Distance(tt.b))
			assert.Equal(t, tt.want, tt.b.Distance(tt.a), "distance must be symmetric")
		})
	}
}

func TestNewDescriptorSet(t *testing.T) {
	set, err := NewDescriptorSet([]Descriptor{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Length)
	assert.Equal(t, 2, set.Len())

	_, err = NewDescriptorSet([]Descriptor{{1, 2}, {3}})
	assert.Error(t, err)

	empty, err := NewDescriptorSet(nil)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func TestDescriptorSetMatRoundTrip(t *testing.T) {
	set, err := NewDescriptorSet([]Descriptor{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	mat, err := set.ToMat()
	require.NoError(t, err)
	defer mat.Close()
	assert.Equal(t, 2, mat.Rows())
	assert.Equal(t, 3, mat.Cols())

	back, err := descriptorSetFromMat(mat)
	require.NoError(t, err)
	assert.Equal(t, set, back)
}
