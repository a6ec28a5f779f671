package capture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer img.Close()

	path := filepath.Join(t.TempDir(), "people.png")
	require.True(t, gocv.IMWrite(path, img))
	return path
}

func TestOpenImage_YieldsExactlyOneFrame(t *testing.T) {
	src, err := OpenImage(writeTestImage(t))
	require.NoError(t, err)
	defer src.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	require.True(t, src.Next(&frame))
	assert.Equal(t, 48, frame.Rows())
	assert.Equal(t, 64, frame.Cols())

	assert.False(t, src.Next(&frame))
	assert.False(t, src.Next(&frame))
	assert.Equal(t, WaitForKey, src.Delay())
}

func TestOpenImage_Unreadable(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.jpg") }},
		{"not an image", func(t *testing.T) string {
			path := filepath.Join(t.TempDir(), "notes.jpg")
			require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))
			return path
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := OpenImage(tt.path(t))
			assert.ErrorIs(t, err, ErrUnreadableImage)
			assert.Nil(t, src)
		})
	}
}

func TestOpenVideo_MissingFile(t *testing.T) {
	src, err := OpenVideo(filepath.Join(t.TempDir(), "missing.mp4"))
	assert.ErrorIs(t, err, ErrUnopenableVideo)
	assert.Nil(t, src)
}
