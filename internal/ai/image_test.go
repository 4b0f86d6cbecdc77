package ai

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kcald/internal/structures"
)

func newNormalizer(maxDim, maxBytes int) *ImageNormalizer {
	return NewImageNormalizer(&structures.Config{
		Ai: structures.AiConfig{MaxImageDim: maxDim, MaxImageBytes: maxBytes},
	})
}

func solidJPEG(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 180, G: 140, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func noisyPNG(t *testing.T, w, h int) []byte {
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format, "output is always JPEG")
	return cfg.Width, cfg.Height
}

func TestNormalize_SmallImagePassesThrough(t *testing.T) {
	n := newNormalizer(1024, 512<<10)

	out, err := n.Normalize(solidJPEG(t, 200, 150))
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)
	assert.LessOrEqual(t, len(out), 512<<10)
}

func TestNormalize_LargeImageScaledDown(t *testing.T) {
	n := newNormalizer(256, 512<<10)

	out, err := n.Normalize(solidJPEG(t, 1200, 800))
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 256, w, "longer side clamped to maxDim")
	assert.Equal(t, 170, h, "aspect ratio preserved")
}

func TestNormalize_PortraitOrientation(t *testing.T) {
	n := newNormalizer(256, 512<<10)

	out, err := n.Normalize(solidJPEG(t, 400, 1600))
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 256, h)
	assert.Equal(t, 64, w)
}

func TestNormalize_PNGInput(t *testing.T) {
	n := newNormalizer(1024, 512<<10)

	out, err := n.Normalize(noisyPNG(t, 300, 300))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 512<<10)
}

func TestNormalize_ByteBudgetForcesShrink(t *testing.T) {
	n := newNormalizer(1024, 16<<10)

	// Random noise defeats JPEG compression, so the normalizer has to
	// drop quality and then dimensions to fit 16KB.
	out, err := n.Normalize(noisyPNG(t, 800, 800))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 16<<10)

	w, h := decodeDims(t, out)
	assert.Less(t, w, 800)
	assert.Less(t, h, 800)
}

func TestNormalize_ImpossibleBudget(t *testing.T) {
	n := newNormalizer(1024, 16)

	_, err := n.Normalize(solidJPEG(t, 500, 500))
	assert.Error(t, err)
}

func TestNormalize_NotAnImage(t *testing.T) {
	n := newNormalizer(1024, 512<<10)

	_, err := n.Normalize([]byte("definitely not pixels"))
	assert.Error(t, err)
}
