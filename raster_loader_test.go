package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeRasters(t *testing.T, pan *PanopticRaster, conf *ConfidenceRaster) ([]byte, []byte) {
	t.Helper()
	var panBuf, confBuf bytes.Buffer
	require.NoError(t, EncodePanopticPNG(&panBuf, pan))
	require.NoError(t, EncodeConfidencePNG(&confBuf, conf))
	return panBuf.Bytes(), confBuf.Bytes()
}

func TestPanopticPNG_LabelEncoding(t *testing.T) {
	pan, err := PanopticRasterFromRows([][]int{
		{0, room1, int(NewPanopticID(LabelRoom, 200))},
		{wall, door1, int(NewPanopticID(LabelDoor, 255))},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodePanopticPNG(&buf, pan))

	decoded, err := DecodePanopticPNG(&buf)
	require.NoError(t, err)
	assert.Equal(t, pan.Width, decoded.Width)
	assert.Equal(t, pan.Height, decoded.Height)
	assert.Equal(t, pan.IDs, decoded.IDs)
}

func TestConfidencePNG_Precision(t *testing.T) {
	conf, err := ConfidenceRasterFromRows([][]float64{
		{0, 0.25, 0.5},
		{0.999, 1, 1.5},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeConfidencePNG(&buf, conf))
	decoded, err := DecodeConfidencePNG(&buf)
	require.NoError(t, err)

	want := []float64{0, 0.25, 0.5, 0.999, 1, 1}
	for i, v := range want {
		assert.InDelta(t, v, decoded.Values[i], 1e-4, "pixel %d", i)
	}
}

func TestReadSegmentation(t *testing.T) {
	pan, conf := rasters(t,
		[][]int{{room1, door1, room2}},
		[][]float64{{0.5, 0.5, 0.5}})
	panPNG, confPNG := encodeRasters(t, pan, conf)

	gotPan, gotConf, err := ReadSegmentation(context.Background(), bytes.NewReader(panPNG), bytes.NewReader(confPNG))
	require.NoError(t, err)
	assert.Equal(t, pan.IDs, gotPan.IDs)
	assert.Equal(t, 3, gotConf.Width)

	t.Run("size mismatch", func(t *testing.T) {
		_, otherConf := encodeRasters(t, pan, NewConfidenceRaster(2, 2))
		_, _, err := ReadSegmentation(context.Background(), bytes.NewReader(panPNG), bytes.NewReader(otherConf))
		require.ErrorIs(t, err, ErrRasterMismatch)
	})

	t.Run("not a png", func(t *testing.T) {
		_, _, err := ReadSegmentation(context.Background(), strings.NewReader("nope"), bytes.NewReader(confPNG))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode panoptic png")
	})
}

func TestLoadSegmentation(t *testing.T) {
	pan, conf := rasters(t,
		[][]int{{room1, room1}, {door1, door1}},
		[][]float64{{0.1, 0.9}, {0.4, 0.3}})
	panPNG, confPNG := encodeRasters(t, pan, conf)

	dir := t.TempDir()
	panPath := filepath.Join(dir, "plan_panoptic.png")
	confPath := filepath.Join(dir, "plan_confidence.png")
	require.NoError(t, os.WriteFile(panPath, panPNG, 0o644))
	require.NoError(t, os.WriteFile(confPath, confPNG, 0o644))

	gotPan, gotConf, err := LoadSegmentation(context.Background(), panPath, confPath)
	require.NoError(t, err)

	g, _, err := DetectGraph(gotPan, gotConf, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{room1, door1}, g.NodeIDs())
	n, _ := g.Node(room1)
	assert.Equal(t, &Point{X: 1, Y: 0}, n.Center)

	_, _, err = LoadSegmentation(context.Background(), filepath.Join(dir, "missing.png"), confPath)
	require.Error(t, err)
}
