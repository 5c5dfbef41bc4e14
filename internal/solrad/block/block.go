// Package block implements the block iterator: the point cloud is
// partitioned into a grid of x/y tiles, each carrying an overlap halo and a
// per-block origin translation for numerical stability.
package block

import (
	"errors"
	"io"
	"math"

	"github.com/hblyp/pcsrt-go/internal/solrad/extent"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

// Params controls block size and overlap. Size == 0 means "process the
// whole cloud as one block".
type Params struct {
	Size    float64
	Overlap float64
}

// Translation is the per-block origin shift applied to every point before
// it is pushed into the block.
type Translation struct {
	X, Y, Z float64
}

// Block is one tile of the point cloud: its bounding box, its optional
// overlap halo, whether it is a border block, and the (translated,
// millimetre-trimmed) points that fall inside it.
type Block struct {
	Number, Count  int
	Translation    Translation
	Points         []points.Point
	OverlapFlags   []bool // parallel to Points: true if the point is only in the overlap halo
	rightEdge      bool
	topEdge        bool
	minX, minY     float64
	maxX, maxY     float64
	hasOverlap     bool
	overlapMinX    float64
	overlapMinY    float64
	overlapMaxX    float64
	overlapMaxY    float64
}

func newBlock(size, overlap float64, i, j, xBlocks, yBlocks int, ext extent.Extent) *Block {
	minX := ext.MinX + float64(i)*size
	minY := ext.MinY + float64(j)*size
	maxX := minX + size
	maxY := minY + size

	b := &Block{
		Count:       xBlocks * yBlocks,
		Number:      i*yBlocks + j + 1,
		Translation: Translation{X: math.Floor(minX), Y: math.Floor(minY), Z: math.Floor(ext.MinZ)},
		rightEdge:   i == xBlocks-1,
		topEdge:     j == yBlocks-1,
		minX:        minX, minY: minY, maxX: maxX, maxY: maxY,
	}
	if overlap > 0 {
		b.hasOverlap = true
		b.overlapMinX, b.overlapMinY = minX-overlap, minY-overlap
		b.overlapMaxX, b.overlapMaxY = maxX+overlap, maxY+overlap
	}
	return b
}

func (b *Block) isInBlock(x, y float64) bool {
	left := x >= b.minX
	bottom := y >= b.minY
	right := x <= b.maxX
	if !b.rightEdge {
		right = x < b.maxX
	}
	top := y <= b.maxY
	if !b.topEdge {
		top = y < b.maxY
	}
	return left && bottom && right && top
}

func (b *Block) isInOverlapBlock(x, y float64) bool {
	if !b.hasOverlap {
		return b.isInBlock(x, y)
	}
	return x >= b.overlapMinX && y >= b.overlapMinY && x <= b.overlapMaxX && y <= b.overlapMaxY
}

func trimDecimals(v float64, n int) float64 {
	coef := math.Pow(10, float64(n))
	return math.Round(v*coef) / coef
}

func (b *Block) pushPoint(p points.Point) {
	if !b.isInOverlapBlock(p.X, p.Y) {
		return
	}
	overlap := !b.isInBlock(p.X, p.Y)
	p.X = trimDecimals(p.X-b.Translation.X, 3)
	p.Y = trimDecimals(p.Y-b.Translation.Y, 3)
	p.Z = trimDecimals(p.Z-b.Translation.Z, 3)
	b.Points = append(b.Points, p)
	b.OverlapFlags = append(b.OverlapFlags, overlap)
}

// Iterate calls fn once per block, opening a fresh Reader from src for each
// block rather than holding one Reader open across the whole partition.
// Iteration stops and returns the first error from fn or from reading.
func Iterate(src points.Source, ext extent.Extent, params Params, fn func(*Block) error) error {
	size := params.Size
	if size <= 0 {
		xDim, yDim, _ := ext.Dimensions()
		size = math.Max(xDim, yDim)
		if size <= 0 {
			size = 1
		}
	}
	xLen, yLen, _ := ext.Dimensions()
	xBlocks := int(math.Ceil(xLen / size))
	yBlocks := int(math.Ceil(yLen / size))
	if xBlocks < 1 {
		xBlocks = 1
	}
	if yBlocks < 1 {
		yBlocks = 1
	}

	for i := 0; i < xBlocks; i++ {
		for j := 0; j < yBlocks; j++ {
			b := newBlock(size, params.Overlap, i, j, xBlocks, yBlocks, ext)

			r, err := src.Open()
			if err != nil {
				return err
			}
			for {
				p, err := r.Read()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					r.Close()
					return err
				}
				b.pushPoint(p)
			}
			r.Close()

			if err := fn(b); err != nil {
				return err
			}
		}
	}
	return nil
}
