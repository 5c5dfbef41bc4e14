// Package plyio writes the PLY alternative output format, offered
// alongside lasio for tooling that doesn't speak LAS. Field ordering
// follows the same irradiance extra-field layout as the LAS writer,
// surfaced here as plain PLY properties with a small explicit
// ASCII-header writer since PLY headers are themselves plain text.
package plyio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

// Format selects the PLY body encoding.
type Format int

const (
	ASCII Format = iota
	BinaryBigEndian
)

// Properties this writer emits, in order, after x/y/z.
var Properties = []string{"irradiance", "beam_component", "diffuse_component", "insolation_times"}

// Writer appends points.Point plus their ExtraRecord fields as PLY vertex
// properties. The final property, insolation_times, is written as a uint32
// rounded from the accumulated sun hours rather than a float.
type Writer struct {
	f        *os.File
	bw       *bufio.Writer
	format   Format
	count    int
	vertices [][]float64 // buffered: PLY needs the vertex count up front
	points   []points.Point
}

func NewWriter(path string, format Format) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, bw: bufio.NewWriter(f), format: format}, nil
}

func (w *Writer) WritePoint(p points.Point, extra points.ExtraRecord) error {
	fields := make([]float64, len(Properties))
	copy(fields, extra.Fields)
	w.points = append(w.points, p)
	w.vertices = append(w.vertices, fields)
	w.count++
	return nil
}

func (w *Writer) Close() error {
	if err := w.writeHeader(); err != nil {
		w.f.Close()
		return err
	}
	switch w.format {
	case ASCII:
		if err := w.writeASCIIBody(); err != nil {
			w.f.Close()
			return err
		}
	default:
		if err := w.writeBinaryBody(); err != nil {
			w.f.Close()
			return err
		}
	}
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

func (w *Writer) writeHeader() error {
	formatLine := "ascii 1.0"
	if w.format == BinaryBigEndian {
		formatLine = "binary_big_endian 1.0"
	}
	fmt.Fprintf(w.bw, "ply\nformat %s\n", formatLine)
	fmt.Fprintf(w.bw, "element vertex %d\n", w.count)
	fmt.Fprint(w.bw, "property double x\nproperty double y\nproperty double z\n")
	for _, p := range Properties[:len(Properties)-1] {
		fmt.Fprintf(w.bw, "property double %s\n", p)
	}
	fmt.Fprintf(w.bw, "property uint32 %s\n", Properties[len(Properties)-1])
	fmt.Fprint(w.bw, "end_header\n")
	return nil
}

func (w *Writer) writeASCIIBody() error {
	for i, p := range w.points {
		f := w.vertices[i]
		fmt.Fprintf(w.bw, "%g %g %g", p.X, p.Y, p.Z)
		for _, v := range f[:len(f)-1] {
			fmt.Fprintf(w.bw, " %g", v)
		}
		fmt.Fprintf(w.bw, " %d\n", uint32(math.Round(f[len(f)-1])))
	}
	return nil
}

func (w *Writer) writeBinaryBody() error {
	for i, p := range w.points {
		f := w.vertices[i]
		buf := make([]byte, 8*3+8*(len(f)-1)+4)
		off := 0
		putF64BE(buf[off:], p.X)
		off += 8
		putF64BE(buf[off:], p.Y)
		off += 8
		putF64BE(buf[off:], p.Z)
		off += 8
		for _, v := range f[:len(f)-1] {
			putF64BE(buf[off:], v)
			off += 8
		}
		binary.BigEndian.PutUint32(buf[off:], uint32(math.Round(f[len(f)-1])))
		if _, err := w.bw.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func putF64BE(b []byte, v float64) {
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
}
