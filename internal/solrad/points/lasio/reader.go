// Package lasio implements the LAS point-cloud codec: a streaming binary
// reader over the LAS public header block and uncompressed point records,
// and a writer that emits the PCSRT run-parameter VLR and an Extra Bytes
// VLR. LAZ (compressed) point data is neither decompressed nor written.
//
// LAS 1.2+ PUBLIC HEADER BLOCK (fields this reader uses):
//
//	Offset  Size  Field
//	  96     4    Offset to point data
//	 100     4    Number of variable length records
//	104/107  1    Point data record format (byte 104 in 1.0-1.3, relocated
//	              in 1.4, but this reader only targets 1.2/1.3 layouts)
//	105      2    Point data record length
//	107      4    Legacy number of point records
//	131     24    X/Y/Z scale factors (3 x float64)
//	155     24    X/Y/Z offsets (3 x float64)
//
// POINT DATA RECORD (formats 0-3, the subset this reader decodes):
//
//	Offset  Size  Field
//	  0      4    X (int32, scaled/offset per header)
//	  4      4    Y (int32)
//	  8      4    Z (int32)
//	 12      2    Intensity (uint16)
//	 14      1    Return number / flags bitfield
//	 15      1    Classification
//	 16      1    Scan angle rank
//	 17      1    User data
//	 18      2    Point source ID
//	 20      8    GPS time (formats 1 and 3 only)
package lasio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

const (
	headerOffsetToPointData   = 96
	headerOffsetPointFormat   = 104
	headerOffsetPointRecLen   = 105
	headerOffsetPointCount    = 107
	headerOffsetScale         = 131
	headerOffsetOffset        = 155
	minHeaderSize             = 227
)

// Header is the subset of the LAS public header block the pipeline needs to
// interpret point records and to build an output header that mirrors the
// input's scale/offset.
type Header struct {
	PointDataFormat   uint8
	PointRecordLength uint16
	PointCount        uint32
	OffsetToPointData uint32
	ScaleX, ScaleY, ScaleZ float64
	OffX, OffY, OffZ       float64
}

func readHeader(r io.Reader) (Header, error) {
	buf := make([]byte, minHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("read LAS header: %w", err)
	}

	h := Header{
		OffsetToPointData: binary.LittleEndian.Uint32(buf[headerOffsetToPointData:]),
		PointDataFormat:   buf[headerOffsetPointFormat] & 0x7F,
		PointRecordLength: binary.LittleEndian.Uint16(buf[headerOffsetPointRecLen:]),
		PointCount:        binary.LittleEndian.Uint32(buf[headerOffsetPointCount:]),
		ScaleX:            asFloat64(buf[headerOffsetScale:]),
		ScaleY:            asFloat64(buf[headerOffsetScale+8:]),
		ScaleZ:            asFloat64(buf[headerOffsetScale+16:]),
		OffX:              asFloat64(buf[headerOffsetOffset:]),
		OffY:              asFloat64(buf[headerOffsetOffset+8:]),
		OffZ:              asFloat64(buf[headerOffsetOffset+16:]),
	}
	return h, nil
}

func asFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// Reader streams decoded points from an open uncompressed LAS file. It
// implements points.Reader. It does not decompress LAZ point data.
type Reader struct {
	f      *os.File
	br     *bufio.Reader
	header Header
	read   uint32
}

// Open opens path and reads its header, positioning the stream at the
// first point record.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(f, 1<<20)
	h, err := readHeader(br)
	if err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.Seek(int64(h.OffsetToPointData), io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	br.Reset(f)
	return &Reader{f: f, br: br, header: h}, nil
}

func (r *Reader) Header() Header { return r.header }

// Read decodes the next point record, returning io.EOF once PointCount
// records have been consumed.
func (r *Reader) Read() (points.Point, error) {
	if r.read >= r.header.PointCount {
		return points.Point{}, io.EOF
	}
	rec := make([]byte, r.header.PointRecordLength)
	if _, err := io.ReadFull(r.br, rec); err != nil {
		return points.Point{}, fmt.Errorf("read LAS point record %d: %w", r.read, err)
	}
	r.read++

	xi := int32(binary.LittleEndian.Uint32(rec[0:4]))
	yi := int32(binary.LittleEndian.Uint32(rec[4:8]))
	zi := int32(binary.LittleEndian.Uint32(rec[8:12]))

	p := points.Point{
		X:              float64(xi)*r.header.ScaleX + r.header.OffX,
		Y:              float64(yi)*r.header.ScaleY + r.header.OffY,
		Z:              float64(zi)*r.header.ScaleZ + r.header.OffZ,
		Intensity:      binary.LittleEndian.Uint16(rec[12:14]),
		Classification: rec[15],
	}

	if hasGPSTime(r.header.PointDataFormat) && len(rec) >= 28 {
		p.GPSTime = asFloat64(rec[20:28])
	}

	return p, nil
}

func (r *Reader) Close() error {
	return r.f.Close()
}

func hasGPSTime(format uint8) bool {
	switch format {
	case 1, 3, 4, 5, 6, 7, 8, 9, 10:
		return true
	default:
		return false
	}
}

// Source opens fresh Readers over the same path, reopened once per pass
// (extent/density sampling, then the voxelization pass).
type Source struct {
	Path string
}

func (s Source) Open() (points.Reader, error) {
	return Open(s.Path)
}
