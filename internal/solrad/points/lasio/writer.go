package lasio

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"

	"github.com/hblyp/pcsrt-go/internal/solrad/extent"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

// Extra Bytes VLR (user ID "LASF_Spec", record id 4): one 192-byte record
// per extra field.
const (
	extraBytesUserID    = "LASF_Spec"
	extraBytesRecordID  = 4
	extraBytesRecLen    = 192
	extraBytesDataType  = 10 // float64

	pcsrtUserID   = "PCSRT"
	pcsrtRecordID = 65000
)

// OutputFields lists the per-point extra fields this writer appends after
// the standard LAS fields, in order. Writer.WritePoint expects
// points.ExtraRecord.Fields to carry exactly these values in this order.
var OutputFields = []string{
	"irradiance",
	"beam_component",
	"diffuse_component",
	"insolation_times",
}

// Writer emits an extended LAS 1.2 point cloud: standard X/Y/Z/intensity/
// classification fields plus the OutputFields extra bytes, and a PCSRT VLR
// carrying the run's cloud parameters (voxel size, point count, average
// points per voxel, and the point cloud's extent).
type Writer struct {
	f          *os.File
	bw         *bufio.Writer
	scale      float64
	offX, offY, offZ float64
	recordLen  int
	written    uint32
	headerPos  int64
}

// NewWriter creates path and writes a placeholder header, the Extra Bytes
// VLR and the PCSRT VLR, positioning the stream to receive point records.
// cloudParams is written verbatim into the PCSRT VLR as nine float64s:
// voxelSize, pointCount, averageInVoxel, min x/y/z, max x/y/z.
func NewWriter(path string, ext extent.Extent, voxelSize, pointCount, averageInVoxel float64) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriterSize(f, 1<<20)

	scale := 0.001
	offX := math.Floor(ext.MinX)
	offY := math.Floor(ext.MinY)
	offZ := math.Floor(ext.MinZ)

	const standardRecLen = 20 // x,y,z,intensity,flags,classification,scan_angle,user_data,point_source_id
	recordLen := standardRecLen + 8*len(OutputFields)

	w := &Writer{
		f: f, bw: bw,
		scale: scale, offX: offX, offY: offY, offZ: offZ,
		recordLen: recordLen,
	}

	if err := w.writeHeaderPlaceholder(); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.writeExtraBytesVLR(); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.writePCSRTVLR(ext, voxelSize, pointCount, averageInVoxel); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeaderPlaceholder() error {
	hdr := make([]byte, minHeaderSize)
	copy(hdr[0:4], []byte("LASF"))
	hdr[24] = 1 // version major
	hdr[25] = 2 // version minor
	binary.LittleEndian.PutUint32(hdr[96:], 0) // patched in Close
	binary.LittleEndian.PutUint32(hdr[100:], 2) // num VLRs: extra bytes + pcsrt
	hdr[104] = 0                                 // point data format 0 (RGB-less base + extra bytes)
	binary.LittleEndian.PutUint16(hdr[105:], uint16(w.recordLen))
	binary.LittleEndian.PutUint32(hdr[107:], 0) // patched in Close
	putFloat64(hdr[131:], w.scale)
	putFloat64(hdr[139:], w.scale)
	putFloat64(hdr[147:], w.scale)
	putFloat64(hdr[155:], w.offX)
	putFloat64(hdr[163:], w.offY)
	putFloat64(hdr[171:], w.offZ)
	_, err := w.bw.Write(hdr)
	return err
}

func putFloat64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}

func (w *Writer) writeExtraBytesVLR() error {
	vlrHeaderLen := 54
	n := len(OutputFields)
	if err := writeVLRHeader(w.bw, extraBytesUserID, extraBytesRecordID, uint16(n*extraBytesRecLen)); err != nil {
		return err
	}
	_ = vlrHeaderLen
	for _, name := range OutputFields {
		rec := make([]byte, extraBytesRecLen)
		rec[0] = 0 // reserved
		rec[2] = extraBytesDataType
		copy(rec[4:], padName(name, 32))
		// rec[36:40] no_data bit unset; remaining reserved/min/max/scale/offset left zero
		if _, err := w.bw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writePCSRTVLR(ext extent.Extent, voxelSize, pointCount, averageInVoxel float64) error {
	vals := []float64{voxelSize, pointCount, averageInVoxel, ext.MinX, ext.MinY, ext.MinZ, ext.MaxX, ext.MaxY, ext.MaxZ}
	if err := writeVLRHeader(w.bw, pcsrtUserID, pcsrtRecordID, uint16(8*len(vals))); err != nil {
		return err
	}
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		putFloat64(buf[i*8:], v)
	}
	_, err := w.bw.Write(buf)
	return err
}

func writeVLRHeader(bw *bufio.Writer, userID string, recordID uint16, dataLen uint16) error {
	h := make([]byte, 54)
	binary.LittleEndian.PutUint16(h[0:], 0xAABB) // reserved
	copy(h[2:18], padName(userID, 16))
	binary.LittleEndian.PutUint16(h[18:], recordID)
	binary.LittleEndian.PutUint16(h[20:], dataLen)
	_, err := bw.Write(h)
	return err
}

func padName(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

// WritePoint appends one point and its extra fields (ExtraRecord.Fields
// must have len(OutputFields) entries, in that order).
func (w *Writer) WritePoint(p points.Point, extra points.ExtraRecord) error {
	rec := make([]byte, w.recordLen)
	xi := int32(math.Round((p.X - w.offX) / w.scale))
	yi := int32(math.Round((p.Y - w.offY) / w.scale))
	zi := int32(math.Round((p.Z - w.offZ) / w.scale))
	binary.LittleEndian.PutUint32(rec[0:], uint32(xi))
	binary.LittleEndian.PutUint32(rec[4:], uint32(yi))
	binary.LittleEndian.PutUint32(rec[8:], uint32(zi))
	binary.LittleEndian.PutUint16(rec[12:], p.Intensity)
	rec[15] = p.Classification

	off := 20
	for i := range OutputFields {
		var v float64
		if i < len(extra.Fields) {
			v = extra.Fields[i]
		}
		putFloat64(rec[off+i*8:], v)
	}

	if _, err := w.bw.Write(rec); err != nil {
		return err
	}
	w.written++
	return nil
}

// Close flushes buffered output, patches the header's point count and
// offset-to-data fields, and closes the file.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return err
	}

	vlrBytes := 54 + len(OutputFields)*extraBytesRecLen + 54 + 8*9
	offsetToPoints := uint32(minHeaderSize + vlrBytes)

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, offsetToPoints)
	if _, err := w.f.WriteAt(buf, 96); err != nil {
		w.f.Close()
		return err
	}
	binary.LittleEndian.PutUint32(buf, w.written)
	if _, err := w.f.WriteAt(buf, 107); err != nil {
		w.f.Close()
		return err
	}

	return w.f.Close()
}
