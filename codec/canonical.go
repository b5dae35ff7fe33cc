// Package codec implements the two wire formats of spec §4.4: the
// canonical binary codec (used for hashing and the delta artifact wire
// format) and the self-describing codec (used for in-storage values).
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer accumulates canonical-codec bytes. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) WriteU8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) WriteI8(v int8)    { w.WriteU8(uint8(v)) }

func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) WriteI16(v int16) { w.WriteU16(uint16(v)) }

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) WriteI64(v int64) { w.WriteU64(uint64(v)) }

// WriteU128 writes a 128-bit unsigned integer as two little-endian u64
// limbs (low limb first), the conventional little-endian extension of the
// fixed-width rule to 128 bits.
func (w *Writer) WriteU128(lo, hi uint64) {
	w.WriteU64(lo)
	w.WriteU64(hi)
}

func (w *Writer) WriteF32(v float32) { w.WriteU32(math.Float32bits(v)) }
func (w *Writer) WriteF64(v float64) { w.WriteU64(math.Float64bits(v)) }

func (w *Writer) WriteBytes(b []byte) {
	w.WriteU32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteFixed appends b verbatim, with no length prefix. For wire formats
// that specify a fixed-width array (e.g. the 32-byte action id of the
// delta artifact format) rather than a length-prefixed byte string.
func (w *Writer) WriteFixed(b []byte) { w.buf = append(w.buf, b...) }

func (w *Writer) WriteString(s string) { w.WriteBytes([]byte(s)) }

// WriteOption writes the presence tag; the caller writes the payload
// itself when present is true.
func (w *Writer) WriteOption(present bool) { w.WriteBool(present) }

// WriteSeqHeader writes the element count of a sequence; the caller
// encodes each element itself.
func (w *Writer) WriteSeqHeader(count int) { w.WriteU32(uint32(count)) }

// WriteVariant writes a variant discriminant; the caller encodes the
// payload itself.
func (w *Writer) WriteVariant(discriminant uint32) { w.WriteU32(discriminant) }

// Reader consumes canonical-codec bytes sequentially.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, r.Remaining())
	}
	return nil
}

func (r *Reader) ReadBool() (bool, error) {
	if err := r.need(1); err != nil {
		return false, err
	}
	v := r.buf[r.pos]
	r.pos++
	if v > 1 {
		return false, fmt.Errorf("%w: invalid bool byte %d", ErrMalformed, v)
	}
	return v == 1, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadU128() (lo, hi uint64, err error) {
	if lo, err = r.ReadU64(); err != nil {
		return 0, 0, err
	}
	if hi, err = r.ReadU64(); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadFixed reads exactly n verbatim bytes with no length prefix, the
// counterpart to WriteFixed.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+n])
	r.pos += n
	return b, nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return b, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) ReadOption() (bool, error) { return r.ReadBool() }

func (r *Reader) ReadSeqHeader() (int, error) {
	n, err := r.ReadU32()
	return int(n), err
}

func (r *Reader) ReadVariant() (uint32, error) { return r.ReadU32() }
