package dex

import (
	"encoding/binary"
	"fmt"
)

// reader is a little-endian cursor over the whole file image. Once a read
// fails, err is set and every following read returns zero values.
type reader struct {
	data []byte
	pos  uint32
	err  error
}

func newReader(data []byte, pos uint32) *reader {
	return &reader{data: data, pos: pos}
}

func (r *reader) need(n uint32) bool {
	if r.err != nil {
		return false
	}
	if uint64(r.pos)+uint64(n) > uint64(len(r.data)) {
		r.err = fmt.Errorf("%w: need %d bytes at 0x%x, have %d", ErrOutOfBounds, n, r.pos, len(r.data))
		return false
	}
	return true
}

// fail records err unless an earlier read already failed.
func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) readU1() uint8 {
	if !r.need(1) {
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *reader) readU2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) readU4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) readBytes(n uint32) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) readUleb128() uint32 {
	var result uint32
	for i := 0; i < 5; i++ {
		b := r.readU1()
		if r.err != nil {
			return 0
		}
		result |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return result
		}
	}
	r.err = fmt.Errorf("dex: uleb128 at 0x%x longer than 5 bytes", r.pos)
	return 0
}

func (r *reader) readSleb128() int32 {
	var result int32
	var shift uint
	for i := 0; i < 5; i++ {
		b := r.readU1()
		if r.err != nil {
			return 0
		}
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 32 && b&0x40 != 0 {
				result |= -1 << shift
			}
			return result
		}
	}
	r.err = fmt.Errorf("dex: sleb128 at 0x%x longer than 5 bytes", r.pos)
	return 0
}

// readSized reads a little-endian value of size bytes (1..8) as used by
// encoded_value payloads.
func (r *reader) readSized(size int) uint64 {
	b := r.readBytes(uint32(size))
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func (r *reader) readSignedSized(size int) int64 {
	v := r.readSized(size)
	shift := uint(64 - 8*size)
	return int64(v<<shift) >> shift
}
