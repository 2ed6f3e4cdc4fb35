// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import (
	"encoding/binary"
	"math"
)

// MsgBuf is a bounded, endianness-normalising read/write cursor over a
// caller-provided byte slice. It is the only primitive every codec in this
// package is built on top of.
//
// Once an operation fails, the error is latched ("sticky") and every
// subsequent operation on the same MsgBuf is a no-op that returns the same
// error. This lets a decoder chain a long sequence of Extract* calls and
// check the error exactly once at the end.
type MsgBuf struct {
	base []byte
	pos  int
	err  error
}

// NewMsgBuf constructs a cursor over buf, requiring at least minRequired
// bytes to be present. It is the Go equivalent of pldm_msgbuf_init.
func NewMsgBuf(minRequired int, buf []byte) (*MsgBuf, error) {
	if buf == nil {
		return nil, ErrInvalidArgument
	}
	if minRequired < 0 || minRequired > len(buf) {
		return &MsgBuf{base: buf, err: ErrOverflow}, ErrOverflow
	}
	return &MsgBuf{base: buf}, nil
}

// Remaining returns the number of unconsumed bytes, or 0 once an error has
// latched.
func (m *MsgBuf) Remaining() int {
	if m.err != nil {
		return 0
	}
	return len(m.base) - m.pos
}

// Err returns the latched sticky error, if any.
func (m *MsgBuf) Err() error {
	return m.err
}

func (m *MsgBuf) fail(err error) error {
	if m.err == nil {
		m.err = err
	}
	return m.err
}

func (m *MsgBuf) take(n int) []byte {
	if m.err != nil {
		return nil
	}
	if n < 0 || n > len(m.base)-m.pos {
		m.fail(ErrOverflow)
		return nil
	}
	b := m.base[m.pos : m.pos+n]
	m.pos += n
	return b
}

// ExtractUint8 reads one byte into dst. On underflow dst is left untouched.
func (m *MsgBuf) ExtractUint8(dst *uint8) error {
	b := m.take(1)
	if b == nil {
		return m.err
	}
	*dst = b[0]
	return nil
}

// ExtractInt8 reads one signed byte.
func (m *MsgBuf) ExtractInt8(dst *int8) error {
	var u uint8
	if err := m.ExtractUint8(&u); err != nil {
		return err
	}
	*dst = int8(u)
	return nil
}

// ExtractUint16 reads a little-endian u16.
func (m *MsgBuf) ExtractUint16(dst *uint16) error {
	b := m.take(2)
	if b == nil {
		return m.err
	}
	*dst = binary.LittleEndian.Uint16(b)
	return nil
}

// ExtractInt16 reads a little-endian i16.
func (m *MsgBuf) ExtractInt16(dst *int16) error {
	var u uint16
	if err := m.ExtractUint16(&u); err != nil {
		return err
	}
	*dst = int16(u)
	return nil
}

// ExtractUint32 reads a little-endian u32.
func (m *MsgBuf) ExtractUint32(dst *uint32) error {
	b := m.take(4)
	if b == nil {
		return m.err
	}
	*dst = binary.LittleEndian.Uint32(b)
	return nil
}

// ExtractInt32 reads a little-endian i32.
func (m *MsgBuf) ExtractInt32(dst *int32) error {
	var u uint32
	if err := m.ExtractUint32(&u); err != nil {
		return err
	}
	*dst = int32(u)
	return nil
}

// ExtractUint64 reads a little-endian u64.
func (m *MsgBuf) ExtractUint64(dst *uint64) error {
	b := m.take(8)
	if b == nil {
		return m.err
	}
	*dst = binary.LittleEndian.Uint64(b)
	return nil
}

// ExtractInt64 reads a little-endian i64.
func (m *MsgBuf) ExtractInt64(dst *int64) error {
	var u uint64
	if err := m.ExtractUint64(&u); err != nil {
		return err
	}
	*dst = int64(u)
	return nil
}

// ExtractFloat32 reads a little-endian IEEE-754 single.
func (m *MsgBuf) ExtractFloat32(dst *float32) error {
	var u uint32
	if err := m.ExtractUint32(&u); err != nil {
		return err
	}
	*dst = math.Float32frombits(u)
	return nil
}

// InsertUint8 writes one byte.
func (m *MsgBuf) InsertUint8(v uint8) error {
	b := m.take(1)
	if b == nil {
		return m.err
	}
	b[0] = v
	return nil
}

// InsertInt8 writes one signed byte.
func (m *MsgBuf) InsertInt8(v int8) error { return m.InsertUint8(uint8(v)) }

// InsertUint16 writes a little-endian u16.
func (m *MsgBuf) InsertUint16(v uint16) error {
	b := m.take(2)
	if b == nil {
		return m.err
	}
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

// InsertInt16 writes a little-endian i16.
func (m *MsgBuf) InsertInt16(v int16) error { return m.InsertUint16(uint16(v)) }

// InsertUint32 writes a little-endian u32.
func (m *MsgBuf) InsertUint32(v uint32) error {
	b := m.take(4)
	if b == nil {
		return m.err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

// InsertInt32 writes a little-endian i32.
func (m *MsgBuf) InsertInt32(v int32) error { return m.InsertUint32(uint32(v)) }

// InsertUint64 writes a little-endian u64.
func (m *MsgBuf) InsertUint64(v uint64) error {
	b := m.take(8)
	if b == nil {
		return m.err
	}
	binary.LittleEndian.PutUint64(b, v)
	return nil
}

// InsertInt64 writes a little-endian i64.
func (m *MsgBuf) InsertInt64(v int64) error { return m.InsertUint64(uint64(v)) }

// InsertFloat32 writes a little-endian IEEE-754 single.
func (m *MsgBuf) InsertFloat32(v float32) error {
	return m.InsertUint32(math.Float32bits(v))
}

// ExtractArray copies len(dst) bytes from the cursor into dst.
func (m *MsgBuf) ExtractArray(dst []byte) error {
	b := m.take(len(dst))
	if b == nil {
		return m.err
	}
	copy(dst, b)
	return nil
}

// InsertArray copies src into the cursor.
func (m *MsgBuf) InsertArray(src []byte) error {
	b := m.take(len(src))
	if b == nil {
		return m.err
	}
	copy(b, src)
	return nil
}

// SpanRequired borrows n bytes from the cursor without copying. The
// returned slice aliases the original backing array and is valid only as
// long as that array is.
func (m *MsgBuf) SpanRequired(n int) ([]byte, error) {
	b := m.take(n)
	if b == nil {
		return nil, m.err
	}
	return b, nil
}

// SpanRemaining borrows the unconsumed tail of the buffer without copying.
func (m *MsgBuf) SpanRemaining() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	b := m.base[m.pos:]
	m.pos = len(m.base)
	return b, nil
}

// SpanStringASCII borrows a NUL-terminated ASCII string (including the
// terminator) from the cursor. It fails with ErrOverflow if no NUL is found
// in the remaining span.
func (m *MsgBuf) SpanStringASCII() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	rest := m.base[m.pos:]
	idx := indexByte(rest, 0)
	if idx < 0 {
		return nil, m.fail(ErrOverflow)
	}
	return m.take(idx + 1), nil
}

// SpanStringUTF16 borrows a u16-NUL-terminated string (including the
// 2-byte terminator) from the cursor.
func (m *MsgBuf) SpanStringUTF16() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	rest := m.base[m.pos:]
	for i := 0; i+1 < len(rest); i += 2 {
		if rest[i] == 0 && rest[i+1] == 0 {
			return m.take(i + 2), nil
		}
	}
	return nil, m.fail(ErrOverflow)
}

// CopyStringASCII copies the next NUL-terminated ASCII string from m into
// dst, advancing both cursors.
func (m *MsgBuf) CopyStringASCII(dst *MsgBuf) error {
	s, err := m.SpanStringASCII()
	if err != nil {
		return err
	}
	return dst.InsertArray(s)
}

// CopyStringUTF16 copies the next u16-NUL-terminated string from m into
// dst, advancing both cursors.
func (m *MsgBuf) CopyStringUTF16(dst *MsgBuf) error {
	s, err := m.SpanStringUTF16()
	if err != nil {
		return err
	}
	return dst.InsertArray(s)
}

// Complete returns the latched error, if any. Unconsumed trailing bytes
// are permitted.
func (m *MsgBuf) Complete() error {
	return m.err
}

// CompleteConsumed is like Complete but additionally requires the cursor
// to have consumed every byte of the backing slice.
func (m *MsgBuf) CompleteConsumed() error {
	if m.err != nil {
		return m.err
	}
	if m.pos != len(m.base) {
		return ErrBadMessage
	}
	return nil
}

// CompleteUsed reports the number of bytes written so far, failing if that
// exceeds cap (the caller's buffer capacity).
func (m *MsgBuf) CompleteUsed(cap int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.pos > cap {
		return 0, ErrOverflow
	}
	return m.pos, nil
}

// Discard force-latches err, terminating the buffer. Used on error exit
// paths so every MsgBuf has an explicit terminal state.
func (m *MsgBuf) Discard(err error) {
	if err == nil {
		err = ErrInvalidArgument
	}
	m.fail(err)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
