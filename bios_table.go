// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import "hash/crc32"

// BIOSAttrType tags the entries of the attribute and attribute-value
// tables (DSP0257 §8). The low 7 bits select the underlying type; bit 7
// marks the attribute read-only; dispatch accepts either `type` or
// `type | 0x80`.
type BIOSAttrType uint8

const (
	BIOSAttrEnumeration BIOSAttrType = 0x00
	BIOSAttrString      BIOSAttrType = 0x01
	BIOSAttrPassword    BIOSAttrType = 0x02
	BIOSAttrInteger     BIOSAttrType = 0x03

	biosAttrReadOnlyBit BIOSAttrType = 0x80
)

// baseType strips the read-only bit, used when dispatching on the
// underlying attribute kind.
func (t BIOSAttrType) baseType() BIOSAttrType { return t &^ biosAttrReadOnlyBit }

// readOnly reports whether the read-only variant bit is set.
func (t BIOSAttrType) readOnly() bool { return t&biosAttrReadOnlyBit != 0 }

// BIOSTableType selects which of the three BIOS tables a record belongs
// to, for iteration purposes.
type BIOSTableType int

const (
	BIOSStringTable BIOSTableType = iota
	BIOSAttrTable
	BIOSAttrValueTable
)

// BIOSStringEntry is one entry of the string table: a handle and its
// associated name.
type BIOSStringEntry struct {
	Handle uint16
	Name   string
}

// EncodeBIOSStringEntry writes one string-table entry. The caller
// supplies the handle, typically from a BIOSHandleAllocator, so entry
// encoding composes with whatever builder is assembling the table.
func EncodeBIOSStringEntry(e BIOSStringEntry, m *MsgBuf) error {
	if len(e.Name) == 0 {
		return ErrInvalidArgument
	}
	if err := m.InsertUint16(e.Handle); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(len(e.Name))); err != nil {
		return err
	}
	return m.InsertArray([]byte(e.Name))
}

// DecodeBIOSStringEntry reads one string-table entry.
func DecodeBIOSStringEntry(m *MsgBuf) (BIOSStringEntry, error) {
	var e BIOSStringEntry
	if err := m.ExtractUint16(&e.Handle); err != nil {
		return e, err
	}
	var length uint16
	if err := m.ExtractUint16(&length); err != nil {
		return e, err
	}
	name, err := m.SpanRequired(int(length))
	if err != nil {
		return e, err
	}
	e.Name = string(name)
	return e, nil
}

// biosStringEntryLength returns the on-wire length of a string-table entry
// starting at data, or -1 if data is too short to contain a length field.
func biosStringEntryLength(data []byte) int {
	if len(data) < 4 {
		return -1
	}
	length := int(data[2]) | int(data[3])<<8
	return 4 + length
}

// EnumAttr is the enumeration-flavored attribute table entry: a string
// handle naming the attribute, a set of possible-value string handles,
// and which of those are the factory defaults.
type EnumAttr struct {
	Handle          uint16
	Type            BIOSAttrType
	StringHandle    uint16
	PossibleValues  []uint16
	DefaultIndices  []uint8
}

// EncodeEnumAttr writes an enumeration attribute-table entry.
func EncodeEnumAttr(a EnumAttr, m *MsgBuf) error {
	if a.Type.baseType() != BIOSAttrEnumeration {
		return ErrInvalidArgument
	}
	if len(a.PossibleValues) > 255 || len(a.DefaultIndices) > 255 {
		return ErrInvalidArgument
	}
	if err := m.InsertUint16(a.Handle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(a.Type)); err != nil {
		return err
	}
	if err := m.InsertUint16(a.StringHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(len(a.PossibleValues))); err != nil {
		return err
	}
	for _, v := range a.PossibleValues {
		if err := m.InsertUint16(v); err != nil {
			return err
		}
	}
	if err := m.InsertUint8(uint8(len(a.DefaultIndices))); err != nil {
		return err
	}
	for _, idx := range a.DefaultIndices {
		if err := m.InsertUint8(idx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeEnumAttr reads an enumeration attribute-table entry.
func DecodeEnumAttr(m *MsgBuf) (EnumAttr, error) {
	var a EnumAttr
	if err := m.ExtractUint16(&a.Handle); err != nil {
		return a, err
	}
	var t uint8
	if err := m.ExtractUint8(&t); err != nil {
		return a, err
	}
	a.Type = BIOSAttrType(t)
	if a.Type.baseType() != BIOSAttrEnumeration {
		return a, ErrInvalidArgument
	}
	if err := m.ExtractUint16(&a.StringHandle); err != nil {
		return a, err
	}
	var count uint8
	if err := m.ExtractUint8(&count); err != nil {
		return a, err
	}
	a.PossibleValues = make([]uint16, count)
	for i := range a.PossibleValues {
		if err := m.ExtractUint16(&a.PossibleValues[i]); err != nil {
			return a, err
		}
	}
	var defCount uint8
	if err := m.ExtractUint8(&defCount); err != nil {
		return a, err
	}
	a.DefaultIndices = make([]uint8, defCount)
	for i := range a.DefaultIndices {
		if err := m.ExtractUint8(&a.DefaultIndices[i]); err != nil {
			return a, err
		}
	}
	return a, nil
}

func biosEnumAttrLength(data []byte) int {
	if len(data) < 6 {
		return -1
	}
	possibleCount := int(data[5])
	offset := 6 + possibleCount*2
	if len(data) < offset+1 {
		return -1
	}
	defaultCount := int(data[offset])
	return offset + 1 + defaultCount
}

// IntegerAttr is the integer-flavored attribute table entry.
type IntegerAttr struct {
	Handle       uint16
	Type         BIOSAttrType
	StringHandle uint16
	LowerBound   uint64
	UpperBound   uint64
	ScalarIncrement uint32
	Default      uint64
}

// EncodeIntegerAttr writes an integer attribute-table entry.
func EncodeIntegerAttr(a IntegerAttr, m *MsgBuf) error {
	if a.Type.baseType() != BIOSAttrInteger {
		return ErrInvalidArgument
	}
	if err := m.InsertUint16(a.Handle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(a.Type)); err != nil {
		return err
	}
	if err := m.InsertUint16(a.StringHandle); err != nil {
		return err
	}
	if err := m.InsertUint64(a.LowerBound); err != nil {
		return err
	}
	if err := m.InsertUint64(a.UpperBound); err != nil {
		return err
	}
	if err := m.InsertUint32(a.ScalarIncrement); err != nil {
		return err
	}
	return m.InsertUint64(a.Default)
}

// DecodeIntegerAttr reads an integer attribute-table entry.
func DecodeIntegerAttr(m *MsgBuf) (IntegerAttr, error) {
	var a IntegerAttr
	if err := m.ExtractUint16(&a.Handle); err != nil {
		return a, err
	}
	var t uint8
	if err := m.ExtractUint8(&t); err != nil {
		return a, err
	}
	a.Type = BIOSAttrType(t)
	if a.Type.baseType() != BIOSAttrInteger {
		return a, ErrInvalidArgument
	}
	if err := m.ExtractUint16(&a.StringHandle); err != nil {
		return a, err
	}
	if err := m.ExtractUint64(&a.LowerBound); err != nil {
		return a, err
	}
	if err := m.ExtractUint64(&a.UpperBound); err != nil {
		return a, err
	}
	if err := m.ExtractUint32(&a.ScalarIncrement); err != nil {
		return a, err
	}
	if err := m.ExtractUint64(&a.Default); err != nil {
		return a, err
	}
	return a, nil
}

const biosIntegerAttrLength = 2 + 1 + 2 + 8 + 8 + 4 + 8

// StringAttr is the string-flavored attribute table entry: a string-type
// tag plus the length bounds and default value DSP0257 §8.3.2.2 defines.
type StringAttr struct {
	Handle        uint16
	Type          BIOSAttrType
	StringHandle  uint16
	StringType    uint8
	MinLength     uint16
	MaxLength     uint16
	DefaultString string
}

// validate checks the descriptor: bounds ordered, default within
// bounds, known string type.
func (a StringAttr) validate() error {
	if a.MinLength > a.MaxLength {
		return ErrInvalidArgument
	}
	def := uint16(len(a.DefaultString))
	if a.MinLength == a.MaxLength && def != a.MinLength {
		return ErrInvalidArgument
	}
	if def > a.MaxLength || def < a.MinLength {
		return ErrInvalidArgument
	}
	if a.StringType > 5 && a.StringType != 0xFF {
		return ErrInvalidArgument
	}
	return nil
}

// EncodeStringAttr writes a string attribute-table entry.
func EncodeStringAttr(a StringAttr, m *MsgBuf) error {
	if a.Type.baseType() != BIOSAttrString {
		return ErrInvalidArgument
	}
	if err := a.validate(); err != nil {
		return err
	}
	if err := m.InsertUint16(a.Handle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(a.Type)); err != nil {
		return err
	}
	if err := m.InsertUint16(a.StringHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(a.StringType); err != nil {
		return err
	}
	if err := m.InsertUint16(a.MinLength); err != nil {
		return err
	}
	if err := m.InsertUint16(a.MaxLength); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(len(a.DefaultString))); err != nil {
		return err
	}
	return m.InsertArray([]byte(a.DefaultString))
}

// DecodeStringAttr reads a string attribute-table entry.
func DecodeStringAttr(m *MsgBuf) (StringAttr, error) {
	var a StringAttr
	if err := m.ExtractUint16(&a.Handle); err != nil {
		return a, err
	}
	var t uint8
	if err := m.ExtractUint8(&t); err != nil {
		return a, err
	}
	a.Type = BIOSAttrType(t)
	if a.Type.baseType() != BIOSAttrString {
		return a, ErrInvalidArgument
	}
	if err := m.ExtractUint16(&a.StringHandle); err != nil {
		return a, err
	}
	if err := m.ExtractUint8(&a.StringType); err != nil {
		return a, err
	}
	if err := m.ExtractUint16(&a.MinLength); err != nil {
		return a, err
	}
	if err := m.ExtractUint16(&a.MaxLength); err != nil {
		return a, err
	}
	var defLen uint16
	if err := m.ExtractUint16(&defLen); err != nil {
		return a, err
	}
	def, err := m.SpanRequired(int(defLen))
	if err != nil {
		return a, err
	}
	a.DefaultString = string(def)
	return a, nil
}

func biosStringAttrLength(data []byte) int {
	if len(data) < 12 {
		return -1
	}
	defLen := int(data[10]) | int(data[11])<<8
	return 12 + defLen
}

// StringAttrValue is an attribute-value table entry for a string
// attribute: the current string.
type StringAttrValue struct {
	AttrHandle uint16
	Type       BIOSAttrType
	Value      string
}

// EncodeStringAttrValue writes a string attribute-value entry.
func EncodeStringAttrValue(v StringAttrValue, m *MsgBuf) error {
	if v.Type.baseType() != BIOSAttrString {
		return ErrInvalidArgument
	}
	if err := m.InsertUint16(v.AttrHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(v.Type)); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(len(v.Value))); err != nil {
		return err
	}
	return m.InsertArray([]byte(v.Value))
}

// DecodeStringAttrValue reads a string attribute-value entry.
func DecodeStringAttrValue(m *MsgBuf) (StringAttrValue, error) {
	var v StringAttrValue
	if err := m.ExtractUint16(&v.AttrHandle); err != nil {
		return v, err
	}
	var t uint8
	if err := m.ExtractUint8(&t); err != nil {
		return v, err
	}
	v.Type = BIOSAttrType(t)
	if v.Type.baseType() != BIOSAttrString {
		return v, ErrInvalidArgument
	}
	var length uint16
	if err := m.ExtractUint16(&length); err != nil {
		return v, err
	}
	value, err := m.SpanRequired(int(length))
	if err != nil {
		return v, err
	}
	v.Value = string(value)
	return v, nil
}

// IntegerAttrValue is an attribute-value table entry for an integer
// attribute.
type IntegerAttrValue struct {
	AttrHandle uint16
	Type       BIOSAttrType
	Value      uint64
}

// EncodeIntegerAttrValue writes an integer attribute-value entry.
func EncodeIntegerAttrValue(v IntegerAttrValue, m *MsgBuf) error {
	if v.Type.baseType() != BIOSAttrInteger {
		return ErrInvalidArgument
	}
	if err := m.InsertUint16(v.AttrHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(v.Type)); err != nil {
		return err
	}
	return m.InsertUint64(v.Value)
}

// DecodeIntegerAttrValue reads an integer attribute-value entry.
func DecodeIntegerAttrValue(m *MsgBuf) (IntegerAttrValue, error) {
	var v IntegerAttrValue
	if err := m.ExtractUint16(&v.AttrHandle); err != nil {
		return v, err
	}
	var t uint8
	if err := m.ExtractUint8(&t); err != nil {
		return v, err
	}
	v.Type = BIOSAttrType(t)
	if v.Type.baseType() != BIOSAttrInteger {
		return v, ErrInvalidArgument
	}
	if err := m.ExtractUint64(&v.Value); err != nil {
		return v, err
	}
	return v, nil
}

const biosIntegerAttrValueLength = 2 + 1 + 8

// BIOSHandleAllocator hands out the 16-bit string and attribute handles
// the table encoders stamp into entries, one monotonic counter per
// namespace. Allocation fails once a counter saturates, mirroring the
// namespace, held in a struct rather than package state so tables built
// side by side do not share counters.
type BIOSHandleAllocator struct {
	stringHandle uint16
	attrHandle   uint16
}

// NextStringHandle allocates the next string-table handle, failing once
// the counter saturates (0xFFFF itself is never handed out).
func (a *BIOSHandleAllocator) NextStringHandle() (uint16, error) {
	if a.stringHandle == 0xFFFF {
		return 0, ErrNoMemory
	}
	h := a.stringHandle
	a.stringHandle++
	return h, nil
}

// NextAttrHandle allocates the next attribute-table handle, with the same
// saturation rule as NextStringHandle.
func (a *BIOSHandleAllocator) NextAttrHandle() (uint16, error) {
	if a.attrHandle == 0xFFFF {
		return 0, ErrNoMemory
	}
	h := a.attrHandle
	a.attrHandle++
	return h, nil
}

// EnumAttrValue is an attribute-value table entry for an enumeration
// attribute: the indices (into the attribute's PossibleValues) currently
// selected.
type EnumAttrValue struct {
	AttrHandle uint16
	Type       BIOSAttrType
	Indices    []uint8
}

// EncodeEnumAttrValue writes an enumeration attribute-value entry.
func EncodeEnumAttrValue(v EnumAttrValue, m *MsgBuf) error {
	if v.Type.baseType() != BIOSAttrEnumeration {
		return ErrInvalidArgument
	}
	if len(v.Indices) > 255 {
		return ErrInvalidArgument
	}
	if err := m.InsertUint16(v.AttrHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(v.Type)); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(len(v.Indices))); err != nil {
		return err
	}
	for _, idx := range v.Indices {
		if err := m.InsertUint8(idx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeEnumAttrValue reads an enumeration attribute-value entry.
func DecodeEnumAttrValue(m *MsgBuf) (EnumAttrValue, error) {
	var v EnumAttrValue
	if err := m.ExtractUint16(&v.AttrHandle); err != nil {
		return v, err
	}
	var t uint8
	if err := m.ExtractUint8(&t); err != nil {
		return v, err
	}
	v.Type = BIOSAttrType(t)
	if v.Type.baseType() != BIOSAttrEnumeration {
		return v, ErrInvalidArgument
	}
	var count uint8
	if err := m.ExtractUint8(&count); err != nil {
		return v, err
	}
	v.Indices = make([]uint8, count)
	for i := range v.Indices {
		if err := m.ExtractUint8(&v.Indices[i]); err != nil {
			return v, err
		}
	}
	return v, nil
}

// PadSize returns the number of zero bytes pldm_bios_table_pad_checksum_size
// inserts before the trailing CRC32 so the padded table length is a
// multiple of 4.
func PadSize(sizeWithoutPad int) int {
	return (4 - sizeWithoutPad%4) % 4
}

// AppendPadChecksum writes, at m's cursor, the zero padding that brings
// table to a 4-byte boundary followed by a little-endian CRC32 over table
// plus that padding. table is the unpadded table content the caller has
// already assembled.
func AppendPadChecksum(table []byte, m *MsgBuf) error {
	pad := PadSize(len(table))
	for i := 0; i < pad; i++ {
		if err := m.InsertUint8(0); err != nil {
			return err
		}
	}
	sum := crc32.ChecksumIEEE(table)
	sum = crc32.Update(sum, crc32.IEEETable, make([]byte, pad))
	return m.InsertUint32(sum)
}

// VerifyPadChecksum validates that table (content + pad) is followed by a
// correct little-endian CRC32: rather than guessing end-of-table from a
// small tail length, the trailing checksum is checked explicitly.
func VerifyPadChecksum(content []byte, trailer []byte) bool {
	if len(trailer) != 4 {
		return false
	}
	var want uint32
	want = uint32(trailer[0]) | uint32(trailer[1])<<8 | uint32(trailer[2])<<16 | uint32(trailer[3])<<24
	return crc32.ChecksumIEEE(content) == want
}

// BIOSTableIterator walks fixed-format entries of one BIOS table,
// dispatching entry length by table type via a switch on
// BIOSTableType.
type BIOSTableIterator struct {
	data  []byte
	pos   int
	kind  BIOSTableType
}

// NewBIOSTableIterator constructs an iterator over a fully-buffered table
// (content, pad, and trailing CRC32 all included in data).
func NewBIOSTableIterator(data []byte, kind BIOSTableType) *BIOSTableIterator {
	return &BIOSTableIterator{data: data, kind: kind}
}

func (it *BIOSTableIterator) entryLength(entry []byte) int {
	switch it.kind {
	case BIOSStringTable:
		return biosStringEntryLength(entry)
	case BIOSAttrTable:
		if len(entry) < 3 {
			return -1
		}
		switch BIOSAttrType(entry[2]).baseType() {
		case BIOSAttrEnumeration:
			return biosEnumAttrLength(entry)
		case BIOSAttrString:
			return biosStringAttrLength(entry)
		case BIOSAttrInteger:
			return biosIntegerAttrLength
		default:
			return -1
		}
	case BIOSAttrValueTable:
		if len(entry) < 3 {
			return -1
		}
		switch BIOSAttrType(entry[2]).baseType() {
		case BIOSAttrEnumeration:
			if len(entry) < 4 {
				return -1
			}
			return 4 + int(entry[3])
		case BIOSAttrString:
			if len(entry) < 5 {
				return -1
			}
			return 5 + (int(entry[3]) | int(entry[4])<<8)
		case BIOSAttrInteger:
			return biosIntegerAttrValueLength
		default:
			return -1
		}
	default:
		return -1
	}
}

// Done reports whether the remaining bytes are only the pad+CRC32
// trailer (validated) or malformed, in either case ending iteration.
func (it *BIOSTableIterator) Done() bool {
	if it.pos > len(it.data) {
		return true
	}
	rest := it.data[it.pos:]
	if len(rest) < 4 {
		return true
	}
	next := it.entryLength(rest)
	if next < 0 || next > len(rest) {
		// What remains cannot be another entry; treat it as the
		// pad+checksum trailer and validate it.
		pad := PadSize(it.pos)
		if len(rest) == pad+4 {
			return VerifyPadChecksum(it.data[:it.pos+pad], rest[pad:])
		}
		return true
	}
	return false
}

// Value returns the raw bytes of the current entry without advancing.
func (it *BIOSTableIterator) Value() []byte {
	n := it.entryLength(it.data[it.pos:])
	if n < 0 {
		return nil
	}
	return it.data[it.pos : it.pos+n]
}

// Next advances past the current entry.
func (it *BIOSTableIterator) Next() {
	if it.Done() {
		return
	}
	n := it.entryLength(it.data[it.pos:])
	if n < 0 {
		return
	}
	it.pos += n
}

// FindBIOSStringByName walks a string table and returns the entry whose
// name equals name.
func FindBIOSStringByName(table []byte, name string) (BIOSStringEntry, bool) {
	for it := NewBIOSTableIterator(table, BIOSStringTable); !it.Done(); it.Next() {
		raw := it.Value()
		m, err := NewMsgBuf(4, raw)
		if err != nil {
			return BIOSStringEntry{}, false
		}
		e, err := DecodeBIOSStringEntry(m)
		if err != nil {
			return BIOSStringEntry{}, false
		}
		if e.Name == name {
			return e, true
		}
	}
	return BIOSStringEntry{}, false
}

// FindBIOSStringByHandle walks a string table and returns the entry with
// the given handle.
func FindBIOSStringByHandle(table []byte, handle uint16) (BIOSStringEntry, bool) {
	for it := NewBIOSTableIterator(table, BIOSStringTable); !it.Done(); it.Next() {
		raw := it.Value()
		m, err := NewMsgBuf(4, raw)
		if err != nil {
			return BIOSStringEntry{}, false
		}
		e, err := DecodeBIOSStringEntry(m)
		if err != nil {
			return BIOSStringEntry{}, false
		}
		if e.Handle == handle {
			return e, true
		}
	}
	return BIOSStringEntry{}, false
}

// FindBIOSAttrByHandle walks an attribute table and returns the raw bytes
// of the entry with the given attribute handle; the caller dispatches the
// decode on the entry's type byte.
func FindBIOSAttrByHandle(table []byte, handle uint16) ([]byte, bool) {
	for it := NewBIOSTableIterator(table, BIOSAttrTable); !it.Done(); it.Next() {
		raw := it.Value()
		if len(raw) >= 2 && uint16(raw[0])|uint16(raw[1])<<8 == handle {
			return raw, true
		}
	}
	return nil, false
}
