// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import (
	"golang.org/x/text/encoding/unicode"
)

// Firmware update command codes (DSP0267 §11), PLDM type 5.
const (
	CmdQueryDeviceIdentifiers  = 0x01
	CmdGetFirmwareParameters   = 0x02
	CmdRequestUpdate           = 0x10
	CmdPassComponentTable      = 0x13
	CmdUpdateComponent         = 0x14
	CmdRequestFirmwareData     = 0x15
	CmdTransferComplete        = 0x16
	CmdVerifyComplete          = 0x17
	CmdApplyComplete           = 0x18
	CmdActivateFirmware        = 0x1A
	CmdGetStatus               = 0x1B
	CmdCancelUpdateComponent   = 0x1C
	CmdCancelUpdate            = 0x1D

	fwupPldmType uint8 = 5
)

// DescriptorType identifies the kind of device identifier carried in a
// descriptor TLV (DSP0267 Table 7).
type DescriptorType uint16

const (
	DescriptorPCIVendorID        DescriptorType = 0x0000
	DescriptorIANAEnterpriseID   DescriptorType = 0x0001
	DescriptorUUID               DescriptorType = 0x0002
	DescriptorPnPVendorID        DescriptorType = 0x0003
	DescriptorACPIVendorID       DescriptorType = 0x0004
	DescriptorVendorDefined      DescriptorType = 0xFFFF
)

// fixedDescriptorLength returns the expected byte length for the known
// fixed-width descriptor types, or 0 for a type with no fixed length
// (notably DescriptorVendorDefined, whose length is read off the wire
// instead of validated against a table).
func fixedDescriptorLength(t DescriptorType) int {
	switch t {
	case DescriptorPCIVendorID, DescriptorPnPVendorID, DescriptorACPIVendorID:
		return 2
	case DescriptorIANAEnterpriseID:
		return 4
	case DescriptorUUID:
		return 16
	default:
		return 0
	}
}

// Descriptor is one decoded descriptor TLV entry (type, length, data).
type Descriptor struct {
	Type DescriptorType
	Data []byte
}

// EncodeDescriptor writes one descriptor TLV.
func EncodeDescriptor(d Descriptor, m *MsgBuf) error {
	if fixed := fixedDescriptorLength(d.Type); fixed != 0 && len(d.Data) != fixed {
		return ErrInvalidArgument
	}
	if err := m.InsertUint16(uint16(d.Type)); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(len(d.Data))); err != nil {
		return err
	}
	return m.InsertArray(d.Data)
}

// DecodeDescriptor reads one descriptor TLV, borrowing Data from m and
// validating its length against the fixed-width table for every type
// except DescriptorVendorDefined (DSP0267 Table 7).
func DecodeDescriptor(m *MsgBuf) (Descriptor, error) {
	var d Descriptor
	var t uint16
	if err := m.ExtractUint16(&t); err != nil {
		return d, err
	}
	d.Type = DescriptorType(t)
	var length uint16
	if err := m.ExtractUint16(&length); err != nil {
		return d, err
	}
	if fixed := fixedDescriptorLength(d.Type); fixed != 0 && int(length) != fixed {
		return d, ErrInvalidArgument
	}
	data, err := m.SpanRequired(int(length))
	if err != nil {
		return d, err
	}
	d.Data = data
	return d, nil
}

// DescriptorIterator walks a contiguous run of descriptor TLVs.
type DescriptorIterator struct {
	m     *MsgBuf
	count int
	seen  int
}

// NewDescriptorIterator constructs an iterator that reads exactly count
// descriptors from m.
func NewDescriptorIterator(m *MsgBuf, count int) *DescriptorIterator {
	return &DescriptorIterator{m: m, count: count}
}

// Next reads the next descriptor, or returns (Descriptor{}, false, nil)
// once count descriptors have been consumed.
func (it *DescriptorIterator) Next() (Descriptor, bool, error) {
	if it.seen >= it.count {
		return Descriptor{}, false, nil
	}
	d, err := DecodeDescriptor(it.m)
	if err != nil {
		return Descriptor{}, false, err
	}
	it.seen++
	return d, true, nil
}

// StringType tags the character encoding of a version string
// (DSP0267 Table 33).
type StringType uint8

const (
	StringTypeUnknown  StringType = 0
	StringTypeASCII    StringType = 1
	StringTypeUTF8     StringType = 2
	StringTypeUTF16    StringType = 3
	StringTypeUTF16LE  StringType = 4
	StringTypeUTF16BE  StringType = 5
	stringTypeMax                 = StringTypeUTF16BE
)

// MaxVersionStringLength bounds a component/image-set version string
// (PLDM_FIRMWARE_MAX_STRING).
const MaxVersionStringLength = 255

// VersionString is a decoded, type-tagged firmware version string.
type VersionString struct {
	Type StringType
	Data []byte
}

// EncodeVersionString writes a version-string's type/length header
// followed by its raw bytes, leaving any transcoding to the caller.
func EncodeVersionString(v VersionString, m *MsgBuf) error {
	if v.Type > stringTypeMax || len(v.Data) == 0 || len(v.Data) > MaxVersionStringLength {
		return ErrInvalidArgument
	}
	if err := m.InsertUint8(uint8(v.Type)); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(len(v.Data))); err != nil {
		return err
	}
	return m.InsertArray(v.Data)
}

// DecodeVersionString reads a version-string's type/length header and its
// raw bytes.
func DecodeVersionString(m *MsgBuf) (VersionString, error) {
	var v VersionString
	var t uint8
	if err := m.ExtractUint8(&t); err != nil {
		return v, err
	}
	v.Type = StringType(t)
	if v.Type > stringTypeMax {
		return v, ErrBadMessage
	}
	var length uint8
	if err := m.ExtractUint8(&length); err != nil {
		return v, err
	}
	data, err := m.SpanRequired(int(length))
	if err != nil {
		return v, err
	}
	v.Data = data
	return v, nil
}

// DecodeUTF16String transcodes a UTF-16BE or UTF-16LE VersionString into
// a Go string via golang.org/x/text/encoding/unicode.
func DecodeUTF16String(v VersionString) (string, error) {
	var endian unicode.Endianness
	switch v.Type {
	case StringTypeUTF16BE:
		endian = unicode.BigEndian
	case StringTypeUTF16, StringTypeUTF16LE:
		endian = unicode.LittleEndian
	default:
		return string(v.Data), nil
	}
	decoded, err := unicode.UTF16(endian, unicode.IgnoreBOM).NewDecoder().Bytes(v.Data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// ComponentClassification identifies the functional category of a
// firmware component (DSP0267 Table 21, abridged to the values this
// package validates against).
type ComponentClassification uint16

const (
	ComponentClassificationOther     ComponentClassification = 0x0001
	ComponentClassificationFirmware  ComponentClassification = 0x000A
)

// UpdateOptionFlags is the bitfield32 carried by UpdateComponent requests.
type UpdateOptionFlags uint32

const UpdateOptionForceUpdate UpdateOptionFlags = 1 << 0

// VendorDefinedDescriptor is the decoded inner value of a
// DescriptorVendorDefined descriptor: a typed title string followed by
// opaque vendor data.
type VendorDefinedDescriptor struct {
	TitleType StringType
	Title     []byte
	Data      []byte
}

// DecodeVendorDefinedDescriptor parses the Data of a descriptor whose
// Type is DescriptorVendorDefined, the follow-up step DecodeDescriptor
// leaves to the caller for that one type.
func DecodeVendorDefinedDescriptor(d Descriptor) (VendorDefinedDescriptor, error) {
	var v VendorDefinedDescriptor
	if d.Type != DescriptorVendorDefined {
		return v, ErrInvalidArgument
	}
	m, err := NewMsgBuf(2, d.Data)
	if err != nil {
		return v, err
	}
	var titleType, titleLen uint8
	if err := m.ExtractUint8(&titleType); err != nil {
		return v, err
	}
	if err := m.ExtractUint8(&titleLen); err != nil {
		return v, err
	}
	v.TitleType = StringType(titleType)
	if v.TitleType > stringTypeMax || titleLen == 0 {
		return v, ErrBadMessage
	}
	title, err := m.SpanRequired(int(titleLen))
	if err != nil {
		return v, err
	}
	v.Title = title
	data, err := m.SpanRemaining()
	if err != nil {
		return v, err
	}
	v.Data = data
	return v, m.Complete()
}
