// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// Decoders for the on-disk DSP0267 firmware package layout: the package
// header, one firmware-device identifier record per target device, and one
// component-image-information entry per component. This is the in-memory
// wire decode the fwpkg package's mmap reader hands bytes to; it knows
// nothing about files or signatures itself.

const fwupComponentBitmapMultiple = 8

// PackageHeaderInfo is the decoded fixed portion of a firmware package
// header (DSP0267 §6.1), preceding the package version string.
type PackageHeaderInfo struct {
	UUID                     [16]byte
	HeaderFormatVersion      uint8
	HeaderSize               uint16
	ReleaseDateTime          [13]byte
	ComponentBitmapBitLength uint16
	VersionStringType        StringType
	VersionStringLength      uint8
}

const packageHeaderInfoLength = 16 + 1 + 2 + 13 + 2 + 1 + 1

// EncodePackageHeaderInfo writes the fixed package-header fields followed
// by the package version string, the inverse of DecodePackageHeaderInfo.
// HeaderSize is recomputed from the version string length rather than
// trusted from info, so callers never have to keep the two in sync by
// hand.
func EncodePackageHeaderInfo(info PackageHeaderInfo, ver VersionString, m *MsgBuf) error {
	if info.VersionStringType > stringTypeMax || len(ver.Data) == 0 {
		return ErrInvalidArgument
	}
	if info.ComponentBitmapBitLength%fwupComponentBitmapMultiple != 0 {
		return ErrInvalidArgument
	}
	info.HeaderSize = uint16(packageHeaderInfoLength + len(ver.Data))
	info.VersionStringLength = uint8(len(ver.Data))

	if err := m.InsertArray(info.UUID[:]); err != nil {
		return err
	}
	if err := m.InsertUint8(info.HeaderFormatVersion); err != nil {
		return err
	}
	if err := m.InsertUint16(info.HeaderSize); err != nil {
		return err
	}
	if err := m.InsertArray(info.ReleaseDateTime[:]); err != nil {
		return err
	}
	if err := m.InsertUint16(info.ComponentBitmapBitLength); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(info.VersionStringType)); err != nil {
		return err
	}
	if err := m.InsertUint8(info.VersionStringLength); err != nil {
		return err
	}
	return m.InsertArray(ver.Data)
}

// DecodePackageHeaderInfo reads the fixed package-header fields and
// borrows the trailing package version string from m.
func DecodePackageHeaderInfo(m *MsgBuf) (PackageHeaderInfo, VersionString, error) {
	var info PackageHeaderInfo
	var ver VersionString

	if err := m.ExtractArray(info.UUID[:]); err != nil {
		return info, ver, err
	}
	if err := m.ExtractUint8(&info.HeaderFormatVersion); err != nil {
		return info, ver, err
	}
	if err := m.ExtractUint16(&info.HeaderSize); err != nil {
		return info, ver, err
	}
	if err := m.ExtractArray(info.ReleaseDateTime[:]); err != nil {
		return info, ver, err
	}
	if err := m.ExtractUint16(&info.ComponentBitmapBitLength); err != nil {
		return info, ver, err
	}
	var t uint8
	if err := m.ExtractUint8(&t); err != nil {
		return info, ver, err
	}
	info.VersionStringType = StringType(t)
	if err := m.ExtractUint8(&info.VersionStringLength); err != nil {
		return info, ver, err
	}
	if info.VersionStringType > stringTypeMax || info.VersionStringLength == 0 {
		return info, ver, ErrBadMessage
	}
	if info.ComponentBitmapBitLength%fwupComponentBitmapMultiple != 0 {
		return info, ver, ErrBadMessage
	}
	data, err := m.SpanRequired(int(info.VersionStringLength))
	if err != nil {
		return info, ver, err
	}
	ver = VersionString{Type: info.VersionStringType, Data: data}
	return info, ver, nil
}

// FirmwareDeviceIDRecord is the decoded fixed portion of one firmware
// device identifier record (DSP0267 §6.2); ApplicableComponents,
// ComponentSetVersion, Descriptors and DevicePackageData all borrow their
// backing bytes from the decoded message.
type FirmwareDeviceIDRecord struct {
	RecordLength          uint16
	DescriptorCount       uint8
	UpdateOptionFlags     UpdateOptionFlags
	ApplicableComponents  []byte
	ComponentSetVersion   VersionString
	Descriptors           []byte
	DevicePackageData     []byte
}

const firmwareDeviceIDRecordFixedLength = 2 + 1 + 4 + 1 + 1 + 2

// DecodeFirmwareDeviceIDRecord reads one firmware device identifier
// record. componentBitmapBitLength comes from the enclosing
// PackageHeaderInfo and determines the width of ApplicableComponents.
func DecodeFirmwareDeviceIDRecord(m *MsgBuf, componentBitmapBitLength uint16) (FirmwareDeviceIDRecord, error) {
	var rec FirmwareDeviceIDRecord
	if componentBitmapBitLength%fwupComponentBitmapMultiple != 0 {
		return rec, ErrBadMessage
	}
	if err := m.ExtractUint16(&rec.RecordLength); err != nil {
		return rec, err
	}
	if err := m.ExtractUint8(&rec.DescriptorCount); err != nil {
		return rec, err
	}
	var flags uint32
	if err := m.ExtractUint32(&flags); err != nil {
		return rec, err
	}
	rec.UpdateOptionFlags = UpdateOptionFlags(flags)
	var verType uint8
	if err := m.ExtractUint8(&verType); err != nil {
		return rec, err
	}
	var verLen uint8
	if err := m.ExtractUint8(&verLen); err != nil {
		return rec, err
	}
	if StringType(verType) > stringTypeMax || verLen == 0 {
		return rec, ErrBadMessage
	}
	var pkgDataLength uint16
	if err := m.ExtractUint16(&pkgDataLength); err != nil {
		return rec, err
	}

	applicableLength := int(componentBitmapBitLength / fwupComponentBitmapMultiple)
	minLength := firmwareDeviceIDRecordFixedLength + applicableLength + int(verLen) + int(pkgDataLength)
	if int(rec.RecordLength) < minLength {
		return rec, ErrOverflow
	}

	applicable, err := m.SpanRequired(applicableLength)
	if err != nil {
		return rec, err
	}
	rec.ApplicableComponents = applicable

	verData, err := m.SpanRequired(int(verLen))
	if err != nil {
		return rec, err
	}
	rec.ComponentSetVersion = VersionString{Type: StringType(verType), Data: verData}

	descriptorsLength := int(rec.RecordLength) - minLength
	descriptors, err := m.SpanRequired(descriptorsLength)
	if err != nil {
		return rec, err
	}
	rec.Descriptors = descriptors

	if pkgDataLength > 0 {
		pkgData, err := m.SpanRequired(int(pkgDataLength))
		if err != nil {
			return rec, err
		}
		rec.DevicePackageData = pkgData
	}
	return rec, nil
}

// ComponentImageInfo is the decoded fixed portion of one component image
// information entry (DSP0267 §6.3); ComponentVersion borrows its backing
// bytes from the decoded message.
type ComponentImageInfo struct {
	Classification          ComponentClassification
	Identifier              uint16
	ComparisonStamp         uint32
	Options                 uint16
	RequestedActivationMethod uint16
	LocationOffset          uint32
	Size                    uint32
	ComponentVersion        VersionString
}

const componentImageInfoFixedLength = 2 + 2 + 4 + 2 + 2 + 4 + 4 + 1 + 1

// EncodeComponentImageInfo writes one component image information entry,
// the inverse of DecodeComponentImageInfo. Like the decoder, it rejects a
// zero LocationOffset or Size.
func EncodeComponentImageInfo(info ComponentImageInfo, m *MsgBuf) error {
	if info.ComponentVersion.Type > stringTypeMax || len(info.ComponentVersion.Data) == 0 {
		return ErrInvalidArgument
	}
	if info.LocationOffset == 0 || info.Size == 0 {
		return ErrInvalidArgument
	}
	if err := m.InsertUint16(uint16(info.Classification)); err != nil {
		return err
	}
	if err := m.InsertUint16(info.Identifier); err != nil {
		return err
	}
	if err := m.InsertUint32(info.ComparisonStamp); err != nil {
		return err
	}
	if err := m.InsertUint16(info.Options); err != nil {
		return err
	}
	if err := m.InsertUint16(info.RequestedActivationMethod); err != nil {
		return err
	}
	if err := m.InsertUint32(info.LocationOffset); err != nil {
		return err
	}
	if err := m.InsertUint32(info.Size); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(info.ComponentVersion.Type)); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(len(info.ComponentVersion.Data))); err != nil {
		return err
	}
	return m.InsertArray(info.ComponentVersion.Data)
}

// DecodeComponentImageInfo reads one component image information entry.
// LocationOffset and Size of zero are rejected, matching libpldm's
// explicit check that every component image actually occupies space in
// the package.
func DecodeComponentImageInfo(m *MsgBuf) (ComponentImageInfo, error) {
	var info ComponentImageInfo
	var class uint16
	if err := m.ExtractUint16(&class); err != nil {
		return info, err
	}
	info.Classification = ComponentClassification(class)
	if err := m.ExtractUint16(&info.Identifier); err != nil {
		return info, err
	}
	if err := m.ExtractUint32(&info.ComparisonStamp); err != nil {
		return info, err
	}
	if err := m.ExtractUint16(&info.Options); err != nil {
		return info, err
	}
	if err := m.ExtractUint16(&info.RequestedActivationMethod); err != nil {
		return info, err
	}
	if err := m.ExtractUint32(&info.LocationOffset); err != nil {
		return info, err
	}
	if err := m.ExtractUint32(&info.Size); err != nil {
		return info, err
	}
	var verType, verLen uint8
	if err := m.ExtractUint8(&verType); err != nil {
		return info, err
	}
	if err := m.ExtractUint8(&verLen); err != nil {
		return info, err
	}
	if StringType(verType) > stringTypeMax || verLen == 0 {
		return info, ErrBadMessage
	}
	if info.LocationOffset == 0 || info.Size == 0 {
		return info, ErrBadMessage
	}
	data, err := m.SpanRequired(int(verLen))
	if err != nil {
		return info, err
	}
	info.ComponentVersion = VersionString{Type: StringType(verType), Data: data}
	return info, nil
}
