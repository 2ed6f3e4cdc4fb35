// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import (
	"golang.org/x/text/encoding/unicode"
)

// NumericSensorPDR is the decoded form of a numeric sensor PDR (DSP0248
// Table 78). Every field of the wire layout is present; the tagged-width
// fields (hysteresis, min/max readable, the range bounds) carry the tag
// they were decoded under.
type NumericSensorPDR struct {
	Header                  PDRHeader
	TerminusHandle          uint16
	SensorID                uint16
	EntityType              uint16
	EntityInstanceNum       uint16
	ContainerID             uint16
	SensorInit              uint8
	SensorAuxiliaryNamesPDR bool
	BaseUnit                uint8
	UnitModifier            int8
	RateUnit                uint8
	BaseOEMUnitHandle       uint8
	AuxUnit                 uint8
	AuxUnitModifier         int8
	AuxRateUnit             uint8
	Rel                     uint8
	AuxOEMUnitHandle        uint8
	IsLinear                bool
	SensorDataSize          SensorDataSize
	Resolution              float32
	Offset                  float32
	Accuracy                uint16
	PlusTolerance           uint8
	MinusTolerance          uint8
	Hysteresis              SensorValue
	SupportedThresholds     uint8
	ThresholdVolatility     uint8
	StateTransitionInterval float32
	UpdateInterval          float32
	MaxReadable             SensorValue
	MinReadable             SensorValue
	RangeFieldFormat        RangeFieldFormat
	RangeFieldSupport       uint8
	NominalValue            RangeFieldValue
	NormalMax               RangeFieldValue
	NormalMin               RangeFieldValue
	WarningHigh             RangeFieldValue
	WarningLow              RangeFieldValue
	CriticalHigh            RangeFieldValue
	CriticalLow             RangeFieldValue
	FatalHigh               RangeFieldValue
	FatalLow                RangeFieldValue
}

// numericSensorPDRMinLength is the size of the record with every
// tagged-width field at its narrowest (one byte).
const numericSensorPDRMinLength = 10 + 10 + 12 + 1 + 4 + 4 + 2 + 1 + 1 + 1 + 1 + 1 + 4 + 4 + 1 + 1 + 1 + 1 + 9

// DecodeNumericSensorPDR parses a numeric sensor PDR record. The two
// width tags (sensor_data_size, range_field_format) are each read once
// and drive every subsequent tagged field.
func DecodeNumericSensorPDR(data []byte) (NumericSensorPDR, error) {
	var pdr NumericSensorPDR
	m, err := NewMsgBuf(numericSensorPDRMinLength, data)
	if err != nil {
		return pdr, err
	}
	if pdr.Header, err = UnpackPDRHeader(m); err != nil {
		return pdr, err
	}
	if pdr.Header.Type != PDRTypeNumericSensor {
		return pdr, ErrInvalidArgument
	}
	if err := m.ExtractUint16(&pdr.TerminusHandle); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.SensorID); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.EntityType); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.EntityInstanceNum); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.ContainerID); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.SensorInit); err != nil {
		return pdr, err
	}
	var auxNames uint8
	if err := m.ExtractUint8(&auxNames); err != nil {
		return pdr, err
	}
	pdr.SensorAuxiliaryNamesPDR = auxNames != 0
	if err := m.ExtractUint8(&pdr.BaseUnit); err != nil {
		return pdr, err
	}
	if err := m.ExtractInt8(&pdr.UnitModifier); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.RateUnit); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.BaseOEMUnitHandle); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.AuxUnit); err != nil {
		return pdr, err
	}
	if err := m.ExtractInt8(&pdr.AuxUnitModifier); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.AuxRateUnit); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.Rel); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.AuxOEMUnitHandle); err != nil {
		return pdr, err
	}
	var linear uint8
	if err := m.ExtractUint8(&linear); err != nil {
		return pdr, err
	}
	pdr.IsLinear = linear != 0
	var dataSize uint8
	if err := m.ExtractUint8(&dataSize); err != nil {
		return pdr, err
	}
	pdr.SensorDataSize = SensorDataSize(dataSize)
	if pdr.SensorDataSize > SensorDataSizeMax {
		return pdr, ErrInvalidArgument
	}
	if err := m.ExtractFloat32(&pdr.Resolution); err != nil {
		return pdr, err
	}
	if err := m.ExtractFloat32(&pdr.Offset); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.Accuracy); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.PlusTolerance); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.MinusTolerance); err != nil {
		return pdr, err
	}
	if pdr.Hysteresis, err = ExtractSensorValue(m, pdr.SensorDataSize); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.SupportedThresholds); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.ThresholdVolatility); err != nil {
		return pdr, err
	}
	if err := m.ExtractFloat32(&pdr.StateTransitionInterval); err != nil {
		return pdr, err
	}
	if err := m.ExtractFloat32(&pdr.UpdateInterval); err != nil {
		return pdr, err
	}
	if pdr.MaxReadable, err = ExtractSensorValue(m, pdr.SensorDataSize); err != nil {
		return pdr, err
	}
	if pdr.MinReadable, err = ExtractSensorValue(m, pdr.SensorDataSize); err != nil {
		return pdr, err
	}
	var format uint8
	if err := m.ExtractUint8(&format); err != nil {
		return pdr, err
	}
	pdr.RangeFieldFormat = RangeFieldFormat(format)
	if pdr.RangeFieldFormat > RangeFieldFormatMax {
		return pdr, ErrInvalidArgument
	}
	if err := m.ExtractUint8(&pdr.RangeFieldSupport); err != nil {
		return pdr, err
	}
	for _, dst := range []*RangeFieldValue{
		&pdr.NominalValue, &pdr.NormalMax, &pdr.NormalMin,
		&pdr.WarningHigh, &pdr.WarningLow,
		&pdr.CriticalHigh, &pdr.CriticalLow,
		&pdr.FatalHigh, &pdr.FatalLow,
	} {
		if *dst, err = ExtractRangeField(m, pdr.RangeFieldFormat); err != nil {
			return pdr, err
		}
	}
	return pdr, m.Complete()
}

// NumericEffecterPDR is the decoded form of a numeric effecter PDR
// (DSP0248 Table 88), symmetric with NumericSensorPDR but without the
// hysteresis/threshold fields and with only the five settable bounds.
type NumericEffecterPDR struct {
	Header                  PDRHeader
	TerminusHandle          uint16
	EffecterID              uint16
	EntityType              uint16
	EntityInstanceNum       uint16
	ContainerID             uint16
	EffecterSemanticID      uint16
	EffecterInit            uint8
	EffecterAuxiliaryNames  bool
	BaseUnit                uint8
	UnitModifier            int8
	RateUnit                uint8
	BaseOEMUnitHandle       uint8
	AuxUnit                 uint8
	AuxUnitModifier         int8
	AuxRateUnit             uint8
	AuxOEMUnitHandle        uint8
	IsLinear                bool
	EffecterDataSize        SensorDataSize
	Resolution              float32
	Offset                  float32
	Accuracy                uint16
	PlusTolerance           uint8
	MinusTolerance          uint8
	StateTransitionInterval float32
	TransitionInterval      float32
	MaxSettable             SensorValue
	MinSettable             SensorValue
	RangeFieldFormat        RangeFieldFormat
	RangeFieldSupport       uint8
	NominalValue            RangeFieldValue
	NormalMax               RangeFieldValue
	NormalMin               RangeFieldValue
	RatedMax                RangeFieldValue
	RatedMin                RangeFieldValue
}

const numericEffecterPDRMinLength = 10 + 12 + 11 + 1 + 4 + 4 + 2 + 1 + 1 + 4 + 4 + 1 + 1 + 1 + 1 + 5

// DecodeNumericEffecterPDR parses a numeric effecter PDR record.
func DecodeNumericEffecterPDR(data []byte) (NumericEffecterPDR, error) {
	var pdr NumericEffecterPDR
	m, err := NewMsgBuf(numericEffecterPDRMinLength, data)
	if err != nil {
		return pdr, err
	}
	if pdr.Header, err = UnpackPDRHeader(m); err != nil {
		return pdr, err
	}
	if pdr.Header.Type != PDRTypeNumericEffecter {
		return pdr, ErrInvalidArgument
	}
	if err := m.ExtractUint16(&pdr.TerminusHandle); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.EffecterID); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.EntityType); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.EntityInstanceNum); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.ContainerID); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.EffecterSemanticID); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.EffecterInit); err != nil {
		return pdr, err
	}
	var auxNames uint8
	if err := m.ExtractUint8(&auxNames); err != nil {
		return pdr, err
	}
	pdr.EffecterAuxiliaryNames = auxNames != 0
	if err := m.ExtractUint8(&pdr.BaseUnit); err != nil {
		return pdr, err
	}
	if err := m.ExtractInt8(&pdr.UnitModifier); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.RateUnit); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.BaseOEMUnitHandle); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.AuxUnit); err != nil {
		return pdr, err
	}
	if err := m.ExtractInt8(&pdr.AuxUnitModifier); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.AuxRateUnit); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.AuxOEMUnitHandle); err != nil {
		return pdr, err
	}
	var linear uint8
	if err := m.ExtractUint8(&linear); err != nil {
		return pdr, err
	}
	pdr.IsLinear = linear != 0
	var dataSize uint8
	if err := m.ExtractUint8(&dataSize); err != nil {
		return pdr, err
	}
	pdr.EffecterDataSize = SensorDataSize(dataSize)
	if pdr.EffecterDataSize > SensorDataSizeMax {
		return pdr, ErrInvalidArgument
	}
	if err := m.ExtractFloat32(&pdr.Resolution); err != nil {
		return pdr, err
	}
	if err := m.ExtractFloat32(&pdr.Offset); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.Accuracy); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.PlusTolerance); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.MinusTolerance); err != nil {
		return pdr, err
	}
	if err := m.ExtractFloat32(&pdr.StateTransitionInterval); err != nil {
		return pdr, err
	}
	if err := m.ExtractFloat32(&pdr.TransitionInterval); err != nil {
		return pdr, err
	}
	if pdr.MaxSettable, err = ExtractSensorValue(m, pdr.EffecterDataSize); err != nil {
		return pdr, err
	}
	if pdr.MinSettable, err = ExtractSensorValue(m, pdr.EffecterDataSize); err != nil {
		return pdr, err
	}
	var format uint8
	if err := m.ExtractUint8(&format); err != nil {
		return pdr, err
	}
	pdr.RangeFieldFormat = RangeFieldFormat(format)
	if pdr.RangeFieldFormat > RangeFieldFormatMax {
		return pdr, ErrInvalidArgument
	}
	if err := m.ExtractUint8(&pdr.RangeFieldSupport); err != nil {
		return pdr, err
	}
	for _, dst := range []*RangeFieldValue{
		&pdr.NominalValue, &pdr.NormalMax, &pdr.NormalMin,
		&pdr.RatedMax, &pdr.RatedMin,
	} {
		if *dst, err = ExtractRangeField(m, pdr.RangeFieldFormat); err != nil {
			return pdr, err
		}
	}
	return pdr, m.CompleteConsumed()
}

// EntityAuxName is one (language tag, name) pair from an
// entity-auxiliary-names PDR. Tag is the ISO-646 ASCII language tag; Name
// is transcoded from the wire's UTF-16BE.
type EntityAuxName struct {
	Tag  string
	Name string
}

// EntityAuxiliaryNamesPDR is the decoded form of an entity-auxiliary-names
// PDR (DSP0248 Table 95).
type EntityAuxiliaryNamesPDR struct {
	Header          PDRHeader
	Container       Entity
	SharedNameCount uint8
	Names           []EntityAuxName
}

// DecodeEntityAuxiliaryNamesPDR parses an entity-auxiliary-names PDR. The
// name region holds name_string_count pairs of (ASCII tag, UTF-16BE name);
// it is walked twice, once per string kind: pass one validates and
// collects the UTF-16 names, pass two the ASCII tags, so a malformed
// pair fails the decode regardless of which half is broken.
func DecodeEntityAuxiliaryNamesPDR(data []byte) (EntityAuxiliaryNamesPDR, error) {
	var pdr EntityAuxiliaryNamesPDR
	m, err := NewMsgBuf(10 + 6 + 2, data)
	if err != nil {
		return pdr, err
	}
	if pdr.Header, err = UnpackPDRHeader(m); err != nil {
		return pdr, err
	}
	if pdr.Header.Type != PDRTypeEntityAuxiliaryNames {
		return pdr, ErrInvalidArgument
	}
	if pdr.Container, err = extractEntity(m); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.SharedNameCount); err != nil {
		return pdr, err
	}
	var count uint8
	if err := m.ExtractUint8(&count); err != nil {
		return pdr, err
	}
	names, err := m.SpanRemaining()
	if err != nil {
		return pdr, err
	}

	utf16Names := make([][]byte, count)
	src, err := NewMsgBuf(len(names), names)
	if err != nil {
		return pdr, err
	}
	for i := 0; i < int(count); i++ {
		if _, err := src.SpanStringASCII(); err != nil {
			return pdr, err
		}
		if utf16Names[i], err = src.SpanStringUTF16(); err != nil {
			return pdr, err
		}
	}
	if err := src.CompleteConsumed(); err != nil {
		return pdr, err
	}

	src, err = NewMsgBuf(len(names), names)
	if err != nil {
		return pdr, err
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	pdr.Names = make([]EntityAuxName, count)
	for i := 0; i < int(count); i++ {
		tag, err := src.SpanStringASCII()
		if err != nil {
			return pdr, err
		}
		if _, err := src.SpanStringUTF16(); err != nil {
			return pdr, err
		}
		pdr.Names[i].Tag = string(tag[:len(tag)-1])
		name, err := dec.Bytes(utf16Names[i][:len(utf16Names[i])-2])
		if err != nil {
			return pdr, err
		}
		pdr.Names[i].Name = string(name)
	}
	return pdr, m.Complete()
}

// FileDescriptorPDR is the decoded form of a file descriptor PDR
// (DSP0248 v1.3). OEMClassificationName is present on the wire only when
// OEMFileClassification is non-zero.
type FileDescriptorPDR struct {
	Header                          PDRHeader
	TerminusHandle                  uint16
	FileIdentifier                  uint16
	Container                       Entity
	SuperiorDirectoryFileIdentifier uint16
	FileClassification              uint16
	OEMFileClassification           uint16
	FileCapabilities                uint32
	FileVersion                     Ver32
	FileMaximumSize                 uint32
	FileMaximumDescriptorCount      uint8
	FileName                        string
	OEMClassificationName           string
}

// DecodeFileDescriptorPDR parses a file descriptor PDR record.
func DecodeFileDescriptorPDR(data []byte) (FileDescriptorPDR, error) {
	var pdr FileDescriptorPDR
	m, err := NewMsgBuf(10+2+2+6+2+2+2+4+4+4+1+1, data)
	if err != nil {
		return pdr, err
	}
	if pdr.Header, err = UnpackPDRHeader(m); err != nil {
		return pdr, err
	}
	if pdr.Header.Type != PDRTypeFileDescriptor {
		return pdr, ErrInvalidArgument
	}
	if err := m.ExtractUint16(&pdr.TerminusHandle); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.FileIdentifier); err != nil {
		return pdr, err
	}
	if pdr.Container, err = extractEntity(m); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.SuperiorDirectoryFileIdentifier); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.FileClassification); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.OEMFileClassification); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint32(&pdr.FileCapabilities); err != nil {
		return pdr, err
	}
	if err := m.ExtractArray(pdr.FileVersion[:]); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint32(&pdr.FileMaximumSize); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint8(&pdr.FileMaximumDescriptorCount); err != nil {
		return pdr, err
	}
	var nameLen uint8
	if err := m.ExtractUint8(&nameLen); err != nil {
		return pdr, err
	}
	name, err := m.SpanRequired(int(nameLen))
	if err != nil {
		return pdr, err
	}
	pdr.FileName = string(name)
	if pdr.OEMFileClassification != 0 {
		var oemLen uint8
		if err := m.ExtractUint8(&oemLen); err != nil {
			return pdr, err
		}
		oemName, err := m.SpanRequired(int(oemLen))
		if err != nil {
			return pdr, err
		}
		pdr.OEMClassificationName = string(oemName)
	}
	return pdr, m.CompleteConsumed()
}
