// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// SensorDataSize tags the wire width of a numeric sensor/effecter value
// (DSP0248 §27.1). It is the one tag every numeric PDR and every
// GetSensorReading/GetNumericEffecterValue payload dispatches on before
// reading the value itself.
type SensorDataSize uint8

const (
	SensorDataSizeUint8  SensorDataSize = 0
	SensorDataSizeSint8  SensorDataSize = 1
	SensorDataSizeUint16 SensorDataSize = 2
	SensorDataSizeSint16 SensorDataSize = 3
	SensorDataSizeUint32 SensorDataSize = 4
	SensorDataSizeSint32 SensorDataSize = 5
	// SensorDataSizeMax bounds valid tag values (PLDM_SENSOR_DATA_SIZE_MAX).
	SensorDataSizeMax = SensorDataSizeSint32
)

// SensorValue is the decoded form of a tagged-union numeric value.
// Every size is widened into a uint32 (signed sizes through a
// sign-extended int32 bit pattern) so callers get one field regardless
// of tag.
type SensorValue struct {
	Size  SensorDataSize
	Value uint32
}

func (sz SensorDataSize) byteWidth() (int, error) {
	switch sz {
	case SensorDataSizeUint8, SensorDataSizeSint8:
		return 1, nil
	case SensorDataSizeUint16, SensorDataSizeSint16:
		return 2, nil
	case SensorDataSizeUint32, SensorDataSizeSint32:
		return 4, nil
	default:
		return 0, ErrInvalidArgument
	}
}

// ExtractSensorValue reads a tagged-width numeric value from m according to
// sz, widening it into a uint32 the same way the C union-less prototype
// does: unsigned sizes zero-extend, signed sizes sign-extend through int32.
func ExtractSensorValue(m *MsgBuf, sz SensorDataSize) (SensorValue, error) {
	v := SensorValue{Size: sz}
	switch sz {
	case SensorDataSizeUint8:
		var u uint8
		if err := m.ExtractUint8(&u); err != nil {
			return v, err
		}
		v.Value = uint32(u)
	case SensorDataSizeSint8:
		var s int8
		if err := m.ExtractInt8(&s); err != nil {
			return v, err
		}
		v.Value = uint32(int32(s))
	case SensorDataSizeUint16:
		var u uint16
		if err := m.ExtractUint16(&u); err != nil {
			return v, err
		}
		v.Value = uint32(u)
	case SensorDataSizeSint16:
		var s int16
		if err := m.ExtractInt16(&s); err != nil {
			return v, err
		}
		v.Value = uint32(int32(s))
	case SensorDataSizeUint32:
		var u uint32
		if err := m.ExtractUint32(&u); err != nil {
			return v, err
		}
		v.Value = u
	case SensorDataSizeSint32:
		var s int32
		if err := m.ExtractInt32(&s); err != nil {
			return v, err
		}
		v.Value = uint32(s)
	default:
		return v, ErrInvalidArgument
	}
	return v, nil
}

// InsertSensorValue writes v.Value back out at v.Size's width, truncating
// if necessary; it is the caller's responsibility to have produced a
// value that fits.
func InsertSensorValue(m *MsgBuf, v SensorValue) error {
	switch v.Size {
	case SensorDataSizeUint8, SensorDataSizeSint8:
		return m.InsertUint8(uint8(v.Value))
	case SensorDataSizeUint16, SensorDataSizeSint16:
		return m.InsertUint16(uint16(v.Value))
	case SensorDataSizeUint32, SensorDataSizeSint32:
		return m.InsertUint32(v.Value)
	default:
		return ErrInvalidArgument
	}
}

// RangeFieldFormat tags the wire width of the range-field values
// (nominal/normal/warning/critical/fatal) in a numeric sensor PDR: it is
// the same dispatch shape as SensorDataSize, with the same six integer
// widths plus a real32 option.
type RangeFieldFormat uint8

const (
	RangeFieldFormatUint8  RangeFieldFormat = 0
	RangeFieldFormatSint8  RangeFieldFormat = 1
	RangeFieldFormatUint16 RangeFieldFormat = 2
	RangeFieldFormatSint16 RangeFieldFormat = 3
	RangeFieldFormatUint32 RangeFieldFormat = 4
	RangeFieldFormatSint32 RangeFieldFormat = 5
	RangeFieldFormatReal32 RangeFieldFormat = 6
	RangeFieldFormatMax                     = RangeFieldFormatReal32
)

// RangeFieldValue is the decoded form of one range-field entry.
type RangeFieldValue struct {
	Format RangeFieldFormat
	Real   float32
	Int    int64
}

// ExtractRangeField reads one range-field value dispatched on format.
func ExtractRangeField(m *MsgBuf, format RangeFieldFormat) (RangeFieldValue, error) {
	v := RangeFieldValue{Format: format}
	switch format {
	case RangeFieldFormatUint8:
		var u uint8
		err := m.ExtractUint8(&u)
		v.Int = int64(u)
		return v, err
	case RangeFieldFormatSint8:
		var s int8
		err := m.ExtractInt8(&s)
		v.Int = int64(s)
		return v, err
	case RangeFieldFormatUint16:
		var u uint16
		err := m.ExtractUint16(&u)
		v.Int = int64(u)
		return v, err
	case RangeFieldFormatSint16:
		var s int16
		err := m.ExtractInt16(&s)
		v.Int = int64(s)
		return v, err
	case RangeFieldFormatUint32:
		var u uint32
		err := m.ExtractUint32(&u)
		v.Int = int64(u)
		return v, err
	case RangeFieldFormatSint32:
		var s int32
		err := m.ExtractInt32(&s)
		v.Int = int64(s)
		return v, err
	case RangeFieldFormatReal32:
		err := m.ExtractFloat32(&v.Real)
		return v, err
	default:
		return v, ErrInvalidArgument
	}
}

// PDRType identifies the record type of a platform descriptor record
// (DSP0248 Table 1).
type PDRType uint8

const (
	PDRTypeTerminusLocator      PDRType = 1
	PDRTypeNumericSensor        PDRType = 2
	PDRTypeNumericSensorInit    PDRType = 3
	PDRTypeStateSensor          PDRType = 4
	PDRTypeStateSensorInit      PDRType = 5
	PDRTypeSensorAuxiliaryNames PDRType = 6
	PDRTypeOEMUnit              PDRType = 7
	PDRTypeOEMStateSet         PDRType = 8
	PDRTypeNumericEffecter      PDRType = 9
	PDRTypeNumericEffecterInit  PDRType = 10
	PDRTypeStateEffecter        PDRType = 11
	PDRTypeStateEffecterInit    PDRType = 12
	PDRTypeEntityAssociation    PDRType = 15
	PDRTypeEntityAuxiliaryNames PDRType = 16
	PDRTypeFRURecordSet         PDRType = 20
	PDRTypeFileDescriptor       PDRType = 30
)

// PDRHeader is the 10-byte common header at the front of every PDR record
// (record_handle, version, type, change_num, length).
type PDRHeader struct {
	RecordHandle   uint32
	Version        uint8
	Type           PDRType
	RecordChangeNum uint16
	Length         uint16
}

// PackPDRHeader writes a PDR's common header.
func PackPDRHeader(h PDRHeader, m *MsgBuf) error {
	if err := m.InsertUint32(h.RecordHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(h.Version); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(h.Type)); err != nil {
		return err
	}
	if err := m.InsertUint16(h.RecordChangeNum); err != nil {
		return err
	}
	return m.InsertUint16(h.Length)
}

// UnpackPDRHeader reads a PDR's common header.
func UnpackPDRHeader(m *MsgBuf) (PDRHeader, error) {
	var h PDRHeader
	if err := m.ExtractUint32(&h.RecordHandle); err != nil {
		return h, err
	}
	if err := m.ExtractUint8(&h.Version); err != nil {
		return h, err
	}
	var t uint8
	if err := m.ExtractUint8(&t); err != nil {
		return h, err
	}
	h.Type = PDRType(t)
	if err := m.ExtractUint16(&h.RecordChangeNum); err != nil {
		return h, err
	}
	err := m.ExtractUint16(&h.Length)
	return h, err
}
