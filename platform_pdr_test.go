// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import "testing"

// numericSensorPDRUint8 is a power-supply temperature sensor PDR with
// every tagged-width field one byte wide.
func numericSensorPDRUint8() []byte {
	return []byte{
		0x01, 0x00, 0x00, 0x00, // record handle
		0x01,       // header version
		0x02,       // type: numeric sensor
		0x00, 0x00, // record change number
		59, 0x00, // data length
		0x00, 0x00, // terminus handle
		0x01, 0x00, // sensor ID
		120, 0x00, // entity type: power supply
		0x01, 0x00, // entity instance
		0x01, 0x00, // container ID
		0x00,                   // sensor init
		0x00,                   // no auxiliary names PDR
		0x02,                   // base unit: degrees C
		0x00,                   // unit modifier
		0x00,                   // rate unit
		0x00,                   // base OEM unit handle
		0x00,                   // aux unit
		0x00,                   // aux unit modifier
		0x00,                   // aux rate unit
		0x00,                   // rel
		0x00,                   // aux OEM unit handle
		0x01,                   // is linear
		0x00,                   // sensor data size: uint8
		0x00, 0x00, 0xc0, 0x3f, // resolution = 1.5
		0x00, 0x00, 0x80, 0x3f, // offset = 1.0
		0x00, 0x00, // accuracy
		0x00,                   // plus tolerance
		0x00,                   // minus tolerance
		0x03,                   // hysteresis = 3
		0x00,                   // supported thresholds
		0x00,                   // threshold volatility
		0x00, 0x00, 0x80, 0x3f, // state transition interval = 1.0
		0x00, 0x00, 0x80, 0x3f, // update interval = 1.0
		0xff, // max readable = 255
		0x00, // min readable = 0
		0x00, // range field format: uint8
		0x00, // range field support
		50,   // nominal
		60,   // normal max
		40,   // normal min
		70,   // warning high
		30,   // warning low
		80,   // critical high
		20,   // critical low
		90,   // fatal high
		10,   // fatal low
	}
}

func TestDecodeNumericSensorPDRUint8(t *testing.T) {
	pdr, err := DecodeNumericSensorPDR(numericSensorPDRUint8())
	if err != nil {
		t.Fatalf("DecodeNumericSensorPDR: %v", err)
	}
	if pdr.Header.RecordHandle != 1 || pdr.Header.Version != 1 ||
		pdr.Header.Type != PDRTypeNumericSensor {
		t.Fatalf("header %+v", pdr.Header)
	}
	if pdr.SensorID != 1 || pdr.EntityType != 120 || pdr.EntityInstanceNum != 1 ||
		pdr.ContainerID != 1 {
		t.Fatalf("identity %+v", pdr)
	}
	if !pdr.IsLinear || pdr.SensorAuxiliaryNamesPDR {
		t.Fatalf("flags %+v", pdr)
	}
	if pdr.SensorDataSize != SensorDataSizeUint8 {
		t.Fatalf("SensorDataSize = %d", pdr.SensorDataSize)
	}
	if pdr.Resolution != 1.5 || pdr.Offset != 1.0 {
		t.Fatalf("resolution/offset = %v/%v", pdr.Resolution, pdr.Offset)
	}
	if pdr.Hysteresis.Value != 3 || pdr.MaxReadable.Value != 255 || pdr.MinReadable.Value != 0 {
		t.Fatalf("tagged values %+v", pdr)
	}
	if pdr.RangeFieldFormat != RangeFieldFormatUint8 {
		t.Fatalf("RangeFieldFormat = %d", pdr.RangeFieldFormat)
	}
	if pdr.NominalValue.Int != 50 || pdr.NormalMax.Int != 60 || pdr.NormalMin.Int != 40 ||
		pdr.WarningHigh.Int != 70 || pdr.WarningLow.Int != 30 ||
		pdr.CriticalHigh.Int != 80 || pdr.CriticalLow.Int != 20 ||
		pdr.FatalHigh.Int != 90 || pdr.FatalLow.Int != 10 {
		t.Fatalf("range fields %+v", pdr)
	}
}

func TestDecodeNumericSensorPDRRejectsBadTags(t *testing.T) {
	data := numericSensorPDRUint8()
	data[32] = 6 // sensor data size past SensorDataSizeMax
	if _, err := DecodeNumericSensorPDR(data); err != ErrInvalidArgument {
		t.Fatalf("bad sensorDataSize = %v, want ErrInvalidArgument", err)
	}
	data = numericSensorPDRUint8()
	data[58] = 7 // range field format past RangeFieldFormatMax
	if _, err := DecodeNumericSensorPDR(data); err != ErrInvalidArgument {
		t.Fatalf("bad rangeFieldFormat = %v, want ErrInvalidArgument", err)
	}
}

func TestDecodeNumericEffecterPDRUint8(t *testing.T) {
	data := []byte{
		0x02, 0x00, 0x00, 0x00, // record handle
		0x01,       // header version
		0x09,       // type: numeric effecter
		0x00, 0x00, // record change number
		53, 0x00, // data length
		0x00, 0x00, // terminus handle
		0x02, 0x00, // effecter ID
		120, 0x00, // entity type
		0x01, 0x00, // entity instance
		0x01, 0x00, // container ID
		0x00, 0x00, // effecter semantic ID
		0x00,                   // effecter init
		0x00,                   // no auxiliary names
		0x02,                   // base unit
		0x00,                   // unit modifier
		0x00,                   // rate unit
		0x00,                   // base OEM unit handle
		0x00,                   // aux unit
		0x00,                   // aux unit modifier
		0x00,                   // aux rate unit
		0x00,                   // aux OEM unit handle
		0x01,                   // is linear
		0x00,                   // effecter data size: uint8
		0x00, 0x00, 0x80, 0x3f, // resolution = 1.0
		0x00, 0x00, 0x00, 0x00, // offset = 0.0
		0x00, 0x00, // accuracy
		0x00,                   // plus tolerance
		0x00,                   // minus tolerance
		0x00, 0x00, 0x80, 0x3f, // state transition interval = 1.0
		0x00, 0x00, 0x80, 0x3f, // transition interval = 1.0
		100,  // max settable
		0x00, // min settable
		0x00, // range field format: uint8
		0x00, // range field support
		50,   // nominal
		60,   // normal max
		40,   // normal min
		100,  // rated max
		0,    // rated min
	}
	pdr, err := DecodeNumericEffecterPDR(data)
	if err != nil {
		t.Fatalf("DecodeNumericEffecterPDR: %v", err)
	}
	if pdr.EffecterID != 2 || pdr.EntityType != 120 || !pdr.IsLinear {
		t.Fatalf("identity %+v", pdr)
	}
	if pdr.MaxSettable.Value != 100 || pdr.MinSettable.Value != 0 {
		t.Fatalf("settable bounds %+v", pdr)
	}
	if pdr.RatedMax.Int != 100 || pdr.RatedMin.Int != 0 || pdr.NominalValue.Int != 50 {
		t.Fatalf("range fields %+v", pdr)
	}
}

func TestDecodeEntityAuxiliaryNamesPDR(t *testing.T) {
	names := []byte{
		'e', 'n', 0x00, // ASCII language tag
		0x00, 'P', 0x00, 'S', 0x00, 'U', 0x00, 0x00, // UTF-16BE name
		'd', 'e', 0x00,
		0x00, 'N', 0x00, 'T', 0x00, 0x00,
	}
	data := []byte{
		0x03, 0x00, 0x00, 0x00, // record handle
		0x01,       // header version
		0x10,       // type: entity auxiliary names
		0x00, 0x00, // record change number
		0x00, 0x00, // data length (unused by the decoder)
		120, 0x00, // entity type
		0x01, 0x00, // entity instance
		0x01, 0x00, // container ID
		0x00, // shared name count
		0x02, // name string count
	}
	data = append(data, names...)
	pdr, err := DecodeEntityAuxiliaryNamesPDR(data)
	if err != nil {
		t.Fatalf("DecodeEntityAuxiliaryNamesPDR: %v", err)
	}
	if pdr.Container.Type != 120 || len(pdr.Names) != 2 {
		t.Fatalf("got %+v", pdr)
	}
	if pdr.Names[0].Tag != "en" || pdr.Names[0].Name != "PSU" {
		t.Fatalf("names[0] = %+v", pdr.Names[0])
	}
	if pdr.Names[1].Tag != "de" || pdr.Names[1].Name != "NT" {
		t.Fatalf("names[1] = %+v", pdr.Names[1])
	}
}

func TestDecodeEntityAuxiliaryNamesPDRRejectsMissingTerminator(t *testing.T) {
	data := []byte{
		0x03, 0x00, 0x00, 0x00,
		0x01, 0x10, 0x00, 0x00, 0x00, 0x00,
		120, 0x00, 0x01, 0x00, 0x01, 0x00,
		0x00, // shared name count
		0x01, // name string count
		'e', 'n', 0x00,
		0x00, 'P', 0x00, 'S', // UTF-16 name with no terminator
	}
	if _, err := DecodeEntityAuxiliaryNamesPDR(data); err != ErrOverflow {
		t.Fatalf("DecodeEntityAuxiliaryNamesPDR(unterminated) = %v, want ErrOverflow", err)
	}
}

func TestDecodeFileDescriptorPDR(t *testing.T) {
	data := []byte{
		0x04, 0x00, 0x00, 0x00, // record handle
		0x01,       // header version
		30,         // type: file descriptor
		0x00, 0x00, // record change number
		0x00, 0x00, // data length (unused by the decoder)
		0x01, 0x00, // terminus handle
		0x05, 0x00, // file identifier
		120, 0x00, 0x01, 0x00, 0x01, 0x00, // container entity
		0x00, 0x00, // superior directory file identifier
		0x01, 0x00, // file classification
		0x02, 0x00, // OEM file classification
		0x03, 0x00, 0x00, 0x00, // file capabilities
		0xf1, 0xf0, 0xf0, 0x00, // file version
		0x00, 0x10, 0x00, 0x00, // file maximum size
		0x01, // file maximum descriptor count
		0x04, 'b', 'o', 'o', 't', // file name
		0x03, 'o', 'e', 'm', // OEM classification name
	}
	pdr, err := DecodeFileDescriptorPDR(data)
	if err != nil {
		t.Fatalf("DecodeFileDescriptorPDR: %v", err)
	}
	if pdr.FileIdentifier != 5 || pdr.FileName != "boot" {
		t.Fatalf("got %+v", pdr)
	}
	if pdr.OEMFileClassification != 2 || pdr.OEMClassificationName != "oem" {
		t.Fatalf("OEM fields %+v", pdr)
	}
}

func TestDecodeFileDescriptorPDRWithoutOEMName(t *testing.T) {
	data := []byte{
		0x04, 0x00, 0x00, 0x00,
		0x01, 30, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x00,
		0x05, 0x00,
		120, 0x00, 0x01, 0x00, 0x01, 0x00,
		0x00, 0x00,
		0x01, 0x00,
		0x00, 0x00, // OEM file classification = 0: no trailing name
		0x03, 0x00, 0x00, 0x00,
		0xf1, 0xf0, 0xf0, 0x00,
		0x00, 0x10, 0x00, 0x00,
		0x01,
		0x04, 'b', 'o', 'o', 't',
	}
	pdr, err := DecodeFileDescriptorPDR(data)
	if err != nil {
		t.Fatalf("DecodeFileDescriptorPDR: %v", err)
	}
	if pdr.OEMClassificationName != "" {
		t.Fatalf("unexpected OEM name %q", pdr.OEMClassificationName)
	}
}
