// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import "testing"

func TestGetSensorReadingRespRoundTrip(t *testing.T) {
	resp := GetSensorReadingResp{
		CompletionCode:           Success,
		OperationalState:         SensorEnabled,
		SensorEventMessageEnable: 1,
		PresentState:             2,
		PreviousState:            1,
		EventState:               2,
		Reading:                  SensorValue{Size: SensorDataSizeUint16, Value: 0x1234},
	}
	buf := make([]byte, 3+1+1+1+1+1+1+1+2)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeGetSensorReadingResp(0, resp, m); err != nil {
		t.Fatalf("EncodeGetSensorReadingResp: %v", err)
	}
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	got, err := DecodeGetSensorReadingResp(r)
	if err != nil {
		t.Fatalf("DecodeGetSensorReadingResp: %v", err)
	}
	if got != resp {
		t.Fatalf("got %+v, want %+v", got, resp)
	}
}

func TestDecodeGetSensorReadingRespRejectsBadSizeTag(t *testing.T) {
	buf := make([]byte, 1+1+1+1+1+1+1+1)
	buf[0] = uint8(Success)
	buf[1] = 6 // illegal sensorDataSize
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := DecodeGetSensorReadingResp(r); err != ErrInvalidArgument {
		t.Fatalf("DecodeGetSensorReadingResp(bad tag) = %v, want ErrInvalidArgument", err)
	}
}

func TestSetNumericEffecterValueReqRoundTrip(t *testing.T) {
	var sint32Neg40 int32 = -40
	value := SensorValue{Size: SensorDataSizeSint32, Value: uint32(sint32Neg40)}
	buf := make([]byte, 3+2+1+4)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeSetNumericEffecterValueReq(0, 9, value, m); err != nil {
		t.Fatalf("EncodeSetNumericEffecterValueReq: %v", err)
	}
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	id, got, err := DecodeSetNumericEffecterValueReq(r)
	if err != nil {
		t.Fatalf("DecodeSetNumericEffecterValueReq: %v", err)
	}
	if id != 9 || got != value {
		t.Fatalf("got (%d, %+v)", id, got)
	}
}

func TestGetNumericEffecterValueRespRoundTrip(t *testing.T) {
	resp := GetNumericEffecterValueResp{
		CompletionCode:   Success,
		OperationalState: EffecterEnabledNoUpdate,
		PendingValue:     SensorValue{Size: SensorDataSizeUint8, Value: 10},
		PresentValue:     SensorValue{Size: SensorDataSizeUint8, Value: 20},
	}
	buf := make([]byte, 3+1+1+1+1+1)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeGetNumericEffecterValueResp(0, resp, m); err != nil {
		t.Fatalf("EncodeGetNumericEffecterValueResp: %v", err)
	}
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	got, err := DecodeGetNumericEffecterValueResp(r)
	if err != nil {
		t.Fatalf("DecodeGetNumericEffecterValueResp: %v", err)
	}
	if got != resp {
		t.Fatalf("got %+v, want %+v", got, resp)
	}
}

func TestEncodeGetNumericEffecterValueRespRejectsMismatchedSizes(t *testing.T) {
	resp := GetNumericEffecterValueResp{
		CompletionCode: Success,
		PendingValue:   SensorValue{Size: SensorDataSizeUint8},
		PresentValue:   SensorValue{Size: SensorDataSizeUint16},
	}
	buf := make([]byte, 32)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeGetNumericEffecterValueResp(0, resp, m); err != ErrInvalidArgument {
		t.Fatalf("EncodeGetNumericEffecterValueResp(mismatch) = %v, want ErrInvalidArgument", err)
	}
}

func TestGetStateEffecterStatesRoundTrip(t *testing.T) {
	fields := []EffecterStateReading{
		{EffecterOpState: 1, PendingState: 2, PresentState: 3},
		{EffecterOpState: 0, PendingState: 0, PresentState: 1},
	}
	buf := make([]byte, 3+1+1+3*len(fields))
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeGetStateEffecterStatesResp(0, Success, fields, m); err != nil {
		t.Fatalf("EncodeGetStateEffecterStatesResp: %v", err)
	}
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	cc, got, err := DecodeGetStateEffecterStatesResp(r)
	if err != nil {
		t.Fatalf("DecodeGetStateEffecterStatesResp: %v", err)
	}
	if cc != Success || len(got) != 2 || got[0] != fields[0] || got[1] != fields[1] {
		t.Fatalf("got (%v, %+v)", cc, got)
	}
}
