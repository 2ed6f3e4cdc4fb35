// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import (
	"bytes"
	"testing"
)

func TestPlatformEventMessageReqRoundTrip(t *testing.T) {
	req := PlatformEventMessageReq{
		FormatVersion: 1,
		TID:           0x10,
		Class:         EventClassSensor,
		EventData:     []byte{1, 0, 2, 5, 6},
	}
	buf := make([]byte, 3+3+len(req.EventData))
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodePlatformEventMessageReq(0, req, m); err != nil {
		t.Fatalf("EncodePlatformEventMessageReq: %v", err)
	}
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	got, err := DecodePlatformEventMessageReq(r)
	if err != nil {
		t.Fatalf("DecodePlatformEventMessageReq: %v", err)
	}
	if got.FormatVersion != 1 || got.TID != 0x10 || got.Class != EventClassSensor ||
		!bytes.Equal(got.EventData, req.EventData) {
		t.Fatalf("got %+v", got)
	}
}

func TestEncodePlatformEventMessageReqRejectsBadClass(t *testing.T) {
	buf := make([]byte, 16)
	m, _ := NewMsgBuf(len(buf), buf)
	req := PlatformEventMessageReq{FormatVersion: 1, Class: 0x08, EventData: []byte{1}}
	if err := EncodePlatformEventMessageReq(0, req, m); err != ErrInvalidArgument {
		t.Fatalf("EncodePlatformEventMessageReq(class 0x08) = %v, want ErrInvalidArgument", err)
	}
	// OEM window is legal.
	req.Class = 0xF0
	if err := EncodePlatformEventMessageReq(0, req, m); err != nil {
		t.Fatalf("EncodePlatformEventMessageReq(class 0xF0): %v", err)
	}
}

func TestPollReqEventIDConstraints(t *testing.T) {
	cases := []struct {
		op      PollTransferOp
		eventID uint16
		ok      bool
	}{
		{PollGetFirstPart, EventIDNull, true},
		{PollGetFirstPart, 0x0001, false},
		{PollGetNextPart, EventIDFragment, true},
		{PollGetNextPart, EventIDNull, false},
		{PollAckOnly, 0x1234, true},
		{PollAckOnly, EventIDNull, false},
		{PollAckOnly, EventIDFragment, false},
		{PollTransferOp(3), 0x1234, false},
	}
	for _, tc := range cases {
		buf := make([]byte, 3+1+1+4+2)
		m, _ := NewMsgBuf(len(buf), buf)
		req := PollForPlatformEventMessageReq{
			FormatVersion: 1,
			TransferOp:    tc.op,
			EventIDToAck:  tc.eventID,
		}
		err := EncodePollForPlatformEventMessageReq(0, req, m)
		if tc.ok && err != nil {
			t.Fatalf("Encode(%d, %#x): %v", tc.op, tc.eventID, err)
		}
		if !tc.ok && err != ErrProtocol {
			t.Fatalf("Encode(%d, %#x) = %v, want ErrProtocol", tc.op, tc.eventID, err)
		}
	}
}

func TestPollRespEndsAfterSentinelEventID(t *testing.T) {
	resp := PollForPlatformEventMessageResp{
		CompletionCode: Success,
		TID:            5,
		EventID:        EventIDNull,
	}
	buf := make([]byte, 3+1+1+2)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodePollForPlatformEventMessageResp(0, resp, m); err != nil {
		t.Fatalf("EncodePollForPlatformEventMessageResp: %v", err)
	}
	if _, err := m.CompleteUsed(len(buf)); err != nil {
		t.Fatalf("CompleteUsed: %v", err)
	}
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	got, err := DecodePollForPlatformEventMessageResp(r)
	if err != nil {
		t.Fatalf("DecodePollForPlatformEventMessageResp: %v", err)
	}
	if got.TID != 5 || got.EventID != EventIDNull || got.EventData != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestPollRespChecksumPresenceFollowsTransferFlag(t *testing.T) {
	resp := PollForPlatformEventMessageResp{
		CompletionCode:         Success,
		TID:                    1,
		EventID:                0x0042,
		NextDataTransferHandle: 7,
		TransferFlag:           TransferStartAndEnd,
		Class:                  EventClassMessagePoll,
		EventData:              []byte{0xAA, 0xBB},
		Checksum:               0xDEADBEEF,
	}
	buf := make([]byte, 3+1+1+2+4+1+1+4+2+4)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodePollForPlatformEventMessageResp(0, resp, m); err != nil {
		t.Fatalf("EncodePollForPlatformEventMessageResp: %v", err)
	}
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	got, err := DecodePollForPlatformEventMessageResp(r)
	if err != nil {
		t.Fatalf("DecodePollForPlatformEventMessageResp: %v", err)
	}
	if got.EventID != 0x0042 || !bytes.Equal(got.EventData, resp.EventData) ||
		got.Checksum != 0xDEADBEEF {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeSensorEventNumeric(t *testing.T) {
	data := []byte{
		0x02, 0x00, // sensor ID
		uint8(SensorEventNumericState),
		0x03,       // event state
		0x01,       // previous event state
		uint8(SensorDataSizeUint16),
		0x34, 0x12, // reading
	}
	ev, err := DecodeSensorEvent(data)
	if err != nil {
		t.Fatalf("DecodeSensorEvent: %v", err)
	}
	if ev.SensorID != 2 || ev.Class != SensorEventNumericState ||
		ev.EventState != 3 || ev.PreviousEventState != 1 ||
		ev.Reading != (SensorValue{Size: SensorDataSizeUint16, Value: 0x1234}) {
		t.Fatalf("got %+v", ev)
	}
}

func TestDecodeSensorEventRejectsTrailingBytes(t *testing.T) {
	data := []byte{0x01, 0x00, uint8(SensorEventOpState), 1, 2, 0xFF}
	if _, err := DecodeSensorEvent(data); err != ErrBadMessage {
		t.Fatalf("DecodeSensorEvent(trailing) = %v, want ErrBadMessage", err)
	}
}

func TestCPEREventRoundTrip(t *testing.T) {
	ev := CPEREvent{
		FormatVersion: 1,
		FormatType:    CPERWithoutHeader,
		Data:          []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}
	buf := make([]byte, 4+len(ev.Data))
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeCPEREvent(ev, m); err != nil {
		t.Fatalf("EncodeCPEREvent: %v", err)
	}
	got, err := DecodeCPEREvent(buf)
	if err != nil {
		t.Fatalf("DecodeCPEREvent: %v", err)
	}
	if got.FormatVersion != 1 || got.FormatType != CPERWithoutHeader ||
		!bytes.Equal(got.Data, ev.Data) {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeCPEREventRejectsLengthMismatch(t *testing.T) {
	// Length claims 4 bytes but 5 are present.
	data := []byte{1, 0, 4, 0, 0xDE, 0xAD, 0xBE, 0xEF, 0x99}
	if _, err := DecodeCPEREvent(data); err != ErrBadMessage {
		t.Fatalf("DecodeCPEREvent(long) = %v, want ErrBadMessage", err)
	}
	// Length claims 8 bytes but only 4 are present.
	data = []byte{1, 0, 8, 0, 0xDE, 0xAD, 0xBE, 0xEF}
	if _, err := DecodeCPEREvent(data); err != ErrOverflow {
		t.Fatalf("DecodeCPEREvent(short) = %v, want ErrOverflow", err)
	}
	// Unknown format type.
	data = []byte{1, 2, 0, 0}
	if _, err := DecodeCPEREvent(data); err != ErrProtocol {
		t.Fatalf("DecodeCPEREvent(bad type) = %v, want ErrProtocol", err)
	}
}
