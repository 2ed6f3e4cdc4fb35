// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import "testing"

func TestTypesBitfieldRoundTrip(t *testing.T) {
	var want TypesBitfield
	want.Set(0)
	want.Set(63)
	want.Set(255)

	buf := make([]byte, 3+1+len(want))
	m, err := NewMsgBuf(len(buf), buf)
	if err != nil {
		t.Fatalf("NewMsgBuf: %v", err)
	}
	if err := EncodeGetTypesResp(7, Success, &want, m); err != nil {
		t.Fatalf("EncodeGetTypesResp: %v", err)
	}

	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	cc, got, err := DecodeGetTypesResp(r)
	if err != nil {
		t.Fatalf("DecodeGetTypesResp: %v", err)
	}
	if cc != Success {
		t.Fatalf("cc = %v, want Success", cc)
	}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !got.IsSet(0) || !got.IsSet(63) || !got.IsSet(255) || got.IsSet(1) {
		t.Fatalf("bitfield bits wrong: %v", got)
	}
}

func TestGetTypesRespErrorSkipsBitfield(t *testing.T) {
	buf := make([]byte, 4)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeGetTypesResp(1, ErrorNotReady, nil, m); err != nil {
		t.Fatalf("EncodeGetTypesResp: %v", err)
	}
	if used, err := m.CompleteUsed(len(buf)); err != nil || used != 4 {
		t.Fatalf("expected 4 bytes written (header + cc only), got %d, %v", used, err)
	}
}

func TestGetTypesRespRequiresBitfieldOnSuccess(t *testing.T) {
	buf := make([]byte, 36)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeGetTypesResp(1, Success, nil, m); err != ErrInvalidArgument {
		t.Fatalf("EncodeGetTypesResp(Success, nil) = %v, want ErrInvalidArgument", err)
	}
}

func TestGetCommandsReqRoundTrip(t *testing.T) {
	buf := make([]byte, 3+1+4)
	m, _ := NewMsgBuf(len(buf), buf)
	version := Ver32{0xF1, 0xF0, 0xF0, 0xF0}
	if err := EncodeGetCommandsReq(2, 3, version, m); err != nil {
		t.Fatalf("EncodeGetCommandsReq: %v", err)
	}

	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	pldmType, gotVersion, err := DecodeGetCommandsReq(r)
	if err != nil {
		t.Fatalf("DecodeGetCommandsReq: %v", err)
	}
	if pldmType != 3 || gotVersion != version {
		t.Fatalf("got (%d, %v), want (3, %v)", pldmType, gotVersion, version)
	}
}

func TestGetVersionRespRoundTrip(t *testing.T) {
	versionData := []byte{0xF1, 0xF2, 0xF0, 0xF0}
	buf := make([]byte, 3+1+4+1+len(versionData))
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeGetVersionResp(0, Success, 0xAABBCCDD, TransferStartAndEnd, versionData, m); err != nil {
		t.Fatalf("EncodeGetVersionResp: %v", err)
	}

	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	cc, nextHandle, flag, err := DecodeGetVersionResp(r)
	if err != nil {
		t.Fatalf("DecodeGetVersionResp: %v", err)
	}
	if cc != Success || nextHandle != 0xAABBCCDD || flag != TransferStartAndEnd {
		t.Fatalf("got (%v, %x, %v)", cc, nextHandle, flag)
	}
	rest, err := r.SpanRemaining()
	if err != nil {
		t.Fatalf("SpanRemaining: %v", err)
	}
	if string(rest) != string(versionData) {
		t.Fatalf("version data = %x, want %x", rest, versionData)
	}
}

func TestSetTIDRejectsReservedValues(t *testing.T) {
	for _, tid := range []uint8{0x00, 0xff} {
		buf := make([]byte, 4)
		m, _ := NewMsgBuf(len(buf), buf)
		if err := EncodeSetTIDReq(0, tid, m); err != ErrInvalidArgument {
			t.Fatalf("EncodeSetTIDReq(tid=%#x) = %v, want ErrInvalidArgument", tid, err)
		}
	}
}

func TestSetTIDRoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeSetTIDReq(0, 9, m); err != nil {
		t.Fatalf("EncodeSetTIDReq: %v", err)
	}
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	tid, err := DecodeSetTIDReq(r)
	if err != nil {
		t.Fatalf("DecodeSetTIDReq: %v", err)
	}
	if tid != 9 {
		t.Fatalf("tid = %d, want 9", tid)
	}
}

func TestGetTIDRespRoundTrip(t *testing.T) {
	buf := make([]byte, 3+1+1)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeGetTIDResp(0, Success, 42, m); err != nil {
		t.Fatalf("EncodeGetTIDResp: %v", err)
	}
	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	cc, tid, err := DecodeGetTIDResp(r)
	if err != nil {
		t.Fatalf("DecodeGetTIDResp: %v", err)
	}
	if cc != Success || tid != 42 {
		t.Fatalf("got (%v, %d)", cc, tid)
	}
}

// TestMultipartReceiveReqS2 checks a NextPart
// request with section_offset 0 is illegal (offset 0 is reserved for
// FirstPart/Complete) and must be rejected with ERROR_INVALID_DATA.
func TestMultipartReceiveReqS2(t *testing.T) {
	req := MultipartReceiveReq{
		PldmType:       0,
		TransferOpFlag: MultipartNextPart,
		TransferHandle: 0x10,
		SectionOffset:  0,
		SectionLength:  16,
	}
	buf := make([]byte, 3+15)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeMultipartReceiveReq(0, req, m); err != ErrInvalidArgument {
		t.Fatalf("EncodeMultipartReceiveReq(S2) = %v, want ErrInvalidArgument", err)
	}
	if got := ToCompletionCode(ErrInvalidArgument); got != ErrorInvalidData {
		t.Fatalf("ToCompletionCode(ErrInvalidArgument) = %v, want ERROR_INVALID_DATA", got)
	}
}

func TestMultipartReceiveReqValidation(t *testing.T) {
	tests := []struct {
		name string
		req  MultipartReceiveReq
		want error
	}{
		{
			name: "opflag out of range",
			req:  MultipartReceiveReq{TransferOpFlag: 4, TransferHandle: 1, SectionOffset: 1},
			want: ErrProtocol,
		},
		{
			name: "offset zero illegal for NextPart",
			req:  MultipartReceiveReq{TransferOpFlag: MultipartNextPart, TransferHandle: 1, SectionOffset: 0},
			want: ErrInvalidArgument,
		},
		{
			name: "handle zero illegal unless Complete",
			req:  MultipartReceiveReq{TransferOpFlag: MultipartFirstPart, TransferHandle: 0, SectionOffset: 0},
			want: ErrInvalidArgument,
		},
		{
			name: "offset zero legal for FirstPart",
			req:  MultipartReceiveReq{TransferOpFlag: MultipartFirstPart, TransferHandle: 5, SectionOffset: 0, SectionLength: 4},
			want: nil,
		},
		{
			name: "handle zero legal for Complete",
			req:  MultipartReceiveReq{TransferOpFlag: MultipartComplete, TransferHandle: 0, SectionOffset: 0, SectionLength: 4},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 18)
			m, _ := NewMsgBuf(len(buf), buf)
			err := EncodeMultipartReceiveReq(0, tt.req, m)
			if err != tt.want {
				t.Fatalf("EncodeMultipartReceiveReq() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMultipartReceiveRespRoundTripWithChecksum(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	resp := MultipartReceiveResp{
		CompletionCode:     Success,
		TransferFlag:       TransferStartAndEnd,
		NextTransferHandle: 0x55,
		Data:               data,
		IntegrityChecksum:  0xCAFEBABE,
		HasChecksum:        true,
	}
	buf := make([]byte, 3+1+1+4+4+len(data)+4)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeMultipartReceiveResp(0, resp, m); err != nil {
		t.Fatalf("EncodeMultipartReceiveResp: %v", err)
	}

	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	got, err := DecodeMultipartReceiveResp(r)
	if err != nil {
		t.Fatalf("DecodeMultipartReceiveResp: %v", err)
	}
	if got.CompletionCode != Success || got.NextTransferHandle != 0x55 ||
		got.TransferFlag != TransferStartAndEnd || string(got.Data) != string(data) ||
		!got.HasChecksum || got.IntegrityChecksum != 0xCAFEBABE {
		t.Fatalf("got %+v", got)
	}
}

func TestMultipartReceiveRespRoundTripNoChecksum(t *testing.T) {
	data := []byte{9, 9}
	resp := MultipartReceiveResp{
		CompletionCode:     Success,
		TransferFlag:       TransferMiddle,
		NextTransferHandle: 2,
		Data:               data,
	}
	buf := make([]byte, 3+1+1+4+4+len(data))
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeMultipartReceiveResp(0, resp, m); err != nil {
		t.Fatalf("EncodeMultipartReceiveResp: %v", err)
	}

	r, _ := NewMsgBuf(len(buf), buf)
	if _, err := UnpackHeader(r); err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	got, err := DecodeMultipartReceiveResp(r)
	if err != nil {
		t.Fatalf("DecodeMultipartReceiveResp: %v", err)
	}
	if got.HasChecksum {
		t.Fatalf("HasChecksum = true on a Middle fragment, want false")
	}
}

func TestMultipartReceiveRespRejectsMismatchedChecksumFlag(t *testing.T) {
	resp := MultipartReceiveResp{
		CompletionCode: Success,
		TransferFlag:   TransferMiddle,
		HasChecksum:    true,
	}
	buf := make([]byte, 32)
	m, _ := NewMsgBuf(len(buf), buf)
	if err := EncodeMultipartReceiveResp(0, resp, m); err != ErrInvalidArgument {
		t.Fatalf("EncodeMultipartReceiveResp() = %v, want ErrInvalidArgument", err)
	}
}
