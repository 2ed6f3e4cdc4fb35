// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import (
	"reflect"
	"testing"
)

// TestPackHeaderS1 pins the packed bytes of a maximal async header.
func TestPackHeaderS1(t *testing.T) {
	hdr := Header{
		MsgType:  AsyncRequestNotify,
		Instance: 31,
		PldmType: 63,
		Command:  255,
	}
	buf := make([]byte, 3)
	m, err := NewMsgBuf(len(buf), buf)
	if err != nil {
		t.Fatalf("NewMsgBuf: %v", err)
	}
	if err := PackHeader(hdr, m); err != nil {
		t.Fatalf("PackHeader: %v", err)
	}
	want := []byte{0xDF, 0x3F, 0xFF}
	if !reflect.DeepEqual(buf, want) {
		t.Fatalf("PackHeader wrote %x, want %x", buf, want)
	}

	r, _ := NewMsgBuf(len(buf), buf)
	got, err := UnpackHeader(r)
	if err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	if got != hdr {
		t.Fatalf("UnpackHeader(Pack(hdr)) = %+v, want %+v", got, hdr)
	}
}

func TestPackHeaderValidation(t *testing.T) {
	tests := []struct {
		name string
		hdr  Header
	}{
		{"bad msg type", Header{MsgType: 99}},
		{"instance out of range", Header{MsgType: Request, Instance: 32}},
		{"pldm type out of range", Header{MsgType: Request, Instance: 31, PldmType: 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 3)
			m, _ := NewMsgBuf(3, buf)
			if err := PackHeader(tt.hdr, m); err != ErrInvalidArgument {
				t.Fatalf("PackHeader(%+v) = %v, want ErrInvalidArgument", tt.hdr, err)
			}
		})
	}
}

// TestHeaderRoundTrip checks unpack(pack(h)) == h for legal headers.
func TestHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{MsgType: Request, Instance: 0, PldmType: 0, Command: 0},
		{MsgType: Request, Instance: 31, PldmType: 63, Command: 255},
		{MsgType: Response, Instance: 17, PldmType: 2, Command: 9},
		{MsgType: AsyncRequestNotify, Instance: 31, PldmType: 63, Command: 255},
	}
	for _, hdr := range cases {
		buf := make([]byte, 3)
		m, _ := NewMsgBuf(3, buf)
		if err := PackHeader(hdr, m); err != nil {
			t.Fatalf("PackHeader(%+v): %v", hdr, err)
		}
		r, _ := NewMsgBuf(3, buf)
		got, err := UnpackHeader(r)
		if err != nil {
			t.Fatalf("UnpackHeader: %v", err)
		}
		if got != hdr {
			t.Fatalf("round trip %+v -> %+v", hdr, got)
		}
	}
}

// TestCorrelateResponse checks correlation and its single-field negations.
func TestCorrelateResponse(t *testing.T) {
	req := Header{MsgType: Request, Instance: 5, PldmType: 2, Command: 9}
	resp := Header{MsgType: Response, Instance: 5, PldmType: 2, Command: 9}
	if !CorrelateResponse(req, resp) {
		t.Fatalf("CorrelateResponse(%+v, %+v) = false, want true", req, resp)
	}

	mutate := []func(h Header) Header{
		func(h Header) Header { h.Instance++; return h },
		func(h Header) Header { h.PldmType++; return h },
		func(h Header) Header { h.Command++; return h },
		func(h Header) Header { h.MsgType = Request; return h },
	}
	for i, f := range mutate {
		bad := f(resp)
		if CorrelateResponse(req, bad) {
			t.Fatalf("mutation %d: CorrelateResponse(%+v, %+v) = true, want false", i, req, bad)
		}
	}
}
