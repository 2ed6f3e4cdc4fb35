// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// MessageType selects the value of the header's request/datagram bits
// (DSP0240 §8).
type MessageType int

const (
	// Request is a normal request expecting a response.
	Request MessageType = iota
	// Response answers a Request.
	Response
	// AsyncRequestNotify is a request with no expected response
	// (datagram bit set alongside the request bit).
	AsyncRequestNotify
)

// Header layout limits, per DSP0240.
const (
	MaxInstanceID = 31
	MaxPldmType   = 63

	// headerVersionWire is the value the 2-bit header-version field
	// carries on the wire for the (only) version this package speaks.
	// It is the wire encoding of "header version 1", not the literal
	// integer 1.
	headerVersionWire = 0
)

// Header is the 3-byte PLDM message header that precedes every request and
// response payload (DSP0240 §8).
type Header struct {
	MsgType  MessageType
	Instance uint8
	PldmType uint8
	Command  uint8
}

// PackHeader validates hdr and writes its 3-byte wire form into m. Field
// validation happens before anything is written, matching msgbuf's
// check-then-commit discipline.
func PackHeader(hdr Header, m *MsgBuf) error {
	if hdr.MsgType != Request && hdr.MsgType != Response && hdr.MsgType != AsyncRequestNotify {
		return ErrInvalidArgument
	}
	if hdr.Instance > MaxInstanceID {
		return ErrInvalidArgument
	}
	if hdr.PldmType > MaxPldmType {
		return ErrInvalidArgument
	}

	var request, datagram uint8
	switch hdr.MsgType {
	case Request:
		request = 1
	case AsyncRequestNotify:
		request = 1
		datagram = 1
	case Response:
		// both bits clear
	}

	b0 := hdr.Instance | (datagram << 6) | (request << 7)
	// Byte 1: PLDM type in bits[5:0], header version in bits[7:6].
	b1 := (hdr.PldmType & 0x3f) | (uint8(headerVersionWire&0x3) << 6)

	if err := m.InsertUint8(b0); err != nil {
		return err
	}
	if err := m.InsertUint8(b1); err != nil {
		return err
	}
	if err := m.InsertUint8(hdr.Command); err != nil {
		return err
	}
	return nil
}

// UnpackHeader reads a 3-byte (instance/type byte pair + command) header
// from m and reconstructs the logical MessageType from the request and
// datagram bits:
//
//	(request=0, datagram=*) -> Response
//	(request=1, datagram=0) -> Request
//	(request=1, datagram=1) -> AsyncRequestNotify
func UnpackHeader(m *MsgBuf) (Header, error) {
	var b0, b1, command uint8
	if err := m.ExtractUint8(&b0); err != nil {
		return Header{}, err
	}
	if err := m.ExtractUint8(&b1); err != nil {
		return Header{}, err
	}
	if err := m.ExtractUint8(&command); err != nil {
		return Header{}, err
	}

	instance := b0 & 0x1f
	datagram := (b0 >> 6) & 0x1
	request := (b0 >> 7) & 0x1
	pldmType := b1 & 0x3f

	var msgType MessageType
	switch {
	case request == 0:
		msgType = Response
	case request == 1 && datagram == 0:
		msgType = Request
	default:
		msgType = AsyncRequestNotify
	}

	return Header{
		MsgType:  msgType,
		Instance: instance,
		PldmType: pldmType,
		Command:  command,
	}, nil
}

// CorrelateResponse reports whether resp is the response to req, per
// DSP0240: matching instance ID, type, command, with the request bit
// set on req and clear on resp.
func CorrelateResponse(req, resp Header) bool {
	return req.Instance == resp.Instance &&
		(req.MsgType == Request || req.MsgType == AsyncRequestNotify) &&
		resp.MsgType == Response &&
		req.PldmType == resp.PldmType &&
		req.Command == resp.Command
}
