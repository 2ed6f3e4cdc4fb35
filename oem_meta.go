// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// Meta OEM file-I/O command codes, PLDM type 0x3F (OEM).
const (
	CmdOEMMetaFileIOWrite = 0xF1
	CmdOEMMetaFileIORead  = 0xF2
)

const oemMetaPldmType = 0x3f

// OEMMetaFileIOWriteReq is the Meta OEM write-file request: a fixed
// handle/length pair followed by exactly Length bytes of payload
// (Meta OEM extension).
type OEMMetaFileIOWriteReq struct {
	FileHandle uint32
	Length     uint32
	Data       []byte
}

// EncodeOEMMetaFileIOWriteReq writes a Meta write-file request.
func EncodeOEMMetaFileIOWriteReq(instance uint8, req OEMMetaFileIOWriteReq, m *MsgBuf) error {
	if uint32(len(req.Data)) != req.Length {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: oemMetaPldmType, Command: CmdOEMMetaFileIOWrite}, m); err != nil {
		return err
	}
	if err := m.InsertUint32(req.FileHandle); err != nil {
		return err
	}
	if err := m.InsertUint32(req.Length); err != nil {
		return err
	}
	return m.InsertArray(req.Data)
}

// DecodeOEMMetaFileIOWriteReq parses a Meta write-file request.
func DecodeOEMMetaFileIOWriteReq(m *MsgBuf) (OEMMetaFileIOWriteReq, error) {
	var req OEMMetaFileIOWriteReq
	if err := m.ExtractUint32(&req.FileHandle); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.Length); err != nil {
		return req, err
	}
	data, err := m.SpanRequired(int(req.Length))
	if err != nil {
		return req, err
	}
	req.Data = data
	if err := m.CompleteConsumed(); err != nil {
		return req, err
	}
	return req, nil
}

// EncodeOEMMetaFileIOWriteResp writes the single-completion-code response
// to a Meta write-file request.
func EncodeOEMMetaFileIOWriteResp(instance uint8, cc CompletionCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: oemMetaPldmType, Command: CmdOEMMetaFileIOWrite}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(cc))
}

// DecodeOEMMetaFileIOWriteResp reads a Meta write-file response.
func DecodeOEMMetaFileIOWriteResp(m *MsgBuf) (CompletionCode, error) {
	var cc uint8
	if err := m.ExtractUint8(&cc); err != nil {
		return 0, err
	}
	return CompletionCode(cc), m.CompleteConsumed()
}

// OEMMetaFileIOReadReq is the Meta OEM read-file request: a multipart
// transfer descriptor addressing a 64-bit offset into file_handle split
// across two 32-bit halves.
type OEMMetaFileIOReadReq struct {
	FileHandle   uint32
	Length       uint32
	TransferFlag TransferOpFlag
	HighOffset   uint32
	LowOffset    uint32
}

// EncodeOEMMetaFileIOReadReq writes a Meta read-file request.
func EncodeOEMMetaFileIOReadReq(instance uint8, req OEMMetaFileIOReadReq, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: oemMetaPldmType, Command: CmdOEMMetaFileIORead}, m); err != nil {
		return err
	}
	if err := m.InsertUint32(req.FileHandle); err != nil {
		return err
	}
	if err := m.InsertUint32(req.Length); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(req.TransferFlag)); err != nil {
		return err
	}
	if err := m.InsertUint32(req.HighOffset); err != nil {
		return err
	}
	return m.InsertUint32(req.LowOffset)
}

// DecodeOEMMetaFileIOReadReq parses a Meta read-file request.
func DecodeOEMMetaFileIOReadReq(m *MsgBuf) (OEMMetaFileIOReadReq, error) {
	var req OEMMetaFileIOReadReq
	if err := m.ExtractUint32(&req.FileHandle); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.Length); err != nil {
		return req, err
	}
	var flag uint8
	if err := m.ExtractUint8(&flag); err != nil {
		return req, err
	}
	req.TransferFlag = TransferOpFlag(flag)
	if err := m.ExtractUint32(&req.HighOffset); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.LowOffset); err != nil {
		return req, err
	}
	return req, m.CompleteConsumed()
}

// Offset64 combines the request's two 32-bit halves into one offset.
func (req OEMMetaFileIOReadReq) Offset64() uint64 {
	return uint64(req.HighOffset)<<32 | uint64(req.LowOffset)
}

// EncodeOEMMetaFileIOReadResp writes the single-completion-code response
// to a Meta read-file request.
func EncodeOEMMetaFileIOReadResp(instance uint8, cc CompletionCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: oemMetaPldmType, Command: CmdOEMMetaFileIORead}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(cc))
}

// DecodeOEMMetaFileIOReadResp reads a Meta read-file response.
func DecodeOEMMetaFileIOReadResp(m *MsgBuf) (CompletionCode, error) {
	var cc uint8
	if err := m.ExtractUint8(&cc); err != nil {
		return 0, err
	}
	return CompletionCode(cc), m.CompleteConsumed()
}
