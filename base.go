// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// Base command codes (DSP0240 §9), PLDM type 0.
const (
	CmdGetTID            = 0x02
	CmdSetTID            = 0x01
	CmdGetPldmTypes      = 0x04
	CmdGetPldmCommands   = 0x05
	CmdGetPldmVersion    = 0x03
	CmdMultipartReceive  = 0x06
)

// MaxTypes and MaxCommandsPerType bound the GetTypes/GetCommands bitfields:
// 256 bits each, packed 8 per byte.
const (
	MaxTypes           = 256
	MaxCommandsPerType = 256
)

// TypesBitfield is the 32-byte (256-bit) type-support bitmap returned by
// GetPLDMTypes.
type TypesBitfield [MaxTypes / 8]byte

// Set marks pldmType as supported.
func (b *TypesBitfield) Set(pldmType uint8) {
	b[pldmType/8] |= 1 << (pldmType % 8)
}

// IsSet reports whether pldmType is marked supported.
func (b *TypesBitfield) IsSet(pldmType uint8) bool {
	return b[pldmType/8]&(1<<(pldmType%8)) != 0
}

// CommandsBitfield is the 32-byte (256-bit) command-support bitmap returned
// by GetPLDMCommands, scoped to one PLDM type.
type CommandsBitfield [MaxCommandsPerType / 8]byte

// Set marks command as supported.
func (b *CommandsBitfield) Set(command uint8) {
	b[command/8] |= 1 << (command % 8)
}

// IsSet reports whether command is marked supported.
func (b *CommandsBitfield) IsSet(command uint8) bool {
	return b[command/8]&(1<<(command%8)) != 0
}

// Ver32 is the packed BCD version quadruplet (major, minor, update, alpha)
// carried by GetPLDMVersion.
type Ver32 [4]byte

// EncodeGetTypesReq writes a GetPLDMTypes request. It carries no payload
// beyond the header.
func EncodeGetTypesReq(instance uint8, m *MsgBuf) error {
	return PackHeader(Header{MsgType: Request, Instance: instance, Command: CmdGetPldmTypes}, m)
}

// EncodeGetTypesResp writes a GetPLDMTypes response.
func EncodeGetTypesResp(instance uint8, cc CompletionCode, types *TypesBitfield, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, Command: CmdGetPldmTypes}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	if cc != Success {
		return nil
	}
	if types == nil {
		return ErrInvalidArgument
	}
	return m.InsertArray(types[:])
}

// DecodeGetTypesResp reads a GetPLDMTypes response. If the completion code
// is not Success, types is left zeroed and no further bytes are consumed.
func DecodeGetTypesResp(m *MsgBuf) (cc CompletionCode, types TypesBitfield, err error) {
	var b uint8
	if err = m.ExtractUint8(&b); err != nil {
		return
	}
	cc = CompletionCode(b)
	if cc != Success {
		return cc, types, nil
	}
	err = m.ExtractArray(types[:])
	return
}

// EncodeGetCommandsReq writes a GetPLDMCommands request.
func EncodeGetCommandsReq(instance uint8, pldmType uint8, version Ver32, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, Command: CmdGetPldmCommands}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(pldmType); err != nil {
		return err
	}
	return m.InsertArray(version[:])
}

// DecodeGetCommandsReq reads a GetPLDMCommands request.
func DecodeGetCommandsReq(m *MsgBuf) (pldmType uint8, version Ver32, err error) {
	if err = m.ExtractUint8(&pldmType); err != nil {
		return
	}
	err = m.ExtractArray(version[:])
	return
}

// EncodeGetCommandsResp writes a GetPLDMCommands response.
func EncodeGetCommandsResp(instance uint8, cc CompletionCode, commands *CommandsBitfield, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, Command: CmdGetPldmCommands}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	if cc != Success {
		return nil
	}
	if commands == nil {
		return ErrInvalidArgument
	}
	return m.InsertArray(commands[:])
}

// DecodeGetCommandsResp reads a GetPLDMCommands response.
func DecodeGetCommandsResp(m *MsgBuf) (cc CompletionCode, commands CommandsBitfield, err error) {
	var b uint8
	if err = m.ExtractUint8(&b); err != nil {
		return
	}
	cc = CompletionCode(b)
	if cc != Success {
		return cc, commands, nil
	}
	err = m.ExtractArray(commands[:])
	return
}

// GetVersionTransferOp is the transfer-operation flag carried by
// GetPLDMVersion requests.
type GetVersionTransferOp uint8

const (
	XferFirstPart GetVersionTransferOp = iota
	XferNextPart
	XferComplete
)

// EncodeGetVersionReq writes a GetPLDMVersion request.
func EncodeGetVersionReq(instance uint8, transferHandle uint32, op GetVersionTransferOp, pldmType uint8, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, Command: CmdGetPldmVersion}, m); err != nil {
		return err
	}
	if err := m.InsertUint32(transferHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(op)); err != nil {
		return err
	}
	return m.InsertUint8(pldmType)
}

// DecodeGetVersionReq reads a GetPLDMVersion request.
func DecodeGetVersionReq(m *MsgBuf) (transferHandle uint32, op GetVersionTransferOp, pldmType uint8, err error) {
	if err = m.ExtractUint32(&transferHandle); err != nil {
		return
	}
	var opByte uint8
	if err = m.ExtractUint8(&opByte); err != nil {
		return
	}
	op = GetVersionTransferOp(opByte)
	err = m.ExtractUint8(&pldmType)
	return
}

// TransferFlag marks a fragment's position within a multipart transfer
// (DSP0240's generic transfer-flag enumeration), shared by GetPLDMVersion,
// MultipartReceive, and the platform event-polling commands.
type TransferFlag uint8

const (
	TransferStart        TransferFlag = 0x01
	TransferMiddle       TransferFlag = 0x02
	TransferEnd          TransferFlag = 0x04
	TransferStartAndEnd  TransferFlag = 0x05
)

// EncodeGetVersionResp writes a GetPLDMVersion response. versionData is the
// caller-supplied version record (a single Ver32 today, kept as a byte
// slice so future multi-record payloads don't need a new encoder).
func EncodeGetVersionResp(instance uint8, cc CompletionCode, nextTransferHandle uint32, flag TransferFlag, versionData []byte, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, Command: CmdGetPldmVersion}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	if cc != Success {
		return nil
	}
	if versionData == nil {
		return ErrInvalidArgument
	}
	if err := m.InsertUint32(nextTransferHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(flag)); err != nil {
		return err
	}
	return m.InsertArray(versionData)
}

// DecodeGetVersionResp reads a GetPLDMVersion response. The remaining
// unconsumed bytes after a successful decode are the version data; the
// caller borrows them via m.SpanRemaining() or copies via Ver32.
func DecodeGetVersionResp(m *MsgBuf) (cc CompletionCode, nextTransferHandle uint32, flag TransferFlag, err error) {
	var b uint8
	if err = m.ExtractUint8(&b); err != nil {
		return
	}
	cc = CompletionCode(b)
	if cc != Success {
		return cc, 0, 0, nil
	}
	if err = m.ExtractUint32(&nextTransferHandle); err != nil {
		return
	}
	var flagByte uint8
	err = m.ExtractUint8(&flagByte)
	flag = TransferFlag(flagByte)
	return
}

// EncodeGetTIDReq writes a GetTID request.
func EncodeGetTIDReq(instance uint8, m *MsgBuf) error {
	return PackHeader(Header{MsgType: Request, Instance: instance, Command: CmdGetTID}, m)
}

// EncodeGetTIDResp writes a GetTID response.
func EncodeGetTIDResp(instance uint8, cc CompletionCode, tid uint8, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, Command: CmdGetTID}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	return m.InsertUint8(tid)
}

// DecodeGetTIDResp reads a GetTID response.
func DecodeGetTIDResp(m *MsgBuf) (cc CompletionCode, tid uint8, err error) {
	var b uint8
	if err = m.ExtractUint8(&b); err != nil {
		return
	}
	cc = CompletionCode(b)
	if cc != Success {
		return cc, 0, nil
	}
	err = m.ExtractUint8(&tid)
	return
}

// EncodeSetTIDReq writes a SetTID request. TID 0x00 and
// 0xFF are reserved and rejected.
func EncodeSetTIDReq(instance uint8, tid uint8, m *MsgBuf) error {
	if tid == 0x00 || tid == 0xff {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, Command: CmdSetTID}, m); err != nil {
		return err
	}
	return m.InsertUint8(tid)
}

// DecodeSetTIDReq reads a SetTID request, enforcing the same reserved-value
// rule as the encoder.
func DecodeSetTIDReq(m *MsgBuf) (tid uint8, err error) {
	if err = m.ExtractUint8(&tid); err != nil {
		return
	}
	if tid == 0x00 || tid == 0xff {
		return 0, ErrInvalidArgument
	}
	return tid, nil
}

// MultipartTransferOp is the transfer-operation flag carried by
// MultipartReceive requests.
type MultipartTransferOp uint8

const (
	MultipartFirstPart MultipartTransferOp = iota
	MultipartNextPart
	MultipartComplete
	MultipartCurrentPart
)

// MultipartReceiveReq is a decoded MultipartReceive request (DSP0240 §9.8).
type MultipartReceiveReq struct {
	PldmType       uint8
	TransferOpFlag MultipartTransferOp
	TransferCtx    uint8
	TransferHandle uint32
	SectionOffset  uint32
	SectionLength  uint32
}

// EncodeMultipartReceiveReq writes a MultipartReceive request.
func EncodeMultipartReceiveReq(instance uint8, req MultipartReceiveReq, m *MsgBuf) error {
	if err := validateMultipartReceiveReq(req); err != nil {
		return err
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, Command: CmdMultipartReceive}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(req.PldmType); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(req.TransferOpFlag)); err != nil {
		return err
	}
	if err := m.InsertUint8(req.TransferCtx); err != nil {
		return err
	}
	if err := m.InsertUint32(req.TransferHandle); err != nil {
		return err
	}
	if err := m.InsertUint32(req.SectionOffset); err != nil {
		return err
	}
	return m.InsertUint32(req.SectionLength)
}

// DecodeMultipartReceiveReq reads and validates a MultipartReceive
// request:
//   - transfer_opflag must be <= MultipartCurrentPart
//   - section_offset == 0 is legal only for FirstPart/Complete
//   - transfer_handle == 0 is legal only for Complete
func DecodeMultipartReceiveReq(m *MsgBuf) (MultipartReceiveReq, error) {
	var req MultipartReceiveReq
	var opByte uint8

	if err := m.ExtractUint8(&req.PldmType); err != nil {
		return req, err
	}
	if err := m.ExtractUint8(&opByte); err != nil {
		return req, err
	}
	req.TransferOpFlag = MultipartTransferOp(opByte)
	if err := m.ExtractUint8(&req.TransferCtx); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.TransferHandle); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.SectionOffset); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.SectionLength); err != nil {
		return req, err
	}

	if err := validateMultipartReceiveReq(req); err != nil {
		return req, err
	}
	return req, nil
}

func validateMultipartReceiveReq(req MultipartReceiveReq) error {
	if req.TransferOpFlag > MultipartCurrentPart {
		return ErrProtocol
	}
	if req.SectionOffset == 0 &&
		req.TransferOpFlag != MultipartFirstPart &&
		req.TransferOpFlag != MultipartComplete {
		return ErrInvalidArgument
	}
	if req.TransferHandle == 0 && req.TransferOpFlag != MultipartComplete {
		return ErrInvalidArgument
	}
	return nil
}

// MultipartReceiveResp is a decoded MultipartReceive response.
type MultipartReceiveResp struct {
	CompletionCode     CompletionCode
	TransferFlag       TransferFlag
	NextTransferHandle uint32
	Data               []byte
	// IntegrityChecksum is populated only when TransferFlag is
	// TransferEnd or TransferStartAndEnd; it is the zero
	// value otherwise.
	IntegrityChecksum uint32
	HasChecksum       bool
}

// EncodeMultipartReceiveResp writes a MultipartReceive response. The
// trailing checksum is written iff resp.TransferFlag requires one; if
// resp.HasChecksum disagrees with that rule, ErrInvalidArgument is
// returned ("on all other flags the checksum must be
// absent").
func EncodeMultipartReceiveResp(instance uint8, resp MultipartReceiveResp, m *MsgBuf) error {
	wantsChecksum := resp.TransferFlag == TransferEnd || resp.TransferFlag == TransferStartAndEnd
	if resp.CompletionCode == Success && resp.HasChecksum != wantsChecksum {
		return ErrInvalidArgument
	}

	if err := PackHeader(Header{MsgType: Response, Instance: instance, Command: CmdMultipartReceive}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if err := m.InsertUint8(uint8(resp.TransferFlag)); err != nil {
		return err
	}
	if err := m.InsertUint32(resp.NextTransferHandle); err != nil {
		return err
	}
	if err := m.InsertUint32(uint32(len(resp.Data))); err != nil {
		return err
	}
	if err := m.InsertArray(resp.Data); err != nil {
		return err
	}
	if wantsChecksum {
		return m.InsertUint32(resp.IntegrityChecksum)
	}
	return nil
}

// DecodeMultipartReceiveResp reads a MultipartReceive response, borrowing
// the data span from m (valid only as long as m's backing slice is).
func DecodeMultipartReceiveResp(m *MsgBuf) (MultipartReceiveResp, error) {
	var resp MultipartReceiveResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}

	var flagByte uint8
	if err := m.ExtractUint8(&flagByte); err != nil {
		return resp, err
	}
	resp.TransferFlag = TransferFlag(flagByte)

	if err := m.ExtractUint32(&resp.NextTransferHandle); err != nil {
		return resp, err
	}

	var length uint32
	if err := m.ExtractUint32(&length); err != nil {
		return resp, err
	}
	if length > 0 {
		data, err := m.SpanRequired(int(length))
		if err != nil {
			return resp, err
		}
		resp.Data = data
	}

	if resp.TransferFlag == TransferEnd || resp.TransferFlag == TransferStartAndEnd {
		if err := m.ExtractUint32(&resp.IntegrityChecksum); err != nil {
			return resp, err
		}
		resp.HasChecksum = true
	}

	return resp, m.Complete()
}
