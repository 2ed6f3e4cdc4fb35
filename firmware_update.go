// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// QueryDeviceIdentifiers

// EncodeQueryDeviceIdentifiersReq writes a QueryDeviceIdentifiers request.
func EncodeQueryDeviceIdentifiersReq(instance uint8, m *MsgBuf) error {
	return PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdQueryDeviceIdentifiers}, m)
}

// QueryDeviceIdentifiersResp is a decoded QueryDeviceIdentifiers response.
type QueryDeviceIdentifiersResp struct {
	CompletionCode CompletionCode
	Descriptors    []Descriptor
}

// EncodeQueryDeviceIdentifiersResp writes a QueryDeviceIdentifiers
// response. At least one descriptor is required on Success.
func EncodeQueryDeviceIdentifiersResp(instance uint8, resp QueryDeviceIdentifiersResp, m *MsgBuf) error {
	if resp.CompletionCode == Success && len(resp.Descriptors) < 1 {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdQueryDeviceIdentifiers}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	var total int
	for _, d := range resp.Descriptors {
		total += 4 + len(d.Data)
	}
	if err := m.InsertUint32(uint32(total)); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(len(resp.Descriptors))); err != nil {
		return err
	}
	for _, d := range resp.Descriptors {
		if err := EncodeDescriptor(d, m); err != nil {
			return err
		}
	}
	return nil
}

// DecodeQueryDeviceIdentifiersResp reads a QueryDeviceIdentifiers
// response, borrowing descriptor data from m.
func DecodeQueryDeviceIdentifiersResp(m *MsgBuf) (QueryDeviceIdentifiersResp, error) {
	var resp QueryDeviceIdentifiersResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	var totalLength uint32
	if err := m.ExtractUint32(&totalLength); err != nil {
		return resp, err
	}
	var count uint8
	if err := m.ExtractUint8(&count); err != nil {
		return resp, err
	}
	if count == 0 {
		return resp, ErrInvalidArgument
	}
	it := NewDescriptorIterator(m, int(count))
	for {
		d, ok, err := it.Next()
		if err != nil {
			return resp, err
		}
		if !ok {
			break
		}
		resp.Descriptors = append(resp.Descriptors, d)
	}
	return resp, m.Complete()
}

// RequestUpdateReq is a decoded RequestUpdate request (DSP0267 §10.1).
// MaxTransferSize and MaxOutstandingTransferReq are validated against the
// DSP0267 floors (PLDM_FWUP_BASELINE_TRANSFER_SIZE, ..._MIN_OUTSTANDING_REQ)
// before a request is packed.
type RequestUpdateReq struct {
	MaxTransferSize         uint32
	NumComponents           uint16
	MaxOutstandingTransfers uint8
	PackageDataLength       uint16
	ComponentSetVersion     VersionString
}

const (
	fwupBaselineTransferSize  = 32
	fwupMinOutstandingTransfers = 1
)

// EncodeRequestUpdateReq writes a RequestUpdate request.
func EncodeRequestUpdateReq(instance uint8, req RequestUpdateReq, m *MsgBuf) error {
	if req.MaxTransferSize < fwupBaselineTransferSize {
		return ErrInvalidArgument
	}
	if req.MaxOutstandingTransfers < fwupMinOutstandingTransfers {
		return ErrInvalidArgument
	}
	if len(req.ComponentSetVersion.Data) == 0 {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdRequestUpdate}, m); err != nil {
		return err
	}
	if err := m.InsertUint32(req.MaxTransferSize); err != nil {
		return err
	}
	if err := m.InsertUint16(req.NumComponents); err != nil {
		return err
	}
	if err := m.InsertUint8(req.MaxOutstandingTransfers); err != nil {
		return err
	}
	if err := m.InsertUint16(req.PackageDataLength); err != nil {
		return err
	}
	return EncodeVersionString(req.ComponentSetVersion, m)
}

// DecodeRequestUpdateReq reads a RequestUpdate request.
func DecodeRequestUpdateReq(m *MsgBuf) (RequestUpdateReq, error) {
	var req RequestUpdateReq
	if err := m.ExtractUint32(&req.MaxTransferSize); err != nil {
		return req, err
	}
	if err := m.ExtractUint16(&req.NumComponents); err != nil {
		return req, err
	}
	if err := m.ExtractUint8(&req.MaxOutstandingTransfers); err != nil {
		return req, err
	}
	if err := m.ExtractUint16(&req.PackageDataLength); err != nil {
		return req, err
	}
	v, err := DecodeVersionString(m)
	if err != nil {
		return req, err
	}
	req.ComponentSetVersion = v
	if err := m.Complete(); err != nil {
		return req, err
	}
	if req.MaxTransferSize < fwupBaselineTransferSize || req.MaxOutstandingTransfers < fwupMinOutstandingTransfers {
		return req, ErrInvalidArgument
	}
	return req, nil
}

// RequestUpdateResp is a decoded RequestUpdate response.
type RequestUpdateResp struct {
	CompletionCode   CompletionCode
	FDMetaDataLength uint16
	FDWillSendPkgData bool
}

// EncodeRequestUpdateResp writes a RequestUpdate response.
func EncodeRequestUpdateResp(instance uint8, resp RequestUpdateResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdRequestUpdate}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if err := m.InsertUint16(resp.FDMetaDataLength); err != nil {
		return err
	}
	var b uint8
	if resp.FDWillSendPkgData {
		b = 1
	}
	return m.InsertUint8(b)
}

// DecodeRequestUpdateResp reads a RequestUpdate response.
func DecodeRequestUpdateResp(m *MsgBuf) (RequestUpdateResp, error) {
	var resp RequestUpdateResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	if err := m.ExtractUint16(&resp.FDMetaDataLength); err != nil {
		return resp, err
	}
	var b uint8
	if err := m.ExtractUint8(&b); err != nil {
		return resp, err
	}
	resp.FDWillSendPkgData = b != 0
	return resp, m.Complete()
}

// PassComponentTableReq is a decoded PassComponentTable request.
type PassComponentTableReq struct {
	TransferFlag            TransferFlag
	CompClassification      ComponentClassification
	CompIdentifier          uint16
	CompClassificationIndex uint8
	CompComparisonStamp     uint32
	Version                 VersionString
}

// EncodePassComponentTableReq writes a PassComponentTable request.
func EncodePassComponentTableReq(instance uint8, req PassComponentTableReq, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdPassComponentTable}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(req.TransferFlag)); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(req.CompClassification)); err != nil {
		return err
	}
	if err := m.InsertUint16(req.CompIdentifier); err != nil {
		return err
	}
	if err := m.InsertUint8(req.CompClassificationIndex); err != nil {
		return err
	}
	if err := m.InsertUint32(req.CompComparisonStamp); err != nil {
		return err
	}
	return EncodeVersionString(req.Version, m)
}

// DecodePassComponentTableReq reads a PassComponentTable request.
func DecodePassComponentTableReq(m *MsgBuf) (PassComponentTableReq, error) {
	var req PassComponentTableReq
	var flag uint8
	if err := m.ExtractUint8(&flag); err != nil {
		return req, err
	}
	req.TransferFlag = TransferFlag(flag)
	var class uint16
	if err := m.ExtractUint16(&class); err != nil {
		return req, err
	}
	req.CompClassification = ComponentClassification(class)
	if err := m.ExtractUint16(&req.CompIdentifier); err != nil {
		return req, err
	}
	if err := m.ExtractUint8(&req.CompClassificationIndex); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.CompComparisonStamp); err != nil {
		return req, err
	}
	v, err := DecodeVersionString(m)
	if err != nil {
		return req, err
	}
	req.Version = v
	return req, m.Complete()
}

// ComponentResponseCode is the per-component outcome carried by
// PassComponentTable and UpdateComponent responses.
type ComponentResponseCode uint8

const (
	ComponentCanBeUpdated    ComponentResponseCode = 0x00
	ComponentComparisonStampIdentical ComponentResponseCode = 0x01
)

// EncodePassComponentTableResp writes a PassComponentTable response.
func EncodePassComponentTableResp(instance uint8, cc CompletionCode, compResp ComponentResponseCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdPassComponentTable}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	if cc != Success {
		return nil
	}
	return m.InsertUint8(uint8(compResp))
}

// DecodePassComponentTableResp reads a PassComponentTable response.
func DecodePassComponentTableResp(m *MsgBuf) (cc CompletionCode, compResp ComponentResponseCode, err error) {
	var ccByte uint8
	if err = m.ExtractUint8(&ccByte); err != nil {
		return
	}
	cc = CompletionCode(ccByte)
	if cc != Success {
		return cc, 0, nil
	}
	var rb uint8
	err = m.ExtractUint8(&rb)
	compResp = ComponentResponseCode(rb)
	return
}

// UpdateComponentReq is a decoded UpdateComponent request.
type UpdateComponentReq struct {
	CompClassification      ComponentClassification
	CompIdentifier          uint16
	CompClassificationIndex uint8
	CompComparisonStamp     uint32
	CompImageSize           uint32
	UpdateOptionFlags       UpdateOptionFlags
	Version                 VersionString
}

// EncodeUpdateComponentReq writes an UpdateComponent request.
// CompImageSize of zero is rejected.
func EncodeUpdateComponentReq(instance uint8, req UpdateComponentReq, m *MsgBuf) error {
	if req.CompImageSize == 0 {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdUpdateComponent}, m); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(req.CompClassification)); err != nil {
		return err
	}
	if err := m.InsertUint16(req.CompIdentifier); err != nil {
		return err
	}
	if err := m.InsertUint8(req.CompClassificationIndex); err != nil {
		return err
	}
	if err := m.InsertUint32(req.CompComparisonStamp); err != nil {
		return err
	}
	if err := m.InsertUint32(req.CompImageSize); err != nil {
		return err
	}
	if err := m.InsertUint32(uint32(req.UpdateOptionFlags)); err != nil {
		return err
	}
	return EncodeVersionString(req.Version, m)
}

// DecodeUpdateComponentReq reads an UpdateComponent request.
func DecodeUpdateComponentReq(m *MsgBuf) (UpdateComponentReq, error) {
	var req UpdateComponentReq
	var class uint16
	if err := m.ExtractUint16(&class); err != nil {
		return req, err
	}
	req.CompClassification = ComponentClassification(class)
	if err := m.ExtractUint16(&req.CompIdentifier); err != nil {
		return req, err
	}
	if err := m.ExtractUint8(&req.CompClassificationIndex); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.CompComparisonStamp); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.CompImageSize); err != nil {
		return req, err
	}
	var flags uint32
	if err := m.ExtractUint32(&flags); err != nil {
		return req, err
	}
	req.UpdateOptionFlags = UpdateOptionFlags(flags)
	v, err := DecodeVersionString(m)
	if err != nil {
		return req, err
	}
	req.Version = v
	if err := m.Complete(); err != nil {
		return req, err
	}
	if req.CompImageSize == 0 {
		return req, ErrInvalidArgument
	}
	return req, nil
}

// UpdateComponentResponseCode is the per-component outcome carried by an
// UpdateComponent response.
type UpdateComponentResponseCode uint8

const UpdateComponentCanBeUpdated UpdateComponentResponseCode = 0x00

// EncodeUpdateComponentResp writes an UpdateComponent response.
func EncodeUpdateComponentResp(instance uint8, cc CompletionCode, compResp UpdateComponentResponseCode, willSendGetFirmwareData bool, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdUpdateComponent}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	if cc != Success {
		return nil
	}
	if err := m.InsertUint8(uint8(compResp)); err != nil {
		return err
	}
	var b uint8
	if willSendGetFirmwareData {
		b = 1
	}
	return m.InsertUint8(b)
}

// DecodeUpdateComponentResp reads an UpdateComponent response.
func DecodeUpdateComponentResp(m *MsgBuf) (cc CompletionCode, compResp UpdateComponentResponseCode, willSendGetFirmwareData bool, err error) {
	var ccByte uint8
	if err = m.ExtractUint8(&ccByte); err != nil {
		return
	}
	cc = CompletionCode(ccByte)
	if cc != Success {
		return cc, 0, false, nil
	}
	var rb uint8
	if err = m.ExtractUint8(&rb); err != nil {
		return
	}
	compResp = UpdateComponentResponseCode(rb)
	var b uint8
	err = m.ExtractUint8(&b)
	willSendGetFirmwareData = b != 0
	return
}

// RequestFirmwareDataReq is a decoded RequestFirmwareData request: the UA
// asks for Length bytes of the current component image starting at
// Offset.
type RequestFirmwareDataReq struct {
	Offset uint32
	Length uint32
}

const fwupMinFirmwareDataLength = 32

// EncodeRequestFirmwareDataReq writes a RequestFirmwareData request.
func EncodeRequestFirmwareDataReq(instance uint8, req RequestFirmwareDataReq, m *MsgBuf) error {
	if req.Length < fwupMinFirmwareDataLength {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdRequestFirmwareData}, m); err != nil {
		return err
	}
	if err := m.InsertUint32(req.Offset); err != nil {
		return err
	}
	return m.InsertUint32(req.Length)
}

// DecodeRequestFirmwareDataReq reads a RequestFirmwareData request.
func DecodeRequestFirmwareDataReq(m *MsgBuf) (RequestFirmwareDataReq, error) {
	var req RequestFirmwareDataReq
	if err := m.ExtractUint32(&req.Offset); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.Length); err != nil {
		return req, err
	}
	if err := m.Complete(); err != nil {
		return req, err
	}
	if req.Length < fwupMinFirmwareDataLength {
		return req, ErrInvalidArgument
	}
	return req, nil
}

// EncodeRequestFirmwareDataResp writes a RequestFirmwareData response
// carrying the requested image bytes.
func EncodeRequestFirmwareDataResp(instance uint8, cc CompletionCode, data []byte, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdRequestFirmwareData}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	if cc != Success {
		return nil
	}
	return m.InsertArray(data)
}

// DecodeRequestFirmwareDataResp reads a RequestFirmwareData response,
// borrowing the image-data span from m.
func DecodeRequestFirmwareDataResp(m *MsgBuf) (cc CompletionCode, data []byte, err error) {
	var ccByte uint8
	if err = m.ExtractUint8(&ccByte); err != nil {
		return
	}
	cc = CompletionCode(ccByte)
	if cc != Success {
		return cc, nil, nil
	}
	data, err = m.SpanRemaining()
	return
}

// TransferResult is the completion status an FD reports at the end of a
// component's download phase.
type TransferResult uint8

const (
	TransferSuccess      TransferResult = 0x00
	TransferGenericError TransferResult = 0x01
)

// EncodeTransferCompleteReq writes a TransferComplete request.
func EncodeTransferCompleteReq(instance uint8, result TransferResult, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdTransferComplete}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(result))
}

// DecodeTransferCompleteReq reads a TransferComplete request.
func DecodeTransferCompleteReq(m *MsgBuf) (TransferResult, error) {
	var b uint8
	if err := m.ExtractUint8(&b); err != nil {
		return 0, err
	}
	return TransferResult(b), m.Complete()
}

// EncodeTransferCompleteResp writes a TransferComplete response.
func EncodeTransferCompleteResp(instance uint8, cc CompletionCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdTransferComplete}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(cc))
}

// DecodeTransferCompleteResp reads the UA's acknowledgement of a
// TransferComplete request.
func DecodeTransferCompleteResp(m *MsgBuf) (CompletionCode, error) {
	var b uint8
	if err := m.ExtractUint8(&b); err != nil {
		return 0, err
	}
	return CompletionCode(b), m.Complete()
}

// VerifyResult is the completion status an FD reports at the end of a
// component's verify phase.
type VerifyResult uint8

const (
	VerifySuccess      VerifyResult = 0x00
	VerifyGenericError VerifyResult = 0x01
)

// EncodeVerifyCompleteReq writes a VerifyComplete request.
func EncodeVerifyCompleteReq(instance uint8, result VerifyResult, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdVerifyComplete}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(result))
}

// DecodeVerifyCompleteReq reads a VerifyComplete request.
func DecodeVerifyCompleteReq(m *MsgBuf) (VerifyResult, error) {
	var b uint8
	if err := m.ExtractUint8(&b); err != nil {
		return 0, err
	}
	return VerifyResult(b), m.Complete()
}

// EncodeVerifyCompleteResp writes a VerifyComplete response.
func EncodeVerifyCompleteResp(instance uint8, cc CompletionCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdVerifyComplete}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(cc))
}

// DecodeVerifyCompleteResp reads the UA's acknowledgement of a
// VerifyComplete request.
func DecodeVerifyCompleteResp(m *MsgBuf) (CompletionCode, error) {
	var b uint8
	if err := m.ExtractUint8(&b); err != nil {
		return 0, err
	}
	return CompletionCode(b), m.Complete()
}

// ApplyResult is the completion status an FD reports at the end of a
// component's apply phase.
type ApplyResult uint8

const (
	ApplySuccess      ApplyResult = 0x00
	ApplyGenericError ApplyResult = 0x01
)

// EncodeApplyCompleteReq writes an ApplyComplete request.
func EncodeApplyCompleteReq(instance uint8, result ApplyResult, activationMethodModifier uint16, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdApplyComplete}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(result)); err != nil {
		return err
	}
	return m.InsertUint16(activationMethodModifier)
}

// DecodeApplyCompleteReq reads an ApplyComplete request.
func DecodeApplyCompleteReq(m *MsgBuf) (result ApplyResult, activationMethodModifier uint16, err error) {
	var b uint8
	if err = m.ExtractUint8(&b); err != nil {
		return
	}
	result = ApplyResult(b)
	err = m.ExtractUint16(&activationMethodModifier)
	return
}

// EncodeApplyCompleteResp writes an ApplyComplete response.
func EncodeApplyCompleteResp(instance uint8, cc CompletionCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdApplyComplete}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(cc))
}

// DecodeApplyCompleteResp reads the UA's acknowledgement of an
// ApplyComplete request.
func DecodeApplyCompleteResp(m *MsgBuf) (CompletionCode, error) {
	var b uint8
	if err := m.ExtractUint8(&b); err != nil {
		return 0, err
	}
	return CompletionCode(b), m.Complete()
}

// EncodeActivateFirmwareReq writes an ActivateFirmware request.
func EncodeActivateFirmwareReq(instance uint8, selfContainedActivationRequest bool, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdActivateFirmware}, m); err != nil {
		return err
	}
	var b uint8
	if selfContainedActivationRequest {
		b = 1
	}
	return m.InsertUint8(b)
}

// DecodeActivateFirmwareReq reads an ActivateFirmware request.
func DecodeActivateFirmwareReq(m *MsgBuf) (bool, error) {
	var b uint8
	if err := m.ExtractUint8(&b); err != nil {
		return false, err
	}
	return b != 0, m.Complete()
}

// EncodeActivateFirmwareResp writes an ActivateFirmware response.
func EncodeActivateFirmwareResp(instance uint8, cc CompletionCode, estimatedTimeSeconds uint16, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdActivateFirmware}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	if cc != Success {
		return nil
	}
	return m.InsertUint16(estimatedTimeSeconds)
}

// DecodeActivateFirmwareResp reads an ActivateFirmware response.
func DecodeActivateFirmwareResp(m *MsgBuf) (cc CompletionCode, estimatedTimeSeconds uint16, err error) {
	var ccByte uint8
	if err = m.ExtractUint8(&ccByte); err != nil {
		return
	}
	cc = CompletionCode(ccByte)
	if cc != Success {
		return cc, 0, nil
	}
	err = m.ExtractUint16(&estimatedTimeSeconds)
	return
}

// EncodeGetStatusReq writes a GetStatus request (no payload beyond the
// header).
func EncodeGetStatusReq(instance uint8, m *MsgBuf) error {
	return PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdGetStatus}, m)
}

// GetStatusResp is a decoded GetStatus response.
type GetStatusResp struct {
	CompletionCode         CompletionCode
	CurrentState           FDState
	PreviousState          FDState
	AuxState               uint8
	AuxStateStatus         uint8
	ProgressPercent        uint8
	ReasonCode             uint8
	UpdateOptionFlagsEnabled uint32
}

// EncodeGetStatusResp writes a GetStatus response.
func EncodeGetStatusResp(instance uint8, resp GetStatusResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdGetStatus}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if err := m.InsertUint8(uint8(resp.CurrentState)); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.PreviousState)); err != nil {
		return err
	}
	if err := m.InsertUint8(resp.AuxState); err != nil {
		return err
	}
	if err := m.InsertUint8(resp.AuxStateStatus); err != nil {
		return err
	}
	if err := m.InsertUint8(resp.ProgressPercent); err != nil {
		return err
	}
	if err := m.InsertUint8(resp.ReasonCode); err != nil {
		return err
	}
	return m.InsertUint32(resp.UpdateOptionFlagsEnabled)
}

// DecodeGetStatusResp reads a GetStatus response.
func DecodeGetStatusResp(m *MsgBuf) (GetStatusResp, error) {
	var resp GetStatusResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	var cur, prev uint8
	if err := m.ExtractUint8(&cur); err != nil {
		return resp, err
	}
	resp.CurrentState = FDState(cur)
	if err := m.ExtractUint8(&prev); err != nil {
		return resp, err
	}
	resp.PreviousState = FDState(prev)
	if err := m.ExtractUint8(&resp.AuxState); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&resp.AuxStateStatus); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&resp.ProgressPercent); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&resp.ReasonCode); err != nil {
		return resp, err
	}
	if err := m.ExtractUint32(&resp.UpdateOptionFlagsEnabled); err != nil {
		return resp, err
	}
	return resp, m.Complete()
}

// EncodeCancelUpdateComponentReq writes a CancelUpdateComponent request
// (no payload beyond the header).
func EncodeCancelUpdateComponentReq(instance uint8, m *MsgBuf) error {
	return PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdCancelUpdateComponent}, m)
}

// EncodeCancelUpdateComponentResp writes a CancelUpdateComponent
// response.
func EncodeCancelUpdateComponentResp(instance uint8, cc CompletionCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdCancelUpdateComponent}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(cc))
}

// EncodeCancelUpdateReq writes a CancelUpdate request (no payload beyond
// the header).
func EncodeCancelUpdateReq(instance uint8, m *MsgBuf) error {
	return PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdCancelUpdate}, m)
}

// CancelUpdateResp is a decoded CancelUpdate response.
type CancelUpdateResp struct {
	CompletionCode         CompletionCode
	NonFunctioningComponentBitmap uint64
}

// EncodeCancelUpdateResp writes a CancelUpdate response.
func EncodeCancelUpdateResp(instance uint8, resp CancelUpdateResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdCancelUpdate}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	return m.InsertUint64(resp.NonFunctioningComponentBitmap)
}

// DecodeCancelUpdateResp reads a CancelUpdate response.
func DecodeCancelUpdateResp(m *MsgBuf) (CancelUpdateResp, error) {
	var resp CancelUpdateResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	if err := m.ExtractUint64(&resp.NonFunctioningComponentBitmap); err != nil {
		return resp, err
	}
	return resp, m.Complete()
}
