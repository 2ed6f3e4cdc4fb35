// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// Platform command codes (DSP0248 §16), PLDM type 2.
const (
	CmdSetStateEffecterStates    = 0x39
	CmdGetPDRRepositoryInfo      = 0x50
	CmdGetPDR                    = 0x51
	CmdGetStateSensorReadings    = 0x21
	CmdSetNumericEffecterValue   = 0x31
	CmdGetNumericEffecterValue   = 0x32
	CmdGetSensorReading          = 0x11
	CmdGetStateEffecterStates    = 0x3A
	CmdSetEventReceiver          = 0x04
	CmdPlatformEventMessage      = 0x0A
	CmdPollForPlatformEvent      = 0x0B
)

// TransferOpFlag selects whether a multi-part request (GetPDR,
// QueryDownstreamIdentifiers, GetDownstreamFirmwareParameters, the OEM
// Meta file request) starts a new transfer or continues one already in
// progress.
type TransferOpFlag uint8

const (
	GetFirstPart TransferOpFlag = iota
	GetNextPart
)

// GetPDRReq is a decoded GetPDR request (DSP0248 §26.2).
type GetPDRReq struct {
	RecordHandle       uint32
	DataTransferHandle uint32
	TransferOpFlag     TransferOpFlag
	RequestCount       uint16
	RecordChangeNum    uint16
}

// EncodeGetPDRReq writes a GetPDR request.
func EncodeGetPDRReq(instance uint8, req GetPDRReq, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdGetPDR}, m); err != nil {
		return err
	}
	if err := m.InsertUint32(req.RecordHandle); err != nil {
		return err
	}
	if err := m.InsertUint32(req.DataTransferHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(req.TransferOpFlag)); err != nil {
		return err
	}
	if err := m.InsertUint16(req.RequestCount); err != nil {
		return err
	}
	return m.InsertUint16(req.RecordChangeNum)
}

// DecodeGetPDRReq reads a GetPDR request.
func DecodeGetPDRReq(m *MsgBuf) (GetPDRReq, error) {
	var req GetPDRReq
	if err := m.ExtractUint32(&req.RecordHandle); err != nil {
		return req, err
	}
	if err := m.ExtractUint32(&req.DataTransferHandle); err != nil {
		return req, err
	}
	var op uint8
	if err := m.ExtractUint8(&op); err != nil {
		return req, err
	}
	req.TransferOpFlag = TransferOpFlag(op)
	if err := m.ExtractUint16(&req.RequestCount); err != nil {
		return req, err
	}
	if err := m.ExtractUint16(&req.RecordChangeNum); err != nil {
		return req, err
	}
	return req, m.Complete()
}

// GetPDRResp is a decoded GetPDR response.
type GetPDRResp struct {
	CompletionCode         CompletionCode
	NextRecordHandle       uint32
	NextDataTransferHandle uint32
	TransferFlag           TransferFlag
	RecordData             []byte
	// TransferCRC is present and meaningful only when TransferFlag is
	// TransferEnd or TransferStartAndEnd: a single trailer byte after
	// record_data.
	TransferCRC uint8
}

// EncodeGetPDRResp writes a GetPDR response. recordData is copied into the
// payload as-is; the caller is responsible for chunking it to fit a single
// transfer. The response count written is len(RecordData), so the count
// and the data cannot disagree (see DESIGN.md).
func EncodeGetPDRResp(instance uint8, resp GetPDRResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdGetPDR}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if err := m.InsertUint32(resp.NextRecordHandle); err != nil {
		return err
	}
	if err := m.InsertUint32(resp.NextDataTransferHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.TransferFlag)); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(len(resp.RecordData))); err != nil {
		return err
	}
	if err := m.InsertArray(resp.RecordData); err != nil {
		return err
	}
	if resp.TransferFlag == TransferEnd || resp.TransferFlag == TransferStartAndEnd {
		return m.InsertUint8(resp.TransferCRC)
	}
	return nil
}

// DecodeGetPDRResp reads a GetPDR response, borrowing RecordData from m.
func DecodeGetPDRResp(m *MsgBuf) (GetPDRResp, error) {
	var resp GetPDRResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	if err := m.ExtractUint32(&resp.NextRecordHandle); err != nil {
		return resp, err
	}
	if err := m.ExtractUint32(&resp.NextDataTransferHandle); err != nil {
		return resp, err
	}
	var flagByte uint8
	if err := m.ExtractUint8(&flagByte); err != nil {
		return resp, err
	}
	resp.TransferFlag = TransferFlag(flagByte)
	var count uint16
	if err := m.ExtractUint16(&count); err != nil {
		return resp, err
	}
	if count > 0 {
		data, err := m.SpanRequired(int(count))
		if err != nil {
			return resp, err
		}
		resp.RecordData = data
	}
	if resp.TransferFlag == TransferEnd || resp.TransferFlag == TransferStartAndEnd {
		if err := m.ExtractUint8(&resp.TransferCRC); err != nil {
			return resp, err
		}
	}
	return resp, m.Complete()
}

// RepositoryState is the overall state of a terminus's PDR repository.
type RepositoryState uint8

const (
	RepositoryAvailable  RepositoryState = 0
	RepositoryUpdating   RepositoryState = 1
	RepositoryFailed     RepositoryState = 2
	RepositoryMaxState                   = RepositoryFailed
)

// Timestamp104 is the 13-byte PLDM timestamp format used by the PDR
// repository info response (DSP0248 §19).
type Timestamp104 [13]byte

// GetPDRRepositoryInfoResp is a decoded GetPDRRepositoryInfo response.
type GetPDRRepositoryInfoResp struct {
	CompletionCode             CompletionCode
	RepositoryState            RepositoryState
	UpdateTime                 Timestamp104
	OEMUpdateTime              Timestamp104
	RecordCount                uint32
	RepositorySize             uint32
	LargestRecordSize          uint32
	DataTransferHandleTimeout  uint8
}

// EncodeGetPDRRepositoryInfoResp writes a GetPDRRepositoryInfo response.
func EncodeGetPDRRepositoryInfoResp(instance uint8, resp GetPDRRepositoryInfoResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdGetPDRRepositoryInfo}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if err := m.InsertUint8(uint8(resp.RepositoryState)); err != nil {
		return err
	}
	if err := m.InsertArray(resp.UpdateTime[:]); err != nil {
		return err
	}
	if err := m.InsertArray(resp.OEMUpdateTime[:]); err != nil {
		return err
	}
	if err := m.InsertUint32(resp.RecordCount); err != nil {
		return err
	}
	if err := m.InsertUint32(resp.RepositorySize); err != nil {
		return err
	}
	if err := m.InsertUint32(resp.LargestRecordSize); err != nil {
		return err
	}
	return m.InsertUint8(resp.DataTransferHandleTimeout)
}

// DecodeGetPDRRepositoryInfoResp reads a GetPDRRepositoryInfo response.
func DecodeGetPDRRepositoryInfoResp(m *MsgBuf) (GetPDRRepositoryInfoResp, error) {
	var resp GetPDRRepositoryInfoResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	var stateByte uint8
	if err := m.ExtractUint8(&stateByte); err != nil {
		return resp, err
	}
	resp.RepositoryState = RepositoryState(stateByte)
	if resp.RepositoryState > RepositoryMaxState {
		return resp, ErrInvalidArgument
	}
	if err := m.ExtractArray(resp.UpdateTime[:]); err != nil {
		return resp, err
	}
	if err := m.ExtractArray(resp.OEMUpdateTime[:]); err != nil {
		return resp, err
	}
	if err := m.ExtractUint32(&resp.RecordCount); err != nil {
		return resp, err
	}
	if err := m.ExtractUint32(&resp.RepositorySize); err != nil {
		return resp, err
	}
	if err := m.ExtractUint32(&resp.LargestRecordSize); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&resp.DataTransferHandleTimeout); err != nil {
		return resp, err
	}
	return resp, m.Complete()
}

// EffecterStateField is one composite effecter's requested (set) or
// reported (get) state.
type EffecterStateField struct {
	SetRequest    uint8
	EffecterState uint8
}

// MaxCompositeCount bounds the composite effecter/sensor count fields
// shared by SetStateEffecterStates and GetStateSensorReadings (both cap
// at 8 in DSP0248).
const MaxCompositeCount = 8

// EncodeSetStateEffecterStatesReq writes a SetStateEffecterStates request.
func EncodeSetStateEffecterStatesReq(instance uint8, effecterID uint16, fields []EffecterStateField, m *MsgBuf) error {
	if len(fields) < 1 || len(fields) > MaxCompositeCount {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdSetStateEffecterStates}, m); err != nil {
		return err
	}
	if err := m.InsertUint16(effecterID); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(len(fields))); err != nil {
		return err
	}
	for _, f := range fields {
		if err := m.InsertUint8(f.SetRequest); err != nil {
			return err
		}
		if err := m.InsertUint8(f.EffecterState); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSetStateEffecterStatesReq reads a SetStateEffecterStates request.
func DecodeSetStateEffecterStatesReq(m *MsgBuf) (effecterID uint16, fields []EffecterStateField, err error) {
	if err = m.ExtractUint16(&effecterID); err != nil {
		return
	}
	var count uint8
	if err = m.ExtractUint8(&count); err != nil {
		return
	}
	if count > MaxCompositeCount {
		return effecterID, nil, ErrInvalidArgument
	}
	fields = make([]EffecterStateField, count)
	for i := range fields {
		if err = m.ExtractUint8(&fields[i].SetRequest); err != nil {
			return
		}
		if err = m.ExtractUint8(&fields[i].EffecterState); err != nil {
			return
		}
	}
	err = m.Complete()
	return
}

// EncodeSetStateEffecterStatesResp writes a SetStateEffecterStates response.
func EncodeSetStateEffecterStatesResp(instance uint8, cc CompletionCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdSetStateEffecterStates}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(cc))
}

// DecodeSetStateEffecterStatesResp reads a SetStateEffecterStates response.
func DecodeSetStateEffecterStatesResp(m *MsgBuf) (CompletionCode, error) {
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return 0, err
	}
	return CompletionCode(ccByte), m.Complete()
}

// SensorStateField is one composite sensor's operational and event state
// as reported by GetStateSensorReadings.
type SensorStateField struct {
	SensorOpState   uint8
	PresentState    uint8
	PreviousState   uint8
	EventState      uint8
}

// EncodeGetStateSensorReadingsReq writes a GetStateSensorReadings request.
func EncodeGetStateSensorReadingsReq(instance uint8, sensorID uint16, sensorRearm uint8, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdGetStateSensorReadings}, m); err != nil {
		return err
	}
	if err := m.InsertUint16(sensorID); err != nil {
		return err
	}
	if err := m.InsertUint8(sensorRearm); err != nil {
		return err
	}
	return m.InsertUint8(0) // reserved
}

// DecodeGetStateSensorReadingsReq reads a GetStateSensorReadings request.
func DecodeGetStateSensorReadingsReq(m *MsgBuf) (sensorID uint16, sensorRearm uint8, err error) {
	if err = m.ExtractUint16(&sensorID); err != nil {
		return
	}
	if err = m.ExtractUint8(&sensorRearm); err != nil {
		return
	}
	var reserved uint8
	if err = m.ExtractUint8(&reserved); err != nil {
		return
	}
	err = m.Complete()
	return
}

// EncodeGetStateSensorReadingsResp writes a GetStateSensorReadings
// response.
func EncodeGetStateSensorReadingsResp(instance uint8, cc CompletionCode, fields []SensorStateField, m *MsgBuf) error {
	if cc == Success && (len(fields) < 1 || len(fields) > MaxCompositeCount) {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdGetStateSensorReadings}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	if cc != Success {
		return nil
	}
	if err := m.InsertUint8(uint8(len(fields))); err != nil {
		return err
	}
	for _, f := range fields {
		if err := m.InsertUint8(f.SensorOpState); err != nil {
			return err
		}
		if err := m.InsertUint8(f.PresentState); err != nil {
			return err
		}
		if err := m.InsertUint8(f.PreviousState); err != nil {
			return err
		}
		if err := m.InsertUint8(f.EventState); err != nil {
			return err
		}
	}
	return nil
}

// DecodeGetStateSensorReadingsResp reads a GetStateSensorReadings response.
func DecodeGetStateSensorReadingsResp(m *MsgBuf) (cc CompletionCode, fields []SensorStateField, err error) {
	var ccByte uint8
	if err = m.ExtractUint8(&ccByte); err != nil {
		return
	}
	cc = CompletionCode(ccByte)
	if cc != Success {
		return cc, nil, nil
	}
	var count uint8
	if err = m.ExtractUint8(&count); err != nil {
		return
	}
	if count < 1 || count > MaxCompositeCount {
		return cc, nil, ErrInvalidArgument
	}
	fields = make([]SensorStateField, count)
	for i := range fields {
		if err = m.ExtractUint8(&fields[i].SensorOpState); err != nil {
			return
		}
		if err = m.ExtractUint8(&fields[i].PresentState); err != nil {
			return
		}
		if err = m.ExtractUint8(&fields[i].PreviousState); err != nil {
			return
		}
		if err = m.ExtractUint8(&fields[i].EventState); err != nil {
			return
		}
	}
	err = m.CompleteConsumed()
	return
}

// TransportProtocolType identifies the wire transport an event receiver
// listens on. MCTP is the only value this package speaks.
type TransportProtocolType uint8

const TransportProtocolMCTP TransportProtocolType = 0

// EventMessageGlobalEnable selects whether/how a terminus emits
// unsolicited platform events.
type EventMessageGlobalEnable uint8

const (
	EventMessageDisable                EventMessageGlobalEnable = 0x00
	EventMessageEnableAsync            EventMessageGlobalEnable = 0x01
	EventMessageEnableAsyncKeepAlive   EventMessageGlobalEnable = 0x02
)

// SetEventReceiverReq is a decoded SetEventReceiver request.
type SetEventReceiverReq struct {
	GlobalEnable         EventMessageGlobalEnable
	ProtocolType         TransportProtocolType
	ReceiverAddressInfo  uint8
	HeartbeatTimer       uint16
}

// EncodeSetEventReceiverReq writes a SetEventReceiver request. The
// heartbeat timer is written (and required to be non-zero) only when
// GlobalEnable requests async-with-keepalive delivery, matching the
// conditional field in DSP0248 §16.2.
func EncodeSetEventReceiverReq(instance uint8, req SetEventReceiverReq, m *MsgBuf) error {
	if req.ProtocolType != TransportProtocolMCTP {
		return ErrInvalidArgument
	}
	if req.GlobalEnable == EventMessageEnableAsyncKeepAlive && req.HeartbeatTimer == 0 {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdSetEventReceiver}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(req.GlobalEnable)); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(req.ProtocolType)); err != nil {
		return err
	}
	if err := m.InsertUint8(req.ReceiverAddressInfo); err != nil {
		return err
	}
	if req.GlobalEnable == EventMessageEnableAsyncKeepAlive {
		return m.InsertUint16(req.HeartbeatTimer)
	}
	return nil
}

// DecodeSetEventReceiverReq reads a SetEventReceiver request.
func DecodeSetEventReceiverReq(m *MsgBuf) (SetEventReceiverReq, error) {
	var req SetEventReceiverReq
	var enableByte, protoByte uint8
	if err := m.ExtractUint8(&enableByte); err != nil {
		return req, err
	}
	req.GlobalEnable = EventMessageGlobalEnable(enableByte)
	if err := m.ExtractUint8(&protoByte); err != nil {
		return req, err
	}
	req.ProtocolType = TransportProtocolType(protoByte)
	if err := m.ExtractUint8(&req.ReceiverAddressInfo); err != nil {
		return req, err
	}
	if req.GlobalEnable == EventMessageEnableAsyncKeepAlive {
		if err := m.ExtractUint16(&req.HeartbeatTimer); err != nil {
			return req, err
		}
	}
	if err := m.Complete(); err != nil {
		return req, err
	}
	if req.GlobalEnable == EventMessageEnableAsyncKeepAlive && req.HeartbeatTimer == 0 {
		return req, ErrInvalidArgument
	}
	return req, nil
}

// EncodeSetEventReceiverResp writes a SetEventReceiver response.
func EncodeSetEventReceiverResp(instance uint8, cc CompletionCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdSetEventReceiver}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(cc))
}

// DecodeSetEventReceiverResp reads a SetEventReceiver response.
func DecodeSetEventReceiverResp(m *MsgBuf) (CompletionCode, error) {
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return 0, err
	}
	return CompletionCode(ccByte), m.Complete()
}
