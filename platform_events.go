// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// EventClass identifies the payload format of a PlatformEventMessage
// (DSP0248 Table 19). Values above EventClassCPER are legal only in the OEM
// window [0xF0, 0xFE].
type EventClass uint8

const (
	EventClassSensor              EventClass = 0x00
	EventClassEffecter            EventClass = 0x01
	EventClassRedfishTaskExecuted EventClass = 0x02
	EventClassRedfishMessage      EventClass = 0x03
	EventClassPDRRepositoryChg    EventClass = 0x04
	EventClassMessagePoll         EventClass = 0x05
	EventClassHeartbeatElapsed    EventClass = 0x06
	EventClassCPER                EventClass = 0x07

	eventClassOEMFirst EventClass = 0xF0
	eventClassOEMLast  EventClass = 0xFE
)

// valid reports whether the class is standard or within the OEM window.
func (c EventClass) valid() bool {
	return c <= EventClassCPER || (c >= eventClassOEMFirst && c <= eventClassOEMLast)
}

// PlatformEventStatus is the receiver's disposition of an event
// (DSP0248 Table 20).
type PlatformEventStatus uint8

const (
	EventNoLogging          PlatformEventStatus = 0x00
	EventLoggingDisabled    PlatformEventStatus = 0x01
	EventLogFull            PlatformEventStatus = 0x02
	EventAcceptedForLogging PlatformEventStatus = 0x03
	EventLogged             PlatformEventStatus = 0x04
	EventLoggingRejected    PlatformEventStatus = 0x05
	eventStatusMax                              = EventLoggingRejected
)

const eventFormatVersion = 1

// PlatformEventMessageReq is a decoded PlatformEventMessage request. The
// event data is borrowed from the decode buffer; its interpretation is
// dictated by Class.
type PlatformEventMessageReq struct {
	FormatVersion uint8
	TID           uint8
	Class         EventClass
	EventData     []byte
}

// EncodePlatformEventMessageReq writes a PlatformEventMessage request.
// FormatVersion must be 1 and the event class must be standard or OEM.
func EncodePlatformEventMessageReq(instance uint8, req PlatformEventMessageReq, m *MsgBuf) error {
	if req.FormatVersion != eventFormatVersion {
		return ErrInvalidArgument
	}
	if len(req.EventData) == 0 {
		return ErrInvalidArgument
	}
	if !req.Class.valid() {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdPlatformEventMessage}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(req.FormatVersion); err != nil {
		return err
	}
	if err := m.InsertUint8(req.TID); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(req.Class)); err != nil {
		return err
	}
	return m.InsertArray(req.EventData)
}

// DecodePlatformEventMessageReq reads a PlatformEventMessage request,
// borrowing the event data from m.
func DecodePlatformEventMessageReq(m *MsgBuf) (PlatformEventMessageReq, error) {
	var req PlatformEventMessageReq
	if err := m.ExtractUint8(&req.FormatVersion); err != nil {
		return req, err
	}
	if err := m.ExtractUint8(&req.TID); err != nil {
		return req, err
	}
	var class uint8
	if err := m.ExtractUint8(&class); err != nil {
		return req, err
	}
	req.Class = EventClass(class)
	if !req.Class.valid() {
		return req, ErrInvalidArgument
	}
	data, err := m.SpanRemaining()
	if err != nil {
		return req, err
	}
	req.EventData = data
	return req, m.Complete()
}

// EncodePlatformEventMessageResp writes a PlatformEventMessage response.
func EncodePlatformEventMessageResp(instance uint8, cc CompletionCode, status PlatformEventStatus, m *MsgBuf) error {
	if status > eventStatusMax {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdPlatformEventMessage}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(cc)); err != nil {
		return err
	}
	return m.InsertUint8(uint8(status))
}

// DecodePlatformEventMessageResp reads a PlatformEventMessage response.
func DecodePlatformEventMessageResp(m *MsgBuf) (cc CompletionCode, status PlatformEventStatus, err error) {
	var ccByte uint8
	if err = m.ExtractUint8(&ccByte); err != nil {
		return
	}
	cc = CompletionCode(ccByte)
	if cc != Success {
		return cc, 0, nil
	}
	var statusByte uint8
	if err = m.ExtractUint8(&statusByte); err != nil {
		return
	}
	status = PlatformEventStatus(statusByte)
	if status > eventStatusMax {
		return cc, status, ErrInvalidArgument
	}
	err = m.Complete()
	return
}

// PollTransferOp selects the mode of a PollForPlatformEventMessage
// request.
type PollTransferOp uint8

const (
	PollGetFirstPart PollTransferOp = 0
	PollGetNextPart  PollTransferOp = 1
	PollAckOnly      PollTransferOp = 2
)

// Reserved event IDs for PollForPlatformEventMessage.
const (
	EventIDNull     uint16 = 0x0000
	EventIDFragment uint16 = 0xFFFF
)

// validatePollEventID enforces the joint constraint between the transfer
// operation and the event ID being acknowledged (DSP0248 §16.10):
// GetFirstPart pairs only with the null ID, GetNextPart only with the
// fragment ID, and AckOnly with any real event ID.
func validatePollEventID(op PollTransferOp, eventID uint16) error {
	switch op {
	case PollGetFirstPart:
		if eventID != EventIDNull {
			return ErrProtocol
		}
	case PollGetNextPart:
		if eventID != EventIDFragment {
			return ErrProtocol
		}
	case PollAckOnly:
		if eventID == EventIDNull || eventID == EventIDFragment {
			return ErrProtocol
		}
	default:
		return ErrProtocol
	}
	return nil
}

// PollForPlatformEventMessageReq is a decoded PollForPlatformEventMessage
// request.
type PollForPlatformEventMessageReq struct {
	FormatVersion      uint8
	TransferOp         PollTransferOp
	DataTransferHandle uint32
	EventIDToAck       uint16
}

// EncodePollForPlatformEventMessageReq writes a
// PollForPlatformEventMessage request.
func EncodePollForPlatformEventMessageReq(instance uint8, req PollForPlatformEventMessageReq, m *MsgBuf) error {
	if err := validatePollEventID(req.TransferOp, req.EventIDToAck); err != nil {
		return err
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdPollForPlatformEvent}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(req.FormatVersion); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(req.TransferOp)); err != nil {
		return err
	}
	if err := m.InsertUint32(req.DataTransferHandle); err != nil {
		return err
	}
	return m.InsertUint16(req.EventIDToAck)
}

// DecodePollForPlatformEventMessageReq reads a
// PollForPlatformEventMessage request.
func DecodePollForPlatformEventMessageReq(m *MsgBuf) (PollForPlatformEventMessageReq, error) {
	var req PollForPlatformEventMessageReq
	if err := m.ExtractUint8(&req.FormatVersion); err != nil {
		return req, err
	}
	var op uint8
	if err := m.ExtractUint8(&op); err != nil {
		return req, err
	}
	req.TransferOp = PollTransferOp(op)
	if req.TransferOp > PollAckOnly {
		return req, ErrInvalidArgument
	}
	if err := m.ExtractUint32(&req.DataTransferHandle); err != nil {
		return req, err
	}
	if err := m.ExtractUint16(&req.EventIDToAck); err != nil {
		return req, err
	}
	if err := validatePollEventID(req.TransferOp, req.EventIDToAck); err != nil {
		return req, err
	}
	return req, m.Complete()
}

// PollForPlatformEventMessageResp is a decoded PollForPlatformEventMessage
// response. When EventID is the null or fragment sentinel, the response
// carries no event payload and the remaining fields are zero.
type PollForPlatformEventMessageResp struct {
	CompletionCode         CompletionCode
	TID                    uint8
	EventID                uint16
	NextDataTransferHandle uint32
	TransferFlag           TransferFlag
	Class                  EventClass
	EventData              []byte
	// Checksum is present and meaningful only when TransferFlag is
	// TransferEnd or TransferStartAndEnd.
	Checksum uint32
}

// EncodePollForPlatformEventMessageResp writes a
// PollForPlatformEventMessage response. If EventID is a sentinel the
// payload ends immediately after it.
func EncodePollForPlatformEventMessageResp(instance uint8, resp PollForPlatformEventMessageResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdPollForPlatformEvent}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if err := m.InsertUint8(resp.TID); err != nil {
		return err
	}
	if err := m.InsertUint16(resp.EventID); err != nil {
		return err
	}
	if resp.EventID == EventIDNull || resp.EventID == EventIDFragment {
		return nil
	}
	if err := m.InsertUint32(resp.NextDataTransferHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.TransferFlag)); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.Class)); err != nil {
		return err
	}
	if err := m.InsertUint32(uint32(len(resp.EventData))); err != nil {
		return err
	}
	if err := m.InsertArray(resp.EventData); err != nil {
		return err
	}
	if resp.TransferFlag == TransferEnd || resp.TransferFlag == TransferStartAndEnd {
		return m.InsertUint32(resp.Checksum)
	}
	return nil
}

// DecodePollForPlatformEventMessageResp reads a
// PollForPlatformEventMessage response, borrowing event data from m.
func DecodePollForPlatformEventMessageResp(m *MsgBuf) (PollForPlatformEventMessageResp, error) {
	var resp PollForPlatformEventMessageResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	if err := m.ExtractUint8(&resp.TID); err != nil {
		return resp, err
	}
	if err := m.ExtractUint16(&resp.EventID); err != nil {
		return resp, err
	}
	if resp.EventID == EventIDNull || resp.EventID == EventIDFragment {
		return resp, nil
	}
	if err := m.ExtractUint32(&resp.NextDataTransferHandle); err != nil {
		return resp, err
	}
	var flagByte uint8
	if err := m.ExtractUint8(&flagByte); err != nil {
		return resp, err
	}
	resp.TransferFlag = TransferFlag(flagByte)
	var class uint8
	if err := m.ExtractUint8(&class); err != nil {
		return resp, err
	}
	resp.Class = EventClass(class)
	var dataSize uint32
	if err := m.ExtractUint32(&dataSize); err != nil {
		return resp, err
	}
	if dataSize > 0 {
		data, err := m.SpanRequired(int(dataSize))
		if err != nil {
			return resp, err
		}
		resp.EventData = data
	}
	if resp.TransferFlag == TransferEnd || resp.TransferFlag == TransferStartAndEnd {
		if err := m.ExtractUint32(&resp.Checksum); err != nil {
			return resp, err
		}
	}
	return resp, m.CompleteConsumed()
}

// SensorEventClass selects the class-specific tail of a sensorEvent
// payload.
type SensorEventClass uint8

const (
	SensorEventOpState      SensorEventClass = 0
	SensorEventStateSensor  SensorEventClass = 1
	SensorEventNumericState SensorEventClass = 2
)

// SensorEvent is a decoded sensorEvent payload from a
// PlatformEventMessage. Exactly one of the class-specific field groups is
// meaningful, selected by Class.
type SensorEvent struct {
	SensorID uint16
	Class    SensorEventClass

	// SensorEventOpState
	PresentOpState  uint8
	PreviousOpState uint8

	// SensorEventStateSensor
	SensorOffset uint8

	// Shared by state and numeric classes
	EventState         uint8
	PreviousEventState uint8

	// SensorEventNumericState
	Reading SensorValue
}

// DecodeSensorEvent reads a sensorEvent payload, dispatching the tail on
// the event class the same way decode_sensor_event_data does.
func DecodeSensorEvent(data []byte) (SensorEvent, error) {
	var ev SensorEvent
	m, err := NewMsgBuf(4, data)
	if err != nil {
		return ev, err
	}
	if err := m.ExtractUint16(&ev.SensorID); err != nil {
		return ev, err
	}
	var class uint8
	if err := m.ExtractUint8(&class); err != nil {
		return ev, err
	}
	ev.Class = SensorEventClass(class)
	switch ev.Class {
	case SensorEventOpState:
		if err := m.ExtractUint8(&ev.PresentOpState); err != nil {
			return ev, err
		}
		if err := m.ExtractUint8(&ev.PreviousOpState); err != nil {
			return ev, err
		}
	case SensorEventStateSensor:
		if err := m.ExtractUint8(&ev.SensorOffset); err != nil {
			return ev, err
		}
		if err := m.ExtractUint8(&ev.EventState); err != nil {
			return ev, err
		}
		if err := m.ExtractUint8(&ev.PreviousEventState); err != nil {
			return ev, err
		}
	case SensorEventNumericState:
		if err := m.ExtractUint8(&ev.EventState); err != nil {
			return ev, err
		}
		if err := m.ExtractUint8(&ev.PreviousEventState); err != nil {
			return ev, err
		}
		var size uint8
		if err := m.ExtractUint8(&size); err != nil {
			return ev, err
		}
		if SensorDataSize(size) > SensorDataSizeMax {
			return ev, ErrInvalidArgument
		}
		reading, err := ExtractSensorValue(m, SensorDataSize(size))
		if err != nil {
			return ev, err
		}
		ev.Reading = reading
	default:
		return ev, ErrInvalidArgument
	}
	return ev, m.CompleteConsumed()
}

// CPERFormatType selects whether a cperEvent payload carries the CPER
// section header.
type CPERFormatType uint8

const (
	CPERWithHeader    CPERFormatType = 0
	CPERWithoutHeader CPERFormatType = 1
)

// CPEREvent is a decoded cperEvent payload.
type CPEREvent struct {
	FormatVersion uint8
	FormatType    CPERFormatType
	Data          []byte
}

// DecodeCPEREvent reads a cperEvent payload. The embedded length field
// must match the bytes actually present.
func DecodeCPEREvent(data []byte) (CPEREvent, error) {
	var ev CPEREvent
	m, err := NewMsgBuf(4, data)
	if err != nil {
		return ev, err
	}
	if err := m.ExtractUint8(&ev.FormatVersion); err != nil {
		return ev, err
	}
	var ft uint8
	if err := m.ExtractUint8(&ft); err != nil {
		return ev, err
	}
	ev.FormatType = CPERFormatType(ft)
	if ev.FormatType != CPERWithHeader && ev.FormatType != CPERWithoutHeader {
		return ev, ErrProtocol
	}
	var length uint16
	if err := m.ExtractUint16(&length); err != nil {
		return ev, err
	}
	payload, err := m.SpanRequired(int(length))
	if err != nil {
		return ev, err
	}
	ev.Data = payload
	return ev, m.CompleteConsumed()
}

// EncodeCPEREvent writes a cperEvent payload into m.
func EncodeCPEREvent(ev CPEREvent, m *MsgBuf) error {
	if ev.FormatType != CPERWithHeader && ev.FormatType != CPERWithoutHeader {
		return ErrInvalidArgument
	}
	if err := m.InsertUint8(ev.FormatVersion); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(ev.FormatType)); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(len(ev.Data))); err != nil {
		return err
	}
	return m.InsertArray(ev.Data)
}
