// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// SensorOperationalState is the operational state a sensor reports
// alongside its reading (DSP0248 Table 17).
type SensorOperationalState uint8

const (
	SensorEnabled          SensorOperationalState = 0
	SensorDisabled         SensorOperationalState = 1
	SensorUnavailable      SensorOperationalState = 2
	SensorStatusUnknown    SensorOperationalState = 3
	SensorFailed           SensorOperationalState = 4
	SensorInitializing     SensorOperationalState = 5
	SensorShuttingDown     SensorOperationalState = 6
	SensorInTest           SensorOperationalState = 7
)

// EffecterOperationalState mirrors SensorOperationalState for effecters;
// InTest is the last legal value.
type EffecterOperationalState uint8

const (
	EffecterEnabledUpdatePending EffecterOperationalState = 0
	EffecterEnabledNoUpdate      EffecterOperationalState = 1
	EffecterDisabled             EffecterOperationalState = 2
	EffecterUnavailable          EffecterOperationalState = 3
	EffecterStatusUnknown        EffecterOperationalState = 4
	EffecterFailed               EffecterOperationalState = 5
	EffecterInitializing         EffecterOperationalState = 6
	EffecterShuttingDown         EffecterOperationalState = 7
	EffecterInTest               EffecterOperationalState = 8
	effecterOperStateMax                                  = EffecterInTest
)

// EncodeGetSensorReadingReq writes a GetSensorReading request.
func EncodeGetSensorReadingReq(instance uint8, sensorID uint16, rearmEventState bool, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdGetSensorReading}, m); err != nil {
		return err
	}
	if err := m.InsertUint16(sensorID); err != nil {
		return err
	}
	var rearm uint8
	if rearmEventState {
		rearm = 1
	}
	return m.InsertUint8(rearm)
}

// DecodeGetSensorReadingReq reads a GetSensorReading request.
func DecodeGetSensorReadingReq(m *MsgBuf) (sensorID uint16, rearmEventState bool, err error) {
	if err = m.ExtractUint16(&sensorID); err != nil {
		return
	}
	var rearm uint8
	if err = m.ExtractUint8(&rearm); err != nil {
		return
	}
	if rearm > 1 {
		return sensorID, false, ErrInvalidArgument
	}
	rearmEventState = rearm == 1
	err = m.CompleteConsumed()
	return
}

// GetSensorReadingResp is a decoded GetSensorReading response. The
// reading's width is dictated by Reading.Size, the tag read from the wire
// before the value itself.
type GetSensorReadingResp struct {
	CompletionCode           CompletionCode
	OperationalState         SensorOperationalState
	SensorEventMessageEnable uint8
	PresentState             uint8
	PreviousState            uint8
	EventState               uint8
	Reading                  SensorValue
}

// EncodeGetSensorReadingResp writes a GetSensorReading response.
func EncodeGetSensorReadingResp(instance uint8, resp GetSensorReadingResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdGetSensorReading}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if resp.Reading.Size > SensorDataSizeMax {
		return ErrInvalidArgument
	}
	if err := m.InsertUint8(uint8(resp.Reading.Size)); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.OperationalState)); err != nil {
		return err
	}
	if err := m.InsertUint8(resp.SensorEventMessageEnable); err != nil {
		return err
	}
	if err := m.InsertUint8(resp.PresentState); err != nil {
		return err
	}
	if err := m.InsertUint8(resp.PreviousState); err != nil {
		return err
	}
	if err := m.InsertUint8(resp.EventState); err != nil {
		return err
	}
	return InsertSensorValue(m, resp.Reading)
}

// DecodeGetSensorReadingResp reads a GetSensorReading response.
func DecodeGetSensorReadingResp(m *MsgBuf) (GetSensorReadingResp, error) {
	var resp GetSensorReadingResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	var size uint8
	if err := m.ExtractUint8(&size); err != nil {
		return resp, err
	}
	if SensorDataSize(size) > SensorDataSizeMax {
		return resp, ErrInvalidArgument
	}
	var opState uint8
	if err := m.ExtractUint8(&opState); err != nil {
		return resp, err
	}
	resp.OperationalState = SensorOperationalState(opState)
	if err := m.ExtractUint8(&resp.SensorEventMessageEnable); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&resp.PresentState); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&resp.PreviousState); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&resp.EventState); err != nil {
		return resp, err
	}
	reading, err := ExtractSensorValue(m, SensorDataSize(size))
	if err != nil {
		return resp, err
	}
	resp.Reading = reading
	return resp, m.CompleteConsumed()
}

// EncodeSetNumericEffecterValueReq writes a SetNumericEffecterValue
// request. The value's width is fixed by value.Size alone.
func EncodeSetNumericEffecterValueReq(instance uint8, effecterID uint16, value SensorValue, m *MsgBuf) error {
	if value.Size > SensorDataSizeMax {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdSetNumericEffecterValue}, m); err != nil {
		return err
	}
	if err := m.InsertUint16(effecterID); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(value.Size)); err != nil {
		return err
	}
	return InsertSensorValue(m, value)
}

// DecodeSetNumericEffecterValueReq reads a SetNumericEffecterValue request.
func DecodeSetNumericEffecterValueReq(m *MsgBuf) (effecterID uint16, value SensorValue, err error) {
	if err = m.ExtractUint16(&effecterID); err != nil {
		return
	}
	var size uint8
	if err = m.ExtractUint8(&size); err != nil {
		return
	}
	if SensorDataSize(size) > SensorDataSizeMax {
		return effecterID, value, ErrInvalidArgument
	}
	value, err = ExtractSensorValue(m, SensorDataSize(size))
	if err != nil {
		return
	}
	err = m.CompleteConsumed()
	return
}

// EncodeSetNumericEffecterValueResp writes a SetNumericEffecterValue
// response.
func EncodeSetNumericEffecterValueResp(instance uint8, cc CompletionCode, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdSetNumericEffecterValue}, m); err != nil {
		return err
	}
	return m.InsertUint8(uint8(cc))
}

// DecodeSetNumericEffecterValueResp reads a SetNumericEffecterValue
// response.
func DecodeSetNumericEffecterValueResp(m *MsgBuf) (CompletionCode, error) {
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return 0, err
	}
	return CompletionCode(ccByte), m.Complete()
}

// EncodeGetNumericEffecterValueReq writes a GetNumericEffecterValue
// request.
func EncodeGetNumericEffecterValueReq(instance uint8, effecterID uint16, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdGetNumericEffecterValue}, m); err != nil {
		return err
	}
	return m.InsertUint16(effecterID)
}

// DecodeGetNumericEffecterValueReq reads a GetNumericEffecterValue request.
func DecodeGetNumericEffecterValueReq(m *MsgBuf) (uint16, error) {
	var effecterID uint16
	if err := m.ExtractUint16(&effecterID); err != nil {
		return 0, err
	}
	return effecterID, m.CompleteConsumed()
}

// GetNumericEffecterValueResp is a decoded GetNumericEffecterValue
// response. Pending and present values share one data-size tag.
type GetNumericEffecterValueResp struct {
	CompletionCode   CompletionCode
	OperationalState EffecterOperationalState
	PendingValue     SensorValue
	PresentValue     SensorValue
}

// EncodeGetNumericEffecterValueResp writes a GetNumericEffecterValue
// response.
func EncodeGetNumericEffecterValueResp(instance uint8, resp GetNumericEffecterValueResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdGetNumericEffecterValue}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if resp.PendingValue.Size > SensorDataSizeMax || resp.PendingValue.Size != resp.PresentValue.Size {
		return ErrInvalidArgument
	}
	if resp.OperationalState > effecterOperStateMax {
		return ErrInvalidArgument
	}
	if err := m.InsertUint8(uint8(resp.PendingValue.Size)); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.OperationalState)); err != nil {
		return err
	}
	if err := InsertSensorValue(m, resp.PendingValue); err != nil {
		return err
	}
	return InsertSensorValue(m, resp.PresentValue)
}

// DecodeGetNumericEffecterValueResp reads a GetNumericEffecterValue
// response.
func DecodeGetNumericEffecterValueResp(m *MsgBuf) (GetNumericEffecterValueResp, error) {
	var resp GetNumericEffecterValueResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	var size uint8
	if err := m.ExtractUint8(&size); err != nil {
		return resp, err
	}
	if SensorDataSize(size) > SensorDataSizeMax {
		return resp, ErrInvalidArgument
	}
	var opState uint8
	if err := m.ExtractUint8(&opState); err != nil {
		return resp, err
	}
	resp.OperationalState = EffecterOperationalState(opState)
	if resp.OperationalState > effecterOperStateMax {
		return resp, ErrInvalidArgument
	}
	pending, err := ExtractSensorValue(m, SensorDataSize(size))
	if err != nil {
		return resp, err
	}
	resp.PendingValue = pending
	present, err := ExtractSensorValue(m, SensorDataSize(size))
	if err != nil {
		return resp, err
	}
	resp.PresentValue = present
	return resp, m.CompleteConsumed()
}

// EffecterStateReading is one composite effecter's state as reported by
// GetStateEffecterStates.
type EffecterStateReading struct {
	EffecterOpState uint8
	PendingState    uint8
	PresentState    uint8
}

// EncodeGetStateEffecterStatesReq writes a GetStateEffecterStates request.
func EncodeGetStateEffecterStatesReq(instance uint8, effecterID uint16, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: 2, Command: CmdGetStateEffecterStates}, m); err != nil {
		return err
	}
	return m.InsertUint16(effecterID)
}

// DecodeGetStateEffecterStatesReq reads a GetStateEffecterStates request.
func DecodeGetStateEffecterStatesReq(m *MsgBuf) (uint16, error) {
	var effecterID uint16
	if err := m.ExtractUint16(&effecterID); err != nil {
		return 0, err
	}
	return effecterID, m.CompleteConsumed()
}

// EncodeGetStateEffecterStatesResp writes a GetStateEffecterStates
// response.
func EncodeGetStateEffecterStatesResp(instance uint8, cc CompletionCode, fields []EffecterStateReading, m *MsgBuf) error {
	if cc == Success && (len(fields) < 1 || len(fields) > MaxCompositeCount) {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: 2, Command: CmdGetStateEffecterStates}, m); err != nil {
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
		if err := m.InsertUint8(f.EffecterOpState); err != nil {
			return err
		}
		if err := m.InsertUint8(f.PendingState); err != nil {
			return err
		}
		if err := m.InsertUint8(f.PresentState); err != nil {
			return err
		}
	}
	return nil
}

// DecodeGetStateEffecterStatesResp reads a GetStateEffecterStates response.
func DecodeGetStateEffecterStatesResp(m *MsgBuf) (cc CompletionCode, fields []EffecterStateReading, err error) {
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
	fields = make([]EffecterStateReading, count)
	for i := range fields {
		if err = m.ExtractUint8(&fields[i].EffecterOpState); err != nil {
			return
		}
		if err = m.ExtractUint8(&fields[i].PendingState); err != nil {
			return
		}
		if err = m.ExtractUint8(&fields[i].PresentState); err != nil {
			return
		}
	}
	err = m.CompleteConsumed()
	return
}
