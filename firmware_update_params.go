// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// Firmware update inventory command codes (DSP0267 §11) beyond the update
// sequence itself.
const (
	CmdQueryDownstreamDevices            = 0x03
	CmdQueryDownstreamIdentifiers        = 0x04
	CmdGetDownstreamFirmwareParameters   = 0x05
)

// componentReleaseDateLength is the fixed width of the release-date field
// in component parameter entries.
const componentReleaseDateLength = 8

// EncodeGetFirmwareParametersReq writes a GetFirmwareParameters request
// (header only).
func EncodeGetFirmwareParametersReq(instance uint8, m *MsgBuf) error {
	return PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdGetFirmwareParameters}, m)
}

// ComponentParameterEntry is one row of the component parameter table in a
// GetFirmwareParameters response.
type ComponentParameterEntry struct {
	Classification          ComponentClassification
	Identifier              uint16
	ClassificationIndex     uint8
	ActiveComparisonStamp   uint32
	ActiveVersion           VersionString
	ActiveReleaseDate       [componentReleaseDateLength]byte
	PendingComparisonStamp  uint32
	PendingVersion          VersionString
	PendingReleaseDate      [componentReleaseDateLength]byte
	ActivationMethods       uint16
	CapabilitiesDuringUpdate uint32
}

// GetFirmwareParametersResp is a decoded GetFirmwareParameters response.
type GetFirmwareParametersResp struct {
	CompletionCode           CompletionCode
	CapabilitiesDuringUpdate uint32
	ActiveImageSetVersion    VersionString
	PendingImageSetVersion   VersionString
	Components               []ComponentParameterEntry
}

// validatePendingVersion enforces the DSP0267 rule that an absent pending
// version carries the Unknown string type and zero length.
func validatePendingVersion(v VersionString) error {
	if len(v.Data) == 0 {
		if v.Type != StringTypeUnknown {
			return ErrInvalidArgument
		}
		return nil
	}
	if v.Type == StringTypeUnknown || v.Type > stringTypeMax || len(v.Data) > MaxVersionStringLength {
		return ErrInvalidArgument
	}
	return nil
}

func insertVersionStringHeader(m *MsgBuf, v VersionString) error {
	if err := m.InsertUint8(uint8(v.Type)); err != nil {
		return err
	}
	return m.InsertUint8(uint8(len(v.Data)))
}

func insertComponentParameterEntry(m *MsgBuf, e ComponentParameterEntry) error {
	if err := m.InsertUint16(uint16(e.Classification)); err != nil {
		return err
	}
	if err := m.InsertUint16(e.Identifier); err != nil {
		return err
	}
	if err := m.InsertUint8(e.ClassificationIndex); err != nil {
		return err
	}
	if err := m.InsertUint32(e.ActiveComparisonStamp); err != nil {
		return err
	}
	if err := insertVersionStringHeader(m, e.ActiveVersion); err != nil {
		return err
	}
	if err := m.InsertArray(e.ActiveReleaseDate[:]); err != nil {
		return err
	}
	if err := m.InsertUint32(e.PendingComparisonStamp); err != nil {
		return err
	}
	if err := insertVersionStringHeader(m, e.PendingVersion); err != nil {
		return err
	}
	if err := m.InsertArray(e.PendingReleaseDate[:]); err != nil {
		return err
	}
	if err := m.InsertUint16(e.ActivationMethods); err != nil {
		return err
	}
	if err := m.InsertUint32(e.CapabilitiesDuringUpdate); err != nil {
		return err
	}
	if err := m.InsertArray(e.ActiveVersion.Data); err != nil {
		return err
	}
	return m.InsertArray(e.PendingVersion.Data)
}

func extractComponentParameterEntry(m *MsgBuf) (ComponentParameterEntry, error) {
	var e ComponentParameterEntry
	var classification uint16
	if err := m.ExtractUint16(&classification); err != nil {
		return e, err
	}
	e.Classification = ComponentClassification(classification)
	if err := m.ExtractUint16(&e.Identifier); err != nil {
		return e, err
	}
	if err := m.ExtractUint8(&e.ClassificationIndex); err != nil {
		return e, err
	}
	if err := m.ExtractUint32(&e.ActiveComparisonStamp); err != nil {
		return e, err
	}
	var activeType, activeLen uint8
	if err := m.ExtractUint8(&activeType); err != nil {
		return e, err
	}
	if err := m.ExtractUint8(&activeLen); err != nil {
		return e, err
	}
	if err := m.ExtractArray(e.ActiveReleaseDate[:]); err != nil {
		return e, err
	}
	if err := m.ExtractUint32(&e.PendingComparisonStamp); err != nil {
		return e, err
	}
	var pendingType, pendingLen uint8
	if err := m.ExtractUint8(&pendingType); err != nil {
		return e, err
	}
	if err := m.ExtractUint8(&pendingLen); err != nil {
		return e, err
	}
	if err := m.ExtractArray(e.PendingReleaseDate[:]); err != nil {
		return e, err
	}
	if err := m.ExtractUint16(&e.ActivationMethods); err != nil {
		return e, err
	}
	if err := m.ExtractUint32(&e.CapabilitiesDuringUpdate); err != nil {
		return e, err
	}
	activeData, err := m.SpanRequired(int(activeLen))
	if err != nil {
		return e, err
	}
	e.ActiveVersion = VersionString{Type: StringType(activeType), Data: activeData}
	pendingData, err := m.SpanRequired(int(pendingLen))
	if err != nil {
		return e, err
	}
	e.PendingVersion = VersionString{Type: StringType(pendingType), Data: pendingData}
	if e.ActiveVersion.Type > stringTypeMax || len(e.ActiveVersion.Data) == 0 {
		return e, ErrInvalidArgument
	}
	if err := validatePendingVersion(e.PendingVersion); err != nil {
		return e, err
	}
	return e, nil
}

// EncodeGetFirmwareParametersResp writes a GetFirmwareParameters response:
// the fixed fields, the two image-set version strings, then one component
// parameter entry per component.
func EncodeGetFirmwareParametersResp(instance uint8, resp GetFirmwareParametersResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdGetFirmwareParameters}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if resp.ActiveImageSetVersion.Type > stringTypeMax || len(resp.ActiveImageSetVersion.Data) == 0 {
		return ErrInvalidArgument
	}
	if err := validatePendingVersion(resp.PendingImageSetVersion); err != nil {
		return err
	}
	if err := m.InsertUint32(resp.CapabilitiesDuringUpdate); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(len(resp.Components))); err != nil {
		return err
	}
	if err := insertVersionStringHeader(m, resp.ActiveImageSetVersion); err != nil {
		return err
	}
	if err := insertVersionStringHeader(m, resp.PendingImageSetVersion); err != nil {
		return err
	}
	if err := m.InsertArray(resp.ActiveImageSetVersion.Data); err != nil {
		return err
	}
	if err := m.InsertArray(resp.PendingImageSetVersion.Data); err != nil {
		return err
	}
	for _, e := range resp.Components {
		if err := insertComponentParameterEntry(m, e); err != nil {
			return err
		}
	}
	return nil
}

// DecodeGetFirmwareParametersResp reads a GetFirmwareParameters response,
// borrowing version-string bytes from m.
func DecodeGetFirmwareParametersResp(m *MsgBuf) (GetFirmwareParametersResp, error) {
	var resp GetFirmwareParametersResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	if err := m.ExtractUint32(&resp.CapabilitiesDuringUpdate); err != nil {
		return resp, err
	}
	var compCount uint16
	if err := m.ExtractUint16(&compCount); err != nil {
		return resp, err
	}
	var activeType, activeLen, pendingType, pendingLen uint8
	if err := m.ExtractUint8(&activeType); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&activeLen); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&pendingType); err != nil {
		return resp, err
	}
	if err := m.ExtractUint8(&pendingLen); err != nil {
		return resp, err
	}
	activeData, err := m.SpanRequired(int(activeLen))
	if err != nil {
		return resp, err
	}
	resp.ActiveImageSetVersion = VersionString{Type: StringType(activeType), Data: activeData}
	if resp.ActiveImageSetVersion.Type > stringTypeMax || len(resp.ActiveImageSetVersion.Data) == 0 {
		return resp, ErrInvalidArgument
	}
	pendingData, err := m.SpanRequired(int(pendingLen))
	if err != nil {
		return resp, err
	}
	resp.PendingImageSetVersion = VersionString{Type: StringType(pendingType), Data: pendingData}
	if err := validatePendingVersion(resp.PendingImageSetVersion); err != nil {
		return resp, err
	}
	for i := 0; i < int(compCount); i++ {
		e, err := extractComponentParameterEntry(m)
		if err != nil {
			return resp, err
		}
		resp.Components = append(resp.Components, e)
	}
	return resp, m.Complete()
}

// EncodeQueryDownstreamDevicesReq writes a QueryDownstreamDevices request
// (header only).
func EncodeQueryDownstreamDevicesReq(instance uint8, m *MsgBuf) error {
	return PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdQueryDownstreamDevices}, m)
}

// QueryDownstreamDevicesResp is a decoded QueryDownstreamDevices response.
type QueryDownstreamDevicesResp struct {
	CompletionCode             CompletionCode
	UpdateSupported            bool
	NumberOfDownstreamDevices  uint16
	MaxNumberOfDownstreamDevices uint16
	Capabilities               uint32
}

// EncodeQueryDownstreamDevicesResp writes a QueryDownstreamDevices
// response.
func EncodeQueryDownstreamDevicesResp(instance uint8, resp QueryDownstreamDevicesResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdQueryDownstreamDevices}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	var supported uint8
	if resp.UpdateSupported {
		supported = 1
	}
	if err := m.InsertUint8(supported); err != nil {
		return err
	}
	if err := m.InsertUint16(resp.NumberOfDownstreamDevices); err != nil {
		return err
	}
	if err := m.InsertUint16(resp.MaxNumberOfDownstreamDevices); err != nil {
		return err
	}
	return m.InsertUint32(resp.Capabilities)
}

// DecodeQueryDownstreamDevicesResp reads a QueryDownstreamDevices
// response.
func DecodeQueryDownstreamDevicesResp(m *MsgBuf) (QueryDownstreamDevicesResp, error) {
	var resp QueryDownstreamDevicesResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
		return resp, nil
	}
	var supported uint8
	if err := m.ExtractUint8(&supported); err != nil {
		return resp, err
	}
	if supported > 1 {
		return resp, ErrInvalidArgument
	}
	resp.UpdateSupported = supported == 1
	if err := m.ExtractUint16(&resp.NumberOfDownstreamDevices); err != nil {
		return resp, err
	}
	if err := m.ExtractUint16(&resp.MaxNumberOfDownstreamDevices); err != nil {
		return resp, err
	}
	if err := m.ExtractUint32(&resp.Capabilities); err != nil {
		return resp, err
	}
	return resp, m.CompleteConsumed()
}

// EncodeQueryDownstreamIdentifiersReq writes a QueryDownstreamIdentifiers
// request.
func EncodeQueryDownstreamIdentifiersReq(instance uint8, dataTransferHandle uint32, op TransferOpFlag, m *MsgBuf) error {
	if op > GetNextPart {
		return ErrInvalidArgument
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdQueryDownstreamIdentifiers}, m); err != nil {
		return err
	}
	if err := m.InsertUint32(dataTransferHandle); err != nil {
		return err
	}
	return m.InsertUint8(uint8(op))
}

// DecodeQueryDownstreamIdentifiersReq reads a QueryDownstreamIdentifiers
// request.
func DecodeQueryDownstreamIdentifiersReq(m *MsgBuf) (dataTransferHandle uint32, op TransferOpFlag, err error) {
	if err = m.ExtractUint32(&dataTransferHandle); err != nil {
		return
	}
	var opByte uint8
	if err = m.ExtractUint8(&opByte); err != nil {
		return
	}
	op = TransferOpFlag(opByte)
	if op > GetNextPart {
		return dataTransferHandle, op, ErrInvalidArgument
	}
	err = m.CompleteConsumed()
	return
}

// DownstreamDevice is one downstream device from a
// QueryDownstreamIdentifiers response: its index and its identifying
// descriptor TLVs.
type DownstreamDevice struct {
	Index       uint16
	Descriptors []Descriptor
}

// QueryDownstreamIdentifiersResp is a decoded QueryDownstreamIdentifiers
// response.
type QueryDownstreamIdentifiersResp struct {
	CompletionCode         CompletionCode
	NextDataTransferHandle uint32
	TransferFlag           TransferFlag
	Devices                []DownstreamDevice
}

// EncodeQueryDownstreamIdentifiersResp writes a QueryDownstreamIdentifiers
// response.
func EncodeQueryDownstreamIdentifiersResp(instance uint8, resp QueryDownstreamIdentifiersResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdQueryDownstreamIdentifiers}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if err := m.InsertUint32(resp.NextDataTransferHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.TransferFlag)); err != nil {
		return err
	}
	var total int
	for _, dev := range resp.Devices {
		total += 3
		for _, d := range dev.Descriptors {
			total += 4 + len(d.Data)
		}
	}
	if err := m.InsertUint32(uint32(total)); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(len(resp.Devices))); err != nil {
		return err
	}
	for _, dev := range resp.Devices {
		if err := m.InsertUint16(dev.Index); err != nil {
			return err
		}
		if err := m.InsertUint8(uint8(len(dev.Descriptors))); err != nil {
			return err
		}
		for _, d := range dev.Descriptors {
			if err := EncodeDescriptor(d, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeQueryDownstreamIdentifiersResp reads a QueryDownstreamIdentifiers
// response, borrowing descriptor data from m.
func DecodeQueryDownstreamIdentifiersResp(m *MsgBuf) (QueryDownstreamIdentifiersResp, error) {
	var resp QueryDownstreamIdentifiersResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
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
	var devicesLength uint32
	if err := m.ExtractUint32(&devicesLength); err != nil {
		return resp, err
	}
	var devCount uint16
	if err := m.ExtractUint16(&devCount); err != nil {
		return resp, err
	}
	devBytes, err := m.SpanRequired(int(devicesLength))
	if err != nil {
		return resp, err
	}
	dm, err := NewMsgBuf(0, devBytes)
	if err != nil {
		return resp, err
	}
	for i := 0; i < int(devCount); i++ {
		var dev DownstreamDevice
		if err := dm.ExtractUint16(&dev.Index); err != nil {
			return resp, err
		}
		var descCount uint8
		if err := dm.ExtractUint8(&descCount); err != nil {
			return resp, err
		}
		it := NewDescriptorIterator(dm, int(descCount))
		for {
			d, ok, err := it.Next()
			if err != nil {
				return resp, err
			}
			if !ok {
				break
			}
			dev.Descriptors = append(dev.Descriptors, d)
		}
		resp.Devices = append(resp.Devices, dev)
	}
	if err := dm.CompleteConsumed(); err != nil {
		return resp, err
	}
	return resp, m.Complete()
}

// EncodeGetDownstreamFirmwareParametersReq writes a
// GetDownstreamFirmwareParameters request.
func EncodeGetDownstreamFirmwareParametersReq(instance uint8, dataTransferHandle uint32, op TransferOpFlag, m *MsgBuf) error {
	if op > GetNextPart {
		return ErrBadMessage
	}
	if err := PackHeader(Header{MsgType: Request, Instance: instance, PldmType: fwupPldmType, Command: CmdGetDownstreamFirmwareParameters}, m); err != nil {
		return err
	}
	if err := m.InsertUint32(dataTransferHandle); err != nil {
		return err
	}
	return m.InsertUint8(uint8(op))
}

// DecodeGetDownstreamFirmwareParametersReq reads a
// GetDownstreamFirmwareParameters request.
func DecodeGetDownstreamFirmwareParametersReq(m *MsgBuf) (dataTransferHandle uint32, op TransferOpFlag, err error) {
	if err = m.ExtractUint32(&dataTransferHandle); err != nil {
		return
	}
	var opByte uint8
	if err = m.ExtractUint8(&opByte); err != nil {
		return
	}
	op = TransferOpFlag(opByte)
	if op > GetNextPart {
		return dataTransferHandle, op, ErrInvalidArgument
	}
	err = m.CompleteConsumed()
	return
}

// DownstreamDeviceParameters is one downstream device's row of a
// GetDownstreamFirmwareParameters response.
type DownstreamDeviceParameters struct {
	Index                    uint16
	ActiveComparisonStamp    uint32
	ActiveVersion            VersionString
	ActiveReleaseDate        [componentReleaseDateLength]byte
	PendingComparisonStamp   uint32
	PendingVersion           VersionString
	PendingReleaseDate       [componentReleaseDateLength]byte
	ActivationMethods        uint16
	CapabilitiesDuringUpdate uint32
}

// GetDownstreamFirmwareParametersResp is a decoded
// GetDownstreamFirmwareParameters response.
type GetDownstreamFirmwareParametersResp struct {
	CompletionCode           CompletionCode
	NextDataTransferHandle   uint32
	TransferFlag             TransferFlag
	FDPCapabilitiesDuringUpdate uint32
	Devices                  []DownstreamDeviceParameters
}

// EncodeGetDownstreamFirmwareParametersResp writes a
// GetDownstreamFirmwareParameters response.
func EncodeGetDownstreamFirmwareParametersResp(instance uint8, resp GetDownstreamFirmwareParametersResp, m *MsgBuf) error {
	if err := PackHeader(Header{MsgType: Response, Instance: instance, PldmType: fwupPldmType, Command: CmdGetDownstreamFirmwareParameters}, m); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.CompletionCode)); err != nil {
		return err
	}
	if resp.CompletionCode != Success {
		return nil
	}
	if err := m.InsertUint32(resp.NextDataTransferHandle); err != nil {
		return err
	}
	if err := m.InsertUint8(uint8(resp.TransferFlag)); err != nil {
		return err
	}
	if err := m.InsertUint32(resp.FDPCapabilitiesDuringUpdate); err != nil {
		return err
	}
	if err := m.InsertUint16(uint16(len(resp.Devices))); err != nil {
		return err
	}
	for _, dev := range resp.Devices {
		if err := m.InsertUint16(dev.Index); err != nil {
			return err
		}
		if err := m.InsertUint32(dev.ActiveComparisonStamp); err != nil {
			return err
		}
		if err := insertVersionStringHeader(m, dev.ActiveVersion); err != nil {
			return err
		}
		if err := m.InsertArray(dev.ActiveReleaseDate[:]); err != nil {
			return err
		}
		if err := m.InsertUint32(dev.PendingComparisonStamp); err != nil {
			return err
		}
		if err := insertVersionStringHeader(m, dev.PendingVersion); err != nil {
			return err
		}
		if err := m.InsertArray(dev.PendingReleaseDate[:]); err != nil {
			return err
		}
		if err := m.InsertUint16(dev.ActivationMethods); err != nil {
			return err
		}
		if err := m.InsertUint32(dev.CapabilitiesDuringUpdate); err != nil {
			return err
		}
		if err := m.InsertArray(dev.ActiveVersion.Data); err != nil {
			return err
		}
		if err := m.InsertArray(dev.PendingVersion.Data); err != nil {
			return err
		}
	}
	return nil
}

// DecodeGetDownstreamFirmwareParametersResp reads a
// GetDownstreamFirmwareParameters response, borrowing version-string
// bytes from m.
func DecodeGetDownstreamFirmwareParametersResp(m *MsgBuf) (GetDownstreamFirmwareParametersResp, error) {
	var resp GetDownstreamFirmwareParametersResp
	var ccByte uint8
	if err := m.ExtractUint8(&ccByte); err != nil {
		return resp, err
	}
	resp.CompletionCode = CompletionCode(ccByte)
	if resp.CompletionCode != Success {
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
	if err := m.ExtractUint32(&resp.FDPCapabilitiesDuringUpdate); err != nil {
		return resp, err
	}
	var devCount uint16
	if err := m.ExtractUint16(&devCount); err != nil {
		return resp, err
	}
	for i := 0; i < int(devCount); i++ {
		var dev DownstreamDeviceParameters
		if err := m.ExtractUint16(&dev.Index); err != nil {
			return resp, err
		}
		if err := m.ExtractUint32(&dev.ActiveComparisonStamp); err != nil {
			return resp, err
		}
		var activeType, activeLen uint8
		if err := m.ExtractUint8(&activeType); err != nil {
			return resp, err
		}
		if err := m.ExtractUint8(&activeLen); err != nil {
			return resp, err
		}
		if err := m.ExtractArray(dev.ActiveReleaseDate[:]); err != nil {
			return resp, err
		}
		if err := m.ExtractUint32(&dev.PendingComparisonStamp); err != nil {
			return resp, err
		}
		var pendingType, pendingLen uint8
		if err := m.ExtractUint8(&pendingType); err != nil {
			return resp, err
		}
		if err := m.ExtractUint8(&pendingLen); err != nil {
			return resp, err
		}
		if err := m.ExtractArray(dev.PendingReleaseDate[:]); err != nil {
			return resp, err
		}
		if err := m.ExtractUint16(&dev.ActivationMethods); err != nil {
			return resp, err
		}
		if err := m.ExtractUint32(&dev.CapabilitiesDuringUpdate); err != nil {
			return resp, err
		}
		activeData, err := m.SpanRequired(int(activeLen))
		if err != nil {
			return resp, err
		}
		dev.ActiveVersion = VersionString{Type: StringType(activeType), Data: activeData}
		pendingData, err := m.SpanRequired(int(pendingLen))
		if err != nil {
			return resp, err
		}
		dev.PendingVersion = VersionString{Type: StringType(pendingType), Data: pendingData}
		resp.Devices = append(resp.Devices, dev)
	}
	return resp, m.Complete()
}
