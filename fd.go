// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import "sync"

// FDState is one of the seven states of the firmware device update state
// machine (DSP0267 §5.1).
type FDState uint8

const (
	FDStateIdle            FDState = 0
	FDStateLearnComponents FDState = 1
	FDStateReadyXfer       FDState = 2
	FDStateDownload        FDState = 3
	FDStateVerify          FDState = 4
	FDStateApply           FDState = 5
	FDStateActivate        FDState = 6
)

// ReasonCode explains why the FD is in its current state, reported via
// GetStatus (DSP0267 Table 26).
type ReasonCode uint8

const (
	ReasonCodeInitialization        ReasonCode = 0
	ReasonCodeActivateFirmware      ReasonCode = 1
	ReasonCodeCancelUpdate          ReasonCode = 2
	ReasonCodeTimeoutLearnComponent ReasonCode = 3
	ReasonCodeTimeoutReadyXfer      ReasonCode = 4
	ReasonCodeTimeoutDownload       ReasonCode = 5
	ReasonCodeTimeoutVerify         ReasonCode = 6
	ReasonCodeTimeoutApply          ReasonCode = 7
)

// AuxState is the coarse progress indicator GetStatus reports alongside
// AuxStateStatus (DSP0267 Table 25).
type AuxState uint8

const (
	AuxStateIdle       AuxState = 0
	AuxStateInProgress AuxState = 1
	AuxStateSuccess    AuxState = 2
	AuxStateFailed     AuxState = 3
)

// retryTimeoutMillis bounds how long the FD waits for the UA's next
// RequestFirmwareData/TransferComplete/... before reverting to Idle, the
// same 1-second retry budget the fuzz harness's cb_now comment describes.
const retryTimeoutMillis = 1000

// FDOps is the set of device-specific callbacks an FD delegates to, the Go
// shape of libpldm's pldm_fd_ops callback table.
type FDOps interface {
	// DeviceIdentifiers returns the descriptors reported by
	// QueryDeviceIdentifiers.
	DeviceIdentifiers() ([]Descriptor, error)
	// Components returns the component parameter table reported by
	// GetFirmwareParameters.
	Components() ([]ComponentParameterEntry, error)
	// ImagesetVersions returns the active and pending component-set
	// version strings reported by GetFirmwareParameters.
	ImagesetVersions() (active, pending VersionString, err error)
	// UpdateComponent is asked whether a proposed component update may
	// proceed; update is true for UpdateComponent, false for a dry-run
	// PassComponentTable check.
	UpdateComponent(update bool, req UpdateComponentReq) ComponentResponseCode
	// TransferSize reports the maximum chunk size the FD will request
	// in RequestFirmwareData.
	TransferSize() uint32
	// FirmwareData is invoked when a requested image chunk arrives
	// during FDStateDownload.
	FirmwareData(offset uint32, data []byte) error
	// Verify is invoked once per tick while the FD is in FDStateVerify.
	// It reports whether verification is still pending and the FD's
	// percent progress through it (0-100); a non-nil error ends
	// verification in failure.
	Verify() (pending bool, percent uint8, err error)
	// Apply is invoked once per tick while the FD is in FDStateApply,
	// with the same pending/percent/err contract as Verify.
	Apply() (pending bool, percent uint8, err error)
	// Activate is invoked on ActivateFirmware. It reports the estimated
	// time in seconds before the new image becomes active, echoed to the
	// UA in the ActivateFirmware response.
	Activate(selfContained bool) (estimatedTimeSeconds uint16, err error)
	// CancelUpdateComponent notifies the device that an in-progress
	// component update has been abandoned.
	CancelUpdateComponent()
}

// FD is a firmware device state machine. It owns no transport; callers feed
// it wire bytes via HandleMessage and write whatever non-empty response it
// returns back to the UA.
type FD struct {
	mu    sync.Mutex
	ops   FDOps
	clock Clock

	state    FDState
	previous FDState

	auxState        AuxState
	auxStateStatus  uint8
	progressPercent uint8
	reasonCode      ReasonCode

	current    UpdateComponentReq
	haveUpdate bool
	offset     uint32
	lastActive uint64
}

// NewFD constructs an FD in FDStateIdle with reasonCode = INITIALIZATION,
// its power-on state.
func NewFD(ops FDOps, clock Clock) *FD {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &FD{
		ops:        ops,
		clock:      clock,
		state:      FDStateIdle,
		previous:   FDStateIdle,
		reasonCode: ReasonCodeInitialization,
	}
}

// State returns the FD's current state.
func (fd *FD) State() FDState {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.state
}

func (fd *FD) transition(next FDState) {
	fd.previous = fd.state
	fd.state = next
	fd.lastActive = fd.clock.Now()
}

// timeoutReasonFor maps the state a timeout fired in to the matching
// reason code (DSP0267 Table 26).
func timeoutReasonFor(state FDState) ReasonCode {
	switch state {
	case FDStateLearnComponents:
		return ReasonCodeTimeoutLearnComponent
	case FDStateDownload:
		return ReasonCodeTimeoutDownload
	case FDStateVerify:
		return ReasonCodeTimeoutVerify
	case FDStateApply:
		return ReasonCodeTimeoutApply
	case FDStateReadyXfer:
		return ReasonCodeTimeoutReadyXfer
	default:
		return ReasonCodeTimeoutReadyXfer
	}
}

// expireIfStale resets the FD to Idle with the matching timeout reason
// code when the UA has left it waiting in any non-idle state longer than
// retryTimeoutMillis. ReadyXfer is covered too: a UA that never follows
// up with UpdateComponent or ActivateFirmware would otherwise park the
// session forever. The uint64 subtraction stays correct across clock
// wraparound.
func (fd *FD) expireIfStale() {
	if fd.state == FDStateIdle {
		return
	}
	if fd.clock.Now()-fd.lastActive > retryTimeoutMillis {
		if fd.haveUpdate {
			fd.ops.CancelUpdateComponent()
			fd.haveUpdate = false
		}
		fd.reasonCode = timeoutReasonFor(fd.state)
		fd.auxState = AuxStateFailed
		fd.transition(FDStateIdle)
	}
}

// HandleMessage decodes one PLDM type-5 request from data and returns the
// encoded response, or an error if the message could not be parsed at all
// (a malformed message that can still be answered yields a response whose
// CompletionCode carries the failure, not a Go error). TransferComplete,
// VerifyComplete and ApplyComplete are not handled here: DSP0267 has the FD
// send those as requests to the UA, not receive them, so they are driven by
// NextProgressNotification/HandleProgressResponse instead.
func (fd *FD) HandleMessage(data []byte) ([]byte, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.expireIfStale()

	m, err := NewMsgBuf(3, data)
	if err != nil {
		return nil, err
	}
	hdr, err := UnpackHeader(m)
	if err != nil {
		return nil, err
	}
	if hdr.PldmType != fwupPldmType || hdr.MsgType != Request {
		return nil, ErrUnsupportedType
	}

	switch hdr.Command {
	case CmdQueryDeviceIdentifiers:
		return fd.handleQueryDeviceIdentifiers(hdr.Instance)
	case CmdGetFirmwareParameters:
		return fd.handleGetFirmwareParameters(hdr.Instance)
	case CmdRequestUpdate:
		return fd.handleRequestUpdate(hdr.Instance, m)
	case CmdPassComponentTable:
		return fd.handlePassComponentTable(hdr.Instance, m)
	case CmdUpdateComponent:
		return fd.handleUpdateComponent(hdr.Instance, m)
	case CmdActivateFirmware:
		return fd.handleActivateFirmware(hdr.Instance, m)
	case CmdGetStatus:
		return fd.handleGetStatus(hdr.Instance)
	case CmdCancelUpdateComponent:
		return fd.handleCancelUpdateComponent(hdr.Instance)
	case CmdCancelUpdate:
		return fd.handleCancelUpdate(hdr.Instance)
	default:
		return nil, ErrUnsupportedType
	}
}

func respondFixed(encode func(*MsgBuf) error, size int) ([]byte, error) {
	buf := make([]byte, size)
	m, err := NewMsgBuf(size, buf)
	if err != nil {
		return nil, err
	}
	if err := encode(m); err != nil {
		return nil, err
	}
	used, err := m.CompleteUsed(size)
	if err != nil {
		return nil, err
	}
	return buf[:used], nil
}

func (fd *FD) handleQueryDeviceIdentifiers(instance uint8) ([]byte, error) {
	descriptors, err := fd.ops.DeviceIdentifiers()
	if err != nil {
		return respondFixed(func(w *MsgBuf) error {
			return EncodeQueryDeviceIdentifiersResp(instance, QueryDeviceIdentifiersResp{CompletionCode: ToCompletionCode(err)}, w)
		}, 4)
	}
	size := 3 + 1 + 4 + 1
	for _, d := range descriptors {
		size += 4 + len(d.Data)
	}
	return respondFixed(func(w *MsgBuf) error {
		return EncodeQueryDeviceIdentifiersResp(instance, QueryDeviceIdentifiersResp{
			CompletionCode: Success,
			Descriptors:    descriptors,
		}, w)
	}, size)
}

func (fd *FD) handleGetFirmwareParameters(instance uint8) ([]byte, error) {
	active, pending, err := fd.ops.ImagesetVersions()
	if err != nil {
		return respondFixed(func(w *MsgBuf) error {
			return EncodeGetFirmwareParametersResp(instance, GetFirmwareParametersResp{CompletionCode: ToCompletionCode(err)}, w)
		}, 4)
	}
	components, err := fd.ops.Components()
	if err != nil {
		return respondFixed(func(w *MsgBuf) error {
			return EncodeGetFirmwareParametersResp(instance, GetFirmwareParametersResp{CompletionCode: ToCompletionCode(err)}, w)
		}, 4)
	}
	size := 3 + 1 + 4 + 2 + 4 + len(active.Data) + len(pending.Data)
	for _, c := range components {
		size += 23 + 2*componentReleaseDateLength + len(c.ActiveVersion.Data) + len(c.PendingVersion.Data)
	}
	return respondFixed(func(w *MsgBuf) error {
		return EncodeGetFirmwareParametersResp(instance, GetFirmwareParametersResp{
			CompletionCode:         Success,
			ActiveImageSetVersion:  active,
			PendingImageSetVersion: pending,
			Components:             components,
		}, w)
	}, size)
}

func (fd *FD) handleRequestUpdate(instance uint8, m *MsgBuf) ([]byte, error) {
	req, err := DecodeRequestUpdateReq(m)
	if err != nil {
		return respondFixed(func(w *MsgBuf) error {
			return EncodeRequestUpdateResp(instance, RequestUpdateResp{CompletionCode: ToCompletionCode(err)}, w)
		}, 4)
	}
	fd.transition(FDStateLearnComponents)
	return respondFixed(func(w *MsgBuf) error {
		return EncodeRequestUpdateResp(instance, RequestUpdateResp{
			CompletionCode:    Success,
			FDMetaDataLength:  0,
			FDWillSendPkgData: req.PackageDataLength > 0,
		}, w)
	}, 7)
}

func (fd *FD) handlePassComponentTable(instance uint8, m *MsgBuf) ([]byte, error) {
	req, err := DecodePassComponentTableReq(m)
	if err != nil {
		return respondFixed(func(w *MsgBuf) error {
			return EncodePassComponentTableResp(instance, ToCompletionCode(err), 0, w)
		}, 4)
	}
	updReq := UpdateComponentReq{
		CompClassification:      req.CompClassification,
		CompIdentifier:          req.CompIdentifier,
		CompClassificationIndex: req.CompClassificationIndex,
		CompComparisonStamp:     req.CompComparisonStamp,
		Version:                 req.Version,
		CompImageSize:           1,
	}
	resp := fd.ops.UpdateComponent(false, updReq)
	if fd.state == FDStateLearnComponents &&
		(req.TransferFlag == TransferEnd || req.TransferFlag == TransferStartAndEnd) {
		fd.transition(FDStateReadyXfer)
	}
	return respondFixed(func(w *MsgBuf) error {
		return EncodePassComponentTableResp(instance, Success, resp, w)
	}, 5)
}

func (fd *FD) handleUpdateComponent(instance uint8, m *MsgBuf) ([]byte, error) {
	if fd.state != FDStateLearnComponents && fd.state != FDStateReadyXfer {
		return respondFixed(func(w *MsgBuf) error {
			return EncodeUpdateComponentResp(instance, ErrorNotReady, 0, false, w)
		}, 4)
	}
	req, err := DecodeUpdateComponentReq(m)
	if err != nil {
		return respondFixed(func(w *MsgBuf) error {
			return EncodeUpdateComponentResp(instance, ToCompletionCode(err), 0, false, w)
		}, 4)
	}
	compResp := fd.ops.UpdateComponent(true, req)
	if compResp != ComponentCanBeUpdated {
		return respondFixed(func(w *MsgBuf) error {
			return EncodeUpdateComponentResp(instance, Success, UpdateComponentResponseCode(compResp), false, w)
		}, 6)
	}
	fd.current = req
	fd.haveUpdate = true
	fd.offset = 0
	fd.progressPercent = 0
	fd.auxState = AuxStateInProgress
	fd.transition(FDStateReadyXfer)
	return respondFixed(func(w *MsgBuf) error {
		return EncodeUpdateComponentResp(instance, Success, UpdateComponentCanBeUpdated, true, w)
	}, 6)
}

func (fd *FD) handleActivateFirmware(instance uint8, m *MsgBuf) ([]byte, error) {
	selfContained, err := DecodeActivateFirmwareReq(m)
	if err != nil {
		return respondFixed(func(w *MsgBuf) error {
			return EncodeActivateFirmwareResp(instance, ToCompletionCode(err), 0, w)
		}, 4)
	}
	fd.transition(FDStateActivate)
	estimated, activateErr := fd.ops.Activate(selfContained)
	if activateErr != nil {
		fd.transition(FDStateReadyXfer)
		return respondFixed(func(w *MsgBuf) error {
			return EncodeActivateFirmwareResp(instance, ToCompletionCode(activateErr), 0, w)
		}, 4)
	}
	fd.reasonCode = ReasonCodeActivateFirmware
	fd.auxState = AuxStateIdle
	fd.transition(FDStateIdle)
	return respondFixed(func(w *MsgBuf) error {
		return EncodeActivateFirmwareResp(instance, Success, estimated, w)
	}, 6)
}

func (fd *FD) handleGetStatus(instance uint8) ([]byte, error) {
	return respondFixed(func(w *MsgBuf) error {
		return EncodeGetStatusResp(instance, GetStatusResp{
			CompletionCode:  Success,
			CurrentState:    fd.state,
			PreviousState:   fd.previous,
			AuxState:        uint8(fd.auxState),
			AuxStateStatus:  fd.auxStateStatus,
			ProgressPercent: fd.progressPercent,
			ReasonCode:      uint8(fd.reasonCode),
			UpdateOptionFlagsEnabled: uint32(fd.current.UpdateOptionFlags),
		}, w)
	}, 16)
}

func (fd *FD) handleCancelUpdateComponent(instance uint8) ([]byte, error) {
	if fd.haveUpdate {
		fd.ops.CancelUpdateComponent()
		fd.haveUpdate = false
	}
	fd.auxState = AuxStateIdle
	fd.progressPercent = 0
	fd.transition(FDStateReadyXfer)
	return respondFixed(func(w *MsgBuf) error {
		return EncodeCancelUpdateComponentResp(instance, Success, w)
	}, 4)
}

func (fd *FD) handleCancelUpdate(instance uint8) ([]byte, error) {
	if fd.haveUpdate {
		fd.ops.CancelUpdateComponent()
		fd.haveUpdate = false
	}
	fd.reasonCode = ReasonCodeCancelUpdate
	fd.auxState = AuxStateIdle
	fd.progressPercent = 0
	fd.transition(FDStateIdle)
	return respondFixed(func(w *MsgBuf) error {
		return EncodeCancelUpdateResp(instance, CancelUpdateResp{CompletionCode: Success}, w)
	}, 12)
}

// NextFirmwareDataRequest builds the next RequestFirmwareData request the
// FD should send to the UA. Called in FDStateReadyXfer with an accepted
// UpdateComponent, it first moves the FD to FDStateDownload. It returns
// ok=false when no component update is accepted or the FD is in neither
// FDStateReadyXfer nor FDStateDownload.
func (fd *FD) NextFirmwareDataRequest(instance uint8) (data []byte, ok bool, err error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if fd.state != FDStateDownload && fd.state != FDStateReadyXfer {
		return nil, false, nil
	}
	if !fd.haveUpdate {
		return nil, false, nil
	}
	if fd.state == FDStateReadyXfer {
		fd.transition(FDStateDownload)
	}
	length := fd.ops.TransferSize()
	if remaining := fd.current.CompImageSize - fd.offset; remaining < length {
		length = remaining
	}
	buf := make([]byte, 3+4+4)
	m, merr := NewMsgBuf(len(buf), buf)
	if merr != nil {
		return nil, false, merr
	}
	if err := EncodeRequestFirmwareDataReq(instance, RequestFirmwareDataReq{Offset: fd.offset, Length: length}, m); err != nil {
		return nil, false, err
	}
	used, uerr := m.CompleteUsed(len(buf))
	if uerr != nil {
		return nil, false, uerr
	}
	return buf[:used], true, nil
}

// HandleFirmwareDataResponse consumes a RequestFirmwareData response sent
// back by the UA, advancing the download offset on success.
func (fd *FD) HandleFirmwareDataResponse(data []byte) error {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	m, err := NewMsgBuf(0, data)
	if err != nil {
		return err
	}
	if _, err := UnpackHeader(m); err != nil {
		return err
	}
	cc, chunk, err := DecodeRequestFirmwareDataResp(m)
	if err != nil {
		return err
	}
	if cc != Success {
		return ErrProtocol
	}
	if err := fd.ops.FirmwareData(fd.offset, chunk); err != nil {
		return err
	}
	fd.offset += uint32(len(chunk))
	if fd.current.CompImageSize > 0 {
		fd.progressPercent = uint8((uint64(fd.offset) * 100) / uint64(fd.current.CompImageSize))
	}
	fd.lastActive = fd.clock.Now()
	return nil
}

// NextProgressNotification advances the FD through Verify and Apply on its
// own clock/ops results and returns the next outbound TransferComplete,
// VerifyComplete or ApplyComplete request the FD should send to the UA, if
// one is due. Like NextFirmwareDataRequest, this is FD-initiated: DSP0267
// has the FD send these three commands as requests, never receive them.
// ok is false when nothing is due yet — download still short of
// comp_image_size, or the last ops.Verify/ops.Apply call reported pending.
func (fd *FD) NextProgressNotification(instance uint8) (data []byte, ok bool, err error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	switch fd.state {
	case FDStateDownload:
		if !fd.haveUpdate || fd.offset < fd.current.CompImageSize {
			return nil, false, nil
		}
		fd.auxState = AuxStateInProgress
		fd.progressPercent = 0
		fd.transition(FDStateVerify)
		b, err := respondFixed(func(w *MsgBuf) error {
			return EncodeTransferCompleteReq(instance, TransferSuccess, w)
		}, 4)
		return b, true, err

	case FDStateVerify:
		pending, percent, verr := fd.ops.Verify()
		fd.progressPercent = percent
		if verr != nil {
			fd.ops.CancelUpdateComponent()
			fd.haveUpdate = false
			fd.auxState = AuxStateFailed
			fd.auxStateStatus = uint8(ToCompletionCode(verr))
			fd.transition(FDStateIdle)
			b, err := respondFixed(func(w *MsgBuf) error {
				return EncodeVerifyCompleteReq(instance, VerifyGenericError, w)
			}, 4)
			return b, true, err
		}
		if pending {
			return nil, false, nil
		}
		fd.auxState = AuxStateSuccess
		fd.transition(FDStateApply)
		b, err := respondFixed(func(w *MsgBuf) error {
			return EncodeVerifyCompleteReq(instance, VerifySuccess, w)
		}, 4)
		return b, true, err

	case FDStateApply:
		pending, percent, aerr := fd.ops.Apply()
		fd.progressPercent = percent
		if aerr != nil {
			fd.haveUpdate = false
			fd.auxState = AuxStateFailed
			fd.auxStateStatus = uint8(ToCompletionCode(aerr))
			fd.transition(FDStateIdle)
			b, err := respondFixed(func(w *MsgBuf) error {
				return EncodeApplyCompleteReq(instance, ApplyGenericError, 0, w)
			}, 7)
			return b, true, err
		}
		if pending {
			return nil, false, nil
		}
		fd.haveUpdate = false
		fd.auxState = AuxStateSuccess
		// Apply success returns to ready_xfer, not activate: activation is
		// an explicit UA command.
		fd.transition(FDStateReadyXfer)
		b, err := respondFixed(func(w *MsgBuf) error {
			return EncodeApplyCompleteReq(instance, ApplySuccess, 0, w)
		}, 7)
		return b, true, err

	default:
		return nil, false, nil
	}
}

// HandleProgressResponse consumes the UA's acknowledgement of whichever
// TransferComplete/VerifyComplete/ApplyComplete request
// NextProgressNotification last sent. The FD has already advanced its own
// state when it built that request; this only surfaces a non-Success ack
// as an error; it does not re-drive the state machine.
func (fd *FD) HandleProgressResponse(data []byte) error {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	m, err := NewMsgBuf(0, data)
	if err != nil {
		return err
	}
	hdr, err := UnpackHeader(m)
	if err != nil {
		return err
	}
	var cc CompletionCode
	switch hdr.Command {
	case CmdTransferComplete:
		cc, err = DecodeTransferCompleteResp(m)
	case CmdVerifyComplete:
		cc, err = DecodeVerifyCompleteResp(m)
	case CmdApplyComplete:
		cc, err = DecodeApplyCompleteResp(m)
	default:
		return ErrUnsupportedType
	}
	if err != nil {
		return err
	}
	if cc != Success {
		return ErrProtocol
	}
	fd.lastActive = fd.clock.Now()
	return nil
}
