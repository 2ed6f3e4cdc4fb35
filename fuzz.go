// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// fuzzClock is a Clock the fuzzer can advance by arbitrary amounts,
// exercising the FD's wrap-safe timeout comparisons.
type fuzzClock struct{ t uint64 }

func (c *fuzzClock) Now() uint64 { return c.t }

func (c *fuzzClock) advance(delta uint8) { c.t += uint64(delta) }

// fuzzOps is a permissive FDOps implementation: every callback succeeds,
// so the only failures the fuzzer can surface are FD invariant
// violations, not ops-layer rejections. This mirrors the role
// fuzz_ops_ctx plays in original_source/tests/fuzz/fd-fuzz.cpp.
type fuzzOps struct {
	received []byte
}

func (o *fuzzOps) DeviceIdentifiers() ([]Descriptor, error) {
	return []Descriptor{{Type: DescriptorIANAEnterpriseID, Data: []byte{0, 0, 0, 1}}}, nil
}

func (o *fuzzOps) Components() ([]ComponentParameterEntry, error) {
	return []ComponentParameterEntry{{
		Classification: ComponentClassificationFirmware,
		ActiveVersion:  VersionString{Type: StringTypeASCII, Data: []byte("0.0.0")},
		PendingVersion: VersionString{Type: StringTypeUnknown},
	}}, nil
}

func (o *fuzzOps) ImagesetVersions() (VersionString, VersionString, error) {
	v := VersionString{Type: StringTypeASCII, Data: []byte("0.0.0")}
	return v, v, nil
}

func (o *fuzzOps) UpdateComponent(update bool, req UpdateComponentReq) ComponentResponseCode {
	return ComponentCanBeUpdated
}

func (o *fuzzOps) TransferSize() uint32 { return 32 }

func (o *fuzzOps) FirmwareData(offset uint32, data []byte) error {
	o.received = append(o.received, data...)
	return nil
}

func (o *fuzzOps) Verify() (bool, uint8, error) { return false, 100, nil }
func (o *fuzzOps) Apply() (bool, uint8, error)  { return false, 100, nil }
func (o *fuzzOps) Activate(selfContained bool) (uint16, error) { return 0, nil }
func (o *fuzzOps) CancelUpdateComponent()                      {}

// runFDFuzz feeds data into a single FD session as a sequence of
// (tag, payload) records: tag 0 advances the fuzz clock by the next
// byte's value; tag 1 treats the remaining bytes of the record as a raw
// request for FD.HandleMessage; tag 2 drives one autonomous
// NextProgressNotification/HandleProgressResponse round trip, the same
// FD-initiated path RequestFirmwareData uses; any other tag ends the run.
// It panics only if the FD enters an unknown state, emits a progress
// notification that cannot be parsed, or fails or changes state on a
// GetStatus, which is what a fuzzer targeting this entry point is
// looking for.
func runFDFuzz(data []byte) {
	ops := &fuzzOps{}
	clock := &fuzzClock{}
	fd := NewFD(ops, clock)

	for len(data) > 0 {
		tag := data[0]
		data = data[1:]
		switch tag {
		case 0:
			if len(data) == 0 {
				return
			}
			clock.advance(data[0])
			data = data[1:]
		case 1:
			if len(data) == 0 {
				return
			}
			recordLen := int(data[0])
			data = data[1:]
			if recordLen > len(data) {
				recordLen = len(data)
			}
			msg := data[:recordLen]
			data = data[recordLen:]

			if _, err := fd.HandleMessage(msg); err != nil {
				continue
			}
			if before := fd.State(); before < FDStateIdle || before > FDStateActivate {
				panic("FD entered an unknown state")
			}
		case 2:
			notice, ok, err := fd.NextProgressNotification(0)
			if err != nil || !ok {
				break
			}
			nr, err := NewMsgBuf(len(notice), notice)
			if err != nil {
				panic("NextProgressNotification produced an unreadable message: " + err.Error())
			}
			hdr, err := UnpackHeader(nr)
			if err != nil {
				panic("NextProgressNotification produced an unparseable header: " + err.Error())
			}
			ack, err := respondAckFor(hdr.Command, hdr.Instance)
			if err != nil {
				break
			}
			if err := fd.HandleProgressResponse(ack); err != nil {
				break
			}
		default:
			return
		}

		// GetStatus must answer in every state and never alter it
		// (F6): round-trip it here and check the state is unchanged.
		before := fd.State()
		if _, err := fd.handleGetStatus(0); err != nil {
			panic("GetStatus failed: " + err.Error())
		}
		if fd.State() != before {
			panic("GetStatus altered FD state")
		}
	}
}

// respondAckFor builds the UA's Success acknowledgement for whichever
// FD-initiated progress command was just sent.
func respondAckFor(command uint8, instance uint8) ([]byte, error) {
	switch command {
	case CmdTransferComplete:
		return respondFixed(func(w *MsgBuf) error {
			return EncodeTransferCompleteResp(instance, Success, w)
		}, 4)
	case CmdVerifyComplete:
		return respondFixed(func(w *MsgBuf) error {
			return EncodeVerifyCompleteResp(instance, Success, w)
		}, 4)
	case CmdApplyComplete:
		return respondFixed(func(w *MsgBuf) error {
			return EncodeApplyCompleteResp(instance, Success, w)
		}, 4)
	default:
		return nil, ErrUnsupportedType
	}
}

// FuzzFDMessage is the legacy go-fuzz entry point (github.com/dvyukov/
// go-fuzz). It drives the Firmware Device state machine from a raw byte
// stream.
func FuzzFDMessage(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	runFDFuzz(data)
	return 1
}
