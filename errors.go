// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import "errors"

// Internal errors. Every codec in this package reports failures using one
// of these sentinels instead of the protocol's completion codes; callers
// that need to answer a request translate through ToCompletionCode.
var (
	// ErrInvalidArgument is returned for a nil/invalid argument, e.g. a nil
	// backing slice passed to NewMsgBuf, or a struct field outside its
	// legal range. Mirrors the C library's -EINVAL.
	ErrInvalidArgument = errors.New("pldm: invalid argument")

	// ErrOverflow is returned when a read or write would cross the end of
	// the buffer. Mirrors -EOVERFLOW. Once latched on a MsgBuf it is
	// sticky: every later operation on that buffer returns it too.
	ErrOverflow = errors.New("pldm: buffer overflow")

	// ErrBadMessage is returned when a message is fully parsed but bytes
	// remain unconsumed and the API demanded exact consumption. Mirrors
	// -EBADMSG.
	ErrBadMessage = errors.New("pldm: unconsumed trailing bytes")

	// ErrUnsupportedType is returned for an unrecognised PLDM type or
	// command. Mirrors -ENOMSG.
	ErrUnsupportedType = errors.New("pldm: unsupported type or command")

	// ErrNoMemory is returned when an internal allocation limit would be
	// exceeded (e.g. a BIOS table handle counter saturating).
	// Mirrors -ENOMEM.
	ErrNoMemory = errors.New("pldm: allocation limit reached")

	// ErrNotFound is returned when a lookup (by record handle, by entity,
	// by FRU record set identifier, ...) fails. Mirrors -ENOENT.
	ErrNotFound = errors.New("pldm: not found")

	// ErrProtocol is returned when a message is well-formed but violates a
	// protocol-level invariant the codec is responsible for enforcing
	// (e.g. an illegal transfer-operation-flag combination). Mirrors
	// -EPROTO.
	ErrProtocol = errors.New("pldm: protocol violation")

	// ErrNotSupported is returned for a recognised but unimplemented
	// combination of fields. Mirrors -ENOTSUP.
	ErrNotSupported = errors.New("pldm: not supported")
)

// CompletionCode is the first payload byte of every PLDM response (DSP0240
// §11). A completion code other than Success is not a Go error: decoders
// surface it to the caller and stop, they do not return it via the error
// return value.
type CompletionCode uint8

// Generic completion codes, common to every PLDM type.
const (
	Success                      CompletionCode = 0x00
	Error                        CompletionCode = 0x01
	ErrorInvalidData             CompletionCode = 0x02
	ErrorInvalidLength           CompletionCode = 0x03
	ErrorNotReady                CompletionCode = 0x04
	ErrorUnsupportedPldmCmd      CompletionCode = 0x05
	ErrorInvalidPldmType         CompletionCode = 0x20
	InvalidTransferOperationFlag CompletionCode = 0x21
)

// ToCompletionCode maps an internal error to the wire-level completion code
// a response should carry. A nil error maps to
// Success. Errors not covered by the table map to the generic Error code.
func ToCompletionCode(err error) CompletionCode {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrInvalidArgument):
		return ErrorInvalidData
	case errors.Is(err, ErrUnsupportedType):
		return ErrorInvalidPldmType
	case errors.Is(err, ErrBadMessage), errors.Is(err, ErrOverflow):
		return ErrorInvalidLength
	case errors.Is(err, ErrProtocol):
		return InvalidTransferOperationFlag
	default:
		return Error
	}
}

// String renders a completion code for logs and diagnostics.
func (c CompletionCode) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case Error:
		return "ERROR"
	case ErrorInvalidData:
		return "ERROR_INVALID_DATA"
	case ErrorInvalidLength:
		return "ERROR_INVALID_LENGTH"
	case ErrorNotReady:
		return "ERROR_NOT_READY"
	case ErrorUnsupportedPldmCmd:
		return "ERROR_UNSUPPORTED_PLDM_CMD"
	case ErrorInvalidPldmType:
		return "ERROR_INVALID_PLDM_TYPE"
	case InvalidTransferOperationFlag:
		return "INVALID_TRANSFER_OPERATION_FLAG"
	default:
		return "UNKNOWN"
	}
}
