package wirev1

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by both decoders. Truncated is recoverable — the
// cursor does not advance and the caller re-presents the region with more
// bytes appended. MalformedFrame and UnknownType both advance the cursor
// past the offending frame/header before being surfaced.
var (
	// ErrTruncated means fewer bytes remain than the declared frame or
	// header requires. The decoder's cursor is left unchanged.
	ErrTruncated = errors.New("wirev1: truncated frame")

	// ErrMalformedFrame means the declared length disagrees with the
	// record layout implied by the type byte.
	ErrMalformedFrame = errors.New("wirev1: malformed frame")

	// ErrUnknownType means the type byte does not match any supported
	// record layout.
	ErrUnknownType = errors.New("wirev1: unknown record type")
)

// UnknownTypeError carries the offending type byte alongside the sentinel
// so callers can count/report per-type occurrences.
type UnknownTypeError struct {
	Type byte
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("wirev1: unknown record type: 0x%02x", e.Type)
}

func (e *UnknownTypeError) Unwrap() error {
	return ErrUnknownType
}

// MalformedFrameError carries the declared length and the exact length
// required for the type that was being decoded. For a side byte other than
// 'B'/'S', Type holds that side byte and Declared/Required are zero.
type MalformedFrameError struct {
	Type     byte
	Declared int
	Required int
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("wirev1: malformed frame (type 0x%02x): declared length %d, expected %d",
		e.Type, e.Declared, e.Required)
}

func (e *MalformedFrameError) Unwrap() error {
	return ErrMalformedFrame
}
