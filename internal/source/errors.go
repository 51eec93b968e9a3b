package source

import "github.com/vitalguard/vitalguard/internal/errors"

const (
	// Configuration Errors
	ErrNoEndpoint = errors.ErrorCode("source_no_endpoint")

	// Transport Errors
	ErrFetchFailed    = errors.ErrorCode("source_fetch_failed")
	ErrBadStatus      = errors.ErrorCode("source_bad_status")
	ErrDecodePayload  = errors.ErrorCode("source_decode_payload_failed")
	ErrRequestFailed  = errors.ErrorCode("source_request_failed")
	ErrRetryExhausted = errors.ErrorCode("source_retry_exhausted")
)
