package services

import (
	"errors"
	"fmt"
)

// Reason identifies why a request was rejected.
type Reason string

const (
	ReasonInvalidRequest           Reason = "InvalidRequest"
	ReasonInvalidScope             Reason = "InvalidScope"
	ReasonUnsupportedResponseType  Reason = "UnsupportedResponseType"
	ReasonUnsupportedGrantType     Reason = "UnsupportedGrantType"
	ReasonCodeExpired              Reason = "CodeExpired"
	ReasonNotYetVerified           Reason = "NotYetVerified"
	ReasonAccessDenied             Reason = "AccessDenied"
	ReasonClientMismatch           Reason = "ClientMismatch"
	ReasonUnknownCode              Reason = "UnknownCode"
	ReasonUnknownRefreshToken      Reason = "UnknownRefreshToken"
	ReasonRefreshTokenExpired      Reason = "RefreshTokenExpired"
	ReasonRefreshTokenRevoked      Reason = "RefreshTokenRevoked"
	ReasonCodeAlreadyExchanged     Reason = "CodeAlreadyExchanged"
	ReasonUnknownClient            Reason = "UnknownClient"
	ReasonMissingClientSecret      Reason = "MissingClientSecret"
	ReasonInvalidClientSecret      Reason = "InvalidClientSecret"
	ReasonInvalidCredentials       Reason = "InvalidCredentials"
	ReasonOwnerMismatch            Reason = "OwnerMismatch"
	ReasonConflictingDecision      Reason = "ConflictingDecision"
	ReasonStoreCorruption          Reason = "StoreCorruption"
	ReasonConflict                 Reason = "Conflict"
	ReasonTokenGenerationExhausted Reason = "TokenGenerationExhausted"
)

// Class groups reasons by who is at fault.
type Class string

const (
	ClassValidation     Class = "validation"
	ClassProtocol       Class = "protocol"
	ClassAuthentication Class = "authentication"
	ClassIntegrity      Class = "integrity"
)

func (r Reason) Class() Class {
	switch r {
	case ReasonInvalidRequest, ReasonInvalidScope, ReasonUnsupportedResponseType, ReasonUnsupportedGrantType:
		return ClassValidation
	case ReasonInvalidCredentials, ReasonOwnerMismatch, ReasonConflictingDecision:
		return ClassAuthentication
	case ReasonStoreCorruption, ReasonConflict, ReasonTokenGenerationExhausted:
		return ClassIntegrity
	default:
		return ClassProtocol
	}
}

// OAuthCode returns the OAuth 2.0 error code reported for r.
func (r Reason) OAuthCode() string {
	switch r {
	case ReasonInvalidRequest:
		return "invalid_request"
	case ReasonInvalidScope:
		return "invalid_scope"
	case ReasonUnsupportedResponseType:
		return "unsupported_response_type"
	case ReasonUnsupportedGrantType:
		return "unsupported_grant_type"
	case ReasonUnknownClient, ReasonMissingClientSecret, ReasonInvalidClientSecret:
		return "invalid_client"
	case ReasonAccessDenied, ReasonInvalidCredentials, ReasonOwnerMismatch, ReasonConflictingDecision:
		return "access_denied"
	case ReasonStoreCorruption, ReasonConflict, ReasonTokenGenerationExhausted:
		return "server_error"
	default:
		return "invalid_grant"
	}
}

// Error is a rejection raised by a service. Two Errors match under
// errors.Is when their reasons are equal.
type Error struct {
	Reason Reason
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Reason == e.Reason
}

// Sentinels for errors.Is.
var (
	ErrInvalidRequest           = &Error{Reason: ReasonInvalidRequest}
	ErrInvalidScope             = &Error{Reason: ReasonInvalidScope}
	ErrUnsupportedResponseType  = &Error{Reason: ReasonUnsupportedResponseType}
	ErrUnsupportedGrantType     = &Error{Reason: ReasonUnsupportedGrantType}
	ErrCodeExpired              = &Error{Reason: ReasonCodeExpired}
	ErrNotYetVerified           = &Error{Reason: ReasonNotYetVerified}
	ErrAccessDenied             = &Error{Reason: ReasonAccessDenied}
	ErrClientMismatch           = &Error{Reason: ReasonClientMismatch}
	ErrUnknownCode              = &Error{Reason: ReasonUnknownCode}
	ErrUnknownRefreshToken      = &Error{Reason: ReasonUnknownRefreshToken}
	ErrRefreshTokenExpired      = &Error{Reason: ReasonRefreshTokenExpired}
	ErrRefreshTokenRevoked      = &Error{Reason: ReasonRefreshTokenRevoked}
	ErrCodeAlreadyExchanged     = &Error{Reason: ReasonCodeAlreadyExchanged}
	ErrUnknownClient            = &Error{Reason: ReasonUnknownClient}
	ErrMissingClientSecret      = &Error{Reason: ReasonMissingClientSecret}
	ErrInvalidClientSecret      = &Error{Reason: ReasonInvalidClientSecret}
	ErrInvalidCredentials       = &Error{Reason: ReasonInvalidCredentials}
	ErrOwnerMismatch            = &Error{Reason: ReasonOwnerMismatch}
	ErrConflictingDecision      = &Error{Reason: ReasonConflictingDecision}
	ErrStoreCorruption          = &Error{Reason: ReasonStoreCorruption}
	ErrConflict                 = &Error{Reason: ReasonConflict}
	ErrTokenGenerationExhausted = &Error{Reason: ReasonTokenGenerationExhausted}
)

func reject(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf returns the reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return "", false
}
