package media

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed classification every raw failure maps into.
// Only Transient outcomes are eligible for retry.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransient
	KindSignFault
	KindIPBlock
	KindAccessFrequency
	KindCaptchaRequired
	KindInvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindSignFault:
		return "sign_fault"
	case KindIPBlock:
		return "ip_block"
	case KindAccessFrequency:
		return "access_frequency"
	case KindCaptchaRequired:
		return "captcha_required"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// DataFetchError is terminal: either the retry budget was exhausted or
// the platform answered with something that no retry can fix (e.g. a
// blocked account). It is never retried.
type DataFetchError struct {
	Msg string
	Err error
}

func (e *DataFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data fetch failed: %s: %v", e.Msg, e.Err)
	}
	return "data fetch failed: " + e.Msg
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// SignError means the sign server could not produce tokens. Exactly one
// attempt is made; it propagates untouched.
type SignError struct {
	Msg string
	Err error
}

func (e *SignError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sign failed: %s: %v", e.Msg, e.Err)
	}
	return "sign failed: " + e.Msg
}

func (e *SignError) Unwrap() error { return e.Err }

type IPBlockError struct {
	Msg string
}

func (e *IPBlockError) Error() string { return "ip blocked: " + e.Msg }

// AccessFrequencyError carries a mandatory cool-down: the client sleeps
// a random 2-10s before surfacing it, and the caller decides whether to
// retry the whole operation.
type AccessFrequencyError struct {
	Msg string
}

func (e *AccessFrequencyError) Error() string { return "access frequency: " + e.Msg }

// CaptchaRequiredError carries the challenge metadata from the anti-bot
// response headers. It requires external re-authentication and is never
// retried.
type CaptchaRequiredError struct {
	VerifyType string
	VerifyUUID string
}

func (e *CaptchaRequiredError) Error() string {
	return fmt.Sprintf("captcha required: verify_type=%s verify_uuid=%s", e.VerifyType, e.VerifyUUID)
}

type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return "invalid input: " + e.Msg }

// Classify maps err to its ErrorKind. Anything not in the closed set is
// Transient: network failures and unrecognized payloads are exactly the
// outcomes worth another attempt.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var (
		fetchErr   *DataFetchError
		signErr    *SignError
		ipErr      *IPBlockError
		freqErr    *AccessFrequencyError
		captchaErr *CaptchaRequiredError
		inputErr   *InvalidInputError
	)
	switch {
	case errors.As(err, &signErr):
		return KindSignFault
	case errors.As(err, &ipErr):
		return KindIPBlock
	case errors.As(err, &freqErr):
		return KindAccessFrequency
	case errors.As(err, &captchaErr):
		return KindCaptchaRequired
	case errors.As(err, &inputErr):
		return KindInvalidInput
	case errors.As(err, &fetchErr):
		return KindUnknown
	default:
		return KindTransient
	}
}

// Retryable reports whether the retry policy may attempt err again.
func Retryable(err error) bool {
	return Classify(err) == KindTransient
}
