package wallet

import (
	"errors"
	"strings"
)

// ErrNoWallet is returned when no wallet address is configured or connected
var ErrNoWallet = errors.New("no wallet connected")

// ErrorKind classifies a failed transaction submission
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInsufficientSponsorship
	KindPaymasterRejected
	KindGasTooLow
	KindRejected
	KindInsufficientFunds
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindInsufficientSponsorship:
		return "insufficient_sponsorship"
	case KindPaymasterRejected:
		return "paymaster_rejected"
	case KindGasTooLow:
		return "gas_too_low"
	case KindRejected:
		return "rejected"
	case KindInsufficientFunds:
		return "insufficient_funds"
	default:
		return "unknown"
	}
}

// TriggersFallback reports whether a failure of this kind should be retried
// without sponsorship. Only sponsorship-level failures qualify; everything
// else is fatal to the attempt.
func (k ErrorKind) TriggersFallback() bool {
	switch k {
	case KindInsufficientSponsorship, KindPaymasterRejected, KindGasTooLow:
		return true
	default:
		return false
	}
}

// SendError is a transaction submission failure with a classified kind
type SendError struct {
	Kind    ErrorKind
	Message string
}

func (e *SendError) Error() string {
	return e.Message
}

// KindOf extracts the ErrorKind from an error chain. Errors that are not
// SendErrors classify as KindUnknown.
func KindOf(err error) ErrorKind {
	var se *SendError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// relay error codes, for relays that return a structured code field
var codeKinds = map[string]ErrorKind{
	"insufficient_sponsorship": KindInsufficientSponsorship,
	"paymaster_rejected":       KindPaymasterRejected,
	"gas_too_low":              KindGasTooLow,
	"rejected":                 KindRejected,
	"insufficient_funds":       KindInsufficientFunds,
}

// ClassifyCode maps a structured relay error code to an ErrorKind
func ClassifyCode(code string) ErrorKind {
	if kind, ok := codeKinds[strings.ToLower(code)]; ok {
		return kind
	}
	return KindUnknown
}

// ClassifyMessage classifies a bare error message by substring. This is the
// compatibility path for relays that return no structured code.
func ClassifyMessage(msg string) ErrorKind {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "sponsorship"):
		return KindInsufficientSponsorship
	case strings.Contains(msg, "paymaster"):
		return KindPaymasterRejected
	case strings.Contains(msg, "gas too low"):
		return KindGasTooLow
	default:
		return KindUnknown
	}
}
