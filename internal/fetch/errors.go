package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
)

// TransientError wraps a failure worth retrying: timeouts, connection
// resets, 5xx responses.
type TransientError struct {
	URL string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient fetch error for %s: %v", e.URL, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// PermanentError wraps a failure that retrying cannot fix: 4xx responses,
// TLS validation failures, a source exceeding the declared size.
type PermanentError struct {
	URL string
	// HTTP status when the failure came from a response, 0 otherwise.
	Status int
	Err    error
}

func (e *PermanentError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("permanent fetch error for %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("permanent fetch error for %s: %v", e.URL, e.Err)
}
func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err is non-retryable.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// classify wraps a transport-level error as permanent when it stems from
// certificate validation, transient otherwise. Context cancellation is
// passed through untouched so callers can distinguish it from both.
func classify(url string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		certInvalid      x509.CertificateInvalidError
		certVerify       *tls.CertificateVerificationError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostname) ||
		errors.As(err, &certInvalid) || errors.As(err, &certVerify) {
		return &PermanentError{URL: url, Err: err}
	}
	return &TransientError{URL: url, Err: err}
}

// retryableStatus reports whether an HTTP status is worth another attempt.
func retryableStatus(code int) bool {
	switch code {
	case 408, 425, 429:
		return true
	}
	return code >= 500
}
