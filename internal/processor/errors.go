package processor

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrNetwork           = errors.New("network error")
	ErrTimeout           = errors.New("timeout")
	ErrBadStatus         = errors.New("bad status")
	ErrParse             = errors.New("parse error")
	ErrRead              = errors.New("read input")
	ErrEmptyInput        = errors.New("empty input")
	ErrMissingTranscript = errors.New("transcript missing from response")
)

// StatusError carries a non-2xx response. It matches ErrBadStatus with errors.Is.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", ErrBadStatus, e.Code)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", ErrBadStatus, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrBadStatus
}

// classifyCall maps an error from a remote call onto ErrTimeout or ErrNetwork.
func classifyCall(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
