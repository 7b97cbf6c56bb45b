package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrInvalidInput        = fmt.Errorf("invalid input")
	ErrNotFound            = fmt.Errorf("not found")
	ErrSendFailed          = fmt.Errorf("send failed")
	ErrDeliveryFailed      = fmt.Errorf("delivery failed")
	ErrMediaDownloadFailed = fmt.Errorf("media download failed")
	ErrChatLookupFailed    = fmt.Errorf("chat lookup failed")
	ErrSessionNotReady     = fmt.Errorf("session not ready")
)
