package services

import "errors"

// ErrInvalidTimezone はIANA名として解決できないタイムゾーンを表します。
var ErrInvalidTimezone = errors.New("invalid timezone")
