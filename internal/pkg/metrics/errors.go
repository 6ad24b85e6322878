package metrics

import "errors"

var (
	// ErrPushgatewayURLRequired — не указан URL Pushgateway при включённых метриках.
	ErrPushgatewayURLRequired = errors.New("pushgateway URL is required when metrics enabled")

	// ErrJobNameRequired — не указано имя job.
	ErrJobNameRequired = errors.New("job name is required")

	// ErrInvalidTimeout — таймаут не положительный.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrPushgatewayURLInvalid — URL Pushgateway в неверном формате.
	ErrPushgatewayURLInvalid = errors.New("pushgateway URL has invalid format")
)
