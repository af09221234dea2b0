package oracle

import "errors"

var (
	ErrOracleUnavailable = errors.New("oracle unavailable")
	ErrConsultTimeout    = errors.New("oracle consultation timeout")
	ErrInvalidResponse   = errors.New("oracle returned invalid response")
)
