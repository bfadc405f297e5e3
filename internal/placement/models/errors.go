package models

import "errors"

// ============================================================
// Domain errors
// ============================================================

// DomainError локальная восстанавливаемая ошибка движка.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	ErrInvalidRatio              = NewDomainError("INVALID_RATIO", "px per cm ratio must be positive")
	ErrCalibrationIncomplete     = NewDomainError("CALIBRATION_INCOMPLETE", "calibration is incomplete")
	ErrInvalidSizeTable          = NewDomainError("INVALID_SIZE_TABLE", "size table cannot produce a scale factor")
	ErrPresetRequiresCalibration = NewDomainError("PRESET_REQUIRES_CALIBRATION", "calibrate the canvas before applying a preset")
	ErrPresetNotFound            = NewDomainError("PRESET_NOT_FOUND", "preset not found")
	ErrInvalidTransition         = NewDomainError("INVALID_TRANSITION", "action not allowed in current calibration step")
	ErrInvalidInput              = NewDomainError("INVALID_INPUT", "invalid input provided")
	ErrNotFound                  = NewDomainError("NOT_FOUND", "resource not found")
)

// CodeOf достаёт код DomainError из цепочки обёрток; "" для чужих ошибок.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
