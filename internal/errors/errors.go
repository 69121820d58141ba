package errors

import (
	stderrors "errors"
)

// AppError carries a stable code plus enough context to log it, show it to
// a user and map it onto an HTTP status.
type AppError struct {
	Code     string
	Message  string
	Category Category
	Severity Severity

	// Details end up as detail_<key> fields in FormatForLog.
	Details map[string]string
	Cause   error

	// Retryable is set for write-path failures that a later append may get past.
	Retryable  bool
	Suggestion string
}

func (e *AppError) Error() string {
	return "[" + e.Code + "] " + e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another AppError with the same code, so a bare
// &AppError{Code: ...} works as a sentinel for errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithDetail attaches a key/value pair and returns e.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the hint shown under the message and returns e.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New builds an AppError; category, severity and retryability follow from code.
func New(code, message string, cause error) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: transientCodes[code],
	}
}

// Wrap reuses err's text as the message. A nil err gives nil.
func Wrap(code string, err error) *AppError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

func ConfigError(message string, cause error) *AppError {
	return New(ErrCodeConfigInvalid, message, cause)
}

func NotFoundError(message string, cause error) *AppError {
	return New(ErrCodeFileNotFound, message, cause)
}

// AccessDeniedError is returned for names that resolve outside an origin directory.
func AccessDeniedError(message string) *AppError {
	return New(ErrCodeAccessDenied, message, nil)
}

func ValidationError(message string, cause error) *AppError {
	return New(ErrCodeInvalidInput, message, cause)
}

func InternalError(message string, cause error) *AppError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable reports whether the first AppError in err's chain is retryable.
func IsRetryable(err error) bool {
	ae := asAppError(err)
	return ae != nil && ae.Retryable
}

// IsFatal reports whether the first AppError in err's chain is fatal.
func IsFatal(err error) bool {
	ae := asAppError(err)
	return ae != nil && ae.Severity == SeverityFatal
}

// GetCode returns the code of the first AppError in err's chain, or "".
func GetCode(err error) string {
	if ae := asAppError(err); ae != nil {
		return ae.Code
	}
	return ""
}

// GetCategory returns the category of the first AppError in err's chain, or "".
func GetCategory(err error) Category {
	if ae := asAppError(err); ae != nil {
		return ae.Category
	}
	return ""
}

func asAppError(err error) *AppError {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae
	}
	return nil
}
