// Package errors provides structured error handling for applogs.
//
// Every code reads ERR_NNN_NAME. The hundreds digit of NNN picks the
// category: 1 config, 2 storage IO, 3 server process, 4 validation and
// anything else internal.
package errors

import "strings"

// Category groups codes by the hundreds digit.
type Category string

const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryProcess    Category = "PROCESS"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
)

// Severity tells callers whether to abort, report or carry on.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

const (
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"

	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeDiskFull       = "ERR_203_DISK_FULL"
	ErrCodeRotateFailed   = "ERR_204_ROTATE_FAILED"
	ErrCodeDeleteFailed   = "ERR_205_DELETE_FAILED"
	ErrCodeDirFailed      = "ERR_206_DIR_FAILED"
	ErrCodeAccessDenied   = "ERR_207_ACCESS_DENIED"
	ErrCodeWriteFailed    = "ERR_208_WRITE_FAILED"

	ErrCodeAlreadyRunning = "ERR_301_ALREADY_RUNNING"
	ErrCodeNotRunning     = "ERR_302_NOT_RUNNING"

	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidOrigin = "ERR_402_INVALID_ORIGIN"

	ErrCodeInternal = "ERR_501_INTERNAL"
)

var categoryByDigit = map[byte]Category{
	'1': CategoryConfig,
	'2': CategoryIO,
	'3': CategoryProcess,
	'4': CategoryValidation,
}

// Write-path failures: the store reports them and the next append tries again.
var transientCodes = map[string]bool{
	ErrCodeWriteFailed:  true,
	ErrCodeRotateFailed: true,
	ErrCodeDeleteFailed: true,
	ErrCodeDirFailed:    true,
}

func categoryFromCode(code string) Category {
	num, ok := strings.CutPrefix(code, "ERR_")
	if !ok || len(num) < 3 {
		return CategoryInternal
	}
	if c, found := categoryByDigit[num[0]]; found {
		return c
	}
	return CategoryInternal
}

func severityFromCode(code string) Severity {
	switch {
	case code == ErrCodeDiskFull:
		return SeverityFatal
	case transientCodes[code]:
		return SeverityWarning
	default:
		return SeverityError
	}
}
