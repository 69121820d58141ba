package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// FormatForUser renders err for a person at a terminal. The cause is
// only shown in debug mode. Errors that are not AppErrors pass through.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}
	ae := asAppError(err)
	if ae == nil {
		return err.Error()
	}

	lines := []string{"Error: " + ae.Message}
	if ae.Suggestion != "" {
		lines = append(lines, "", "Suggestion: "+ae.Suggestion)
	}
	if debug && ae.Cause != nil {
		lines = append(lines, "", "Cause: "+ae.Cause.Error())
	}
	lines = append(lines, "", "["+ae.Code+"]")
	return strings.Join(lines, "\n")
}

// FormatForCLI is the compact three-line form used by the log viewer.
// Plain errors are reported as internal.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	ae := asAppError(err)
	if ae == nil {
		ae = Wrap(ErrCodeInternal, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", ae.Message)
	if ae.Suggestion != "" {
		fmt.Fprintf(&b, "  Hint: %s\n", ae.Suggestion)
	}
	fmt.Fprintf(&b, "  Code: %s\n", ae.Code)
	return b.String()
}

// FormatForLog flattens err into slog-friendly fields. Details are
// prefixed with "detail_".
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}
	ae := asAppError(err)
	if ae == nil {
		return map[string]any{"error": err.Error()}
	}

	fields := make(map[string]any, 7+len(ae.Details))
	fields["error_code"] = ae.Code
	fields["message"] = ae.Message
	fields["category"] = string(ae.Category)
	fields["severity"] = string(ae.Severity)
	fields["retryable"] = ae.Retryable
	if ae.Cause != nil {
		fields["cause"] = ae.Cause.Error()
	}
	if ae.Suggestion != "" {
		fields["suggestion"] = ae.Suggestion
	}
	for k, v := range ae.Details {
		fields["detail_"+k] = v
	}
	return fields
}

// HTTPStatus maps an error to the status code the HTTP layer answers with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch GetCode(err) {
	case ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeAccessDenied:
		return http.StatusForbidden
	}
	if GetCategory(err) == CategoryValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
