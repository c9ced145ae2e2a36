// Package errors provides structured error handling for docvec.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Document and index I/O errors
//   - 3XX: Remote storage errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and index I/O errors.
	CategoryIO Category = "IO"
	// CategoryStorage indicates remote object storage errors.
	CategoryStorage Category = "STORAGE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort the run.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the run can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"
	ErrCodeConfigMissing = "ERR_102_CONFIG_MISSING"

	// Document and index I/O errors (200-299)
	ErrCodeExtractFailed    = "ERR_201_EXTRACT_FAILED"
	ErrCodeArtifactCorrupt  = "ERR_202_ARTIFACT_CORRUPT"
	ErrCodeCheckpointFailed = "ERR_205_CHECKPOINT_FAILED"

	// Remote storage errors (300-399)
	ErrCodeObjectFetch   = "ERR_301_OBJECT_FETCH"
	ErrCodeObjectUpload  = "ERR_302_OBJECT_UPLOAD"
	ErrCodeObjectMissing = "ERR_303_OBJECT_MISSING"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeDimensionMismatch = "ERR_402_DIMENSION_MISMATCH"

	// Internal errors (500-599)
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeEmbeddingFailed = "ERR_502_EMBEDDING_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryStorage
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// The split mirrors the pipeline's fault-isolation boundaries: extraction and
// embedding failures skip one document, everything else aborts the run.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeExtractFailed, ErrCodeEmbeddingFailed:
		return SeverityError
	case ErrCodeObjectMissing:
		return SeverityWarning
	default:
		return SeverityFatal
	}
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeObjectFetch, ErrCodeObjectUpload, ErrCodeEmbeddingFailed:
		return true
	default:
		return false
	}
}
