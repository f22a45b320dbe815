package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument  = 1000
	ErrCodeInvalidJSON      = 1001
	ErrCodeRequestTooLarge  = 1002
	ErrCodeInvalidID        = 1004
	ErrCodeMissingRequired  = 1009
	ErrCodeInvalidUpload    = 1020
	ErrCodeUnsupportedMedia = 1021
	ErrCodeInvalidBlobPath  = 1022

	// Domain state (2xxx)
	ErrCodeImageNotFound  = 2001
	ErrCodeItemNotFound   = 2002
	ErrCodeBrandNotFound  = 2003
	ErrCodeArtistNotFound = 2004
	ErrCodeBlobNotFound   = 2005
	ErrCodeUploadBusy     = 2101
	ErrCodeConflict       = 2102

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal          = 4001
	ErrCodeStoreFailure      = 4002
	ErrCodeRemoteWrite       = 4003
	ErrCodePartialPropagate  = 4004
	ErrCodeUploadInterrupted = 4005
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	case 502:
		return ErrCodeRemoteWrite
	default:
		return 0
	}
}
