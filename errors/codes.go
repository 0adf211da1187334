package errors

// ErrorCode identifies an error class in API responses
type ErrorCode int32

const (
	ErrorCode_HTTP_OK          ErrorCode = 0
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1004
	ErrorCode_FILE_TOO_LARGE   ErrorCode = 1005

	ErrorCode_CALL_NOT_FOUND       ErrorCode = 2000
	ErrorCode_CALL_ALREADY_EXISTS  ErrorCode = 2001
	ErrorCode_CALL_INVALID_STATE   ErrorCode = 2002
	ErrorCode_NO_COACHABLE_MOMENTS ErrorCode = 2003
	ErrorCode_AUDIO_PROCESSING     ErrorCode = 2004
	ErrorCode_PERSISTENCE_FAILED   ErrorCode = 2005
	ErrorCode_SYNTHESIS_FAILED     ErrorCode = 2006
	ErrorCode_EMPTY_SYNTHESIS_TEXT ErrorCode = 2007

	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 3000
	ErrorCode_DB_QUERY_FAILED            ErrorCode = 3002
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_FILE_TOO_LARGE:             "FILE_TOO_LARGE",
	ErrorCode_CALL_NOT_FOUND:             "CALL_NOT_FOUND",
	ErrorCode_CALL_ALREADY_EXISTS:        "CALL_ALREADY_EXISTS",
	ErrorCode_CALL_INVALID_STATE:         "CALL_INVALID_STATE",
	ErrorCode_NO_COACHABLE_MOMENTS:       "NO_COACHABLE_MOMENTS",
	ErrorCode_AUDIO_PROCESSING:           "AUDIO_PROCESSING",
	ErrorCode_PERSISTENCE_FAILED:         "PERSISTENCE_FAILED",
	ErrorCode_SYNTHESIS_FAILED:           "SYNTHESIS_FAILED",
	ErrorCode_EMPTY_SYNTHESIS_TEXT:       "EMPTY_SYNTHESIS_TEXT",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

// String returns the code's name
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
