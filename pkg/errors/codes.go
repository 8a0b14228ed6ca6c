package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeInvalidParam    ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_003"
	ErrCodeTimeout         ErrorCode = "COMMON_004"
	ErrCodeValidation      ErrorCode = "COMMON_005"
	ErrCodeExternalService ErrorCode = "COMMON_006"
	ErrCodeUnknown         ErrorCode = "COMMON_999"
)

// Configuration error codes.
const (
	ErrCodeConfigInvalid ErrorCode = "CFG_001"
	ErrCodeConfigWeights ErrorCode = "CFG_002"
)

// Analysis error codes.
const (
	ErrCodeSimilarityFailed ErrorCode = "ANA_001"
	ErrCodeScoringFailed    ErrorCode = "ANA_002"
	ErrCodeNoCandidates     ErrorCode = "ANA_003"
	ErrCodeVectorizerUnfit  ErrorCode = "ANA_004"
	ErrCodeUnknownDimension ErrorCode = "ANA_005"
)

// Provider error codes.
const (
	ErrCodeEmbeddingFailed  ErrorCode = "PRV_001"
	ErrCodeCompletionFailed ErrorCode = "PRV_002"
	ErrCodeProviderTimeout  ErrorCode = "PRV_003"
	ErrCodeEmptyInput       ErrorCode = "PRV_004"
)

// Short aliases used throughout the codebase.
const (
	CodeInternal        = ErrCodeInternal
	CodeInvalidParam    = ErrCodeInvalidParam
	CodeNotFound        = ErrCodeNotFound
	CodeValidation      = ErrCodeValidation
	CodeExternalService = ErrCodeExternalService
	CodeUnknown         = ErrCodeUnknown
	CodeOK              = ErrorCode("OK")
)
