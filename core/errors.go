package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError represents an error returned by the gateway with full context.
type APIError struct {
	Status  int
	Code    string
	Name    string
	Message string
	Details json.RawMessage
	DBRef   *DBErrorRef
	Err     error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("latitude: %s (status=%d, code=%s)", e.Message, e.Status, e.Code)
}

// Unwrap returns the underlying error for error chaining.
func (e *APIError) Unwrap() error {
	return e.Err
}

// DBErrorRef points at the database entity an error relates to.
type DBErrorRef struct {
	EntityUUID string `json:"entityUuid"`
	EntityType string `json:"entityType"`
}

// RunErrorDetails carries extra context for chain compile failures.
type RunErrorDetails struct {
	CompileCode string `json:"compileCode"`
	Message     string `json:"message"`
}

// Sentinel errors for classification.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnprocessable = errors.New("unprocessable entity")
	ErrRateLimited   = errors.New("rate limited")
	ErrServer        = errors.New("server error")
	ErrNetwork       = errors.New("network error")
	ErrDecode        = errors.New("decode error")
	ErrNotSupported  = errors.New("operation not supported")
)

// Validation errors with actionable guidance.
var (
	ErrProjectRequired      = errors.New("project id required: set a default with gateway.WithProjectID() or call .Project() on the builder")
	ErrPathRequired         = errors.New("document path required: pass a path to Client.Run(), e.g., client.Run(\"jokes/opener\")")
	ErrConversationRequired = errors.New("conversation uuid required: pass the uuid returned by a previous run")
	ErrNoMessages           = errors.New("no messages: add at least one message using .System(), .User(), or .Assistant()")
	ErrResponseRequired     = errors.New("response text required: set the completion text with .Response()")
)

// Gateway error codes reported in the errorCode field of error bodies.
const (
	ErrorCodeUnexpected          = "unexpected_error"
	ErrorCodeRateLimit           = "rate_limit_error"
	ErrorCodeUnauthorized        = "unauthorized_error"
	ErrorCodeForbidden           = "forbidden_error"
	ErrorCodeBadRequest          = "bad_request_error"
	ErrorCodeNotFound            = "not_found_error"
	ErrorCodeConflict            = "conflict_error"
	ErrorCodeUnprocessableEntity = "unprocessable_entity_error"
)

// Run error codes reported when a document execution fails.
const (
	RunErrorCodeUnknown                         = "unknown_error"
	RunErrorCodeDefaultProviderExceededQuota    = "default_provider_exceeded_quota_error"
	RunErrorCodeDefaultProviderInvalidModel     = "default_provider_invalid_model_error"
	RunErrorCodeDocumentConfig                  = "document_config_error"
	RunErrorCodeMissingProvider                 = "missing_provider_error"
	RunErrorCodeChainCompile                    = "chain_compile_error"
	RunErrorCodeAIRun                           = "ai_run_error"
	RunErrorCodeUnsupportedProviderResponseType = "unsupported_provider_response_type_error"
	RunErrorCodeAIProviderConfig                = "ai_provider_config_error"
	RunErrorCodeEvaluationMissingProviderLog    = "ev_run_missing_provider_log_error"
	RunErrorCodeEvaluationMissingWorkspace      = "ev_run_missing_workspace_error"
	RunErrorCodeEvaluationUnsupportedResultType = "ev_run_unsupported_result_type_error"
	RunErrorCodeEvaluationResponseInvalidFormat = "ev_run_response_json_format_error"
)

// Generic API error codes.
const (
	APIErrorCodeHTTPException       = "http_exception"
	APIErrorCodeInternalServerError = "internal_server_error"
)
