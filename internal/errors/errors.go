package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeAuth          ErrorType = "AUTH"
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeValidation    ErrorType = "VALIDATION"
	TypeProvider      ErrorType = "PROVIDER"
	TypePersistence   ErrorType = "PERSISTENCE"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by type and message, so wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// UserMessage returns the text shown to the user: the underlying error for
// provider failures, the message otherwise.
func (e *AppError) UserMessage() string {
	if e.Type == TypeProvider && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Auth errors
var (
	ErrNotAuthenticated = NewAppError(TypeAuth, "Please sign in to use AI enhancement", nil).
		WithSuggestion("Set your identity: promptforge config set user.name \"Your Name\"")
)

// Configuration errors
var (
	ErrInvalidConfiguration = NewAppError(TypeConfiguration, "Please select valid configuration options", nil).
				WithSuggestion("List the available options: promptforge catalog")

	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "OpenRouter API key not configured", nil).
				WithSuggestion("Run: promptforge config set openrouter_api_key <key>\nor export OPENROUTER_API_KEY")

	ErrGeminiAPIKeyMissing = NewAppError(TypeConfiguration, "Gemini API key not configured", nil).
				WithSuggestion("Run: promptforge config set gemini_api_key <key>")

	ErrProxyURLMissing = NewAppError(TypeConfiguration, "Proxy URL not configured", nil).
				WithSuggestion("Run: promptforge config set proxy_url https://your-site.example")

	ErrUnknownProvider = NewAppError(TypeConfiguration, "Unknown model provider", nil).
				WithSuggestion("Supported providers: openrouter, gemini, proxy, mock")
)

// Validation errors
var (
	ErrEmptyPrompt = NewAppError(TypeValidation, "Please enter a prompt to enhance", nil)

	ErrEnhancementInProgress = NewAppError(TypeValidation, "An enhancement is already in progress", nil).
					WithSuggestion("Wait for it to finish or cancel it first")
)

// Provider errors
var (
	ErrProviderFailure = NewAppError(TypeProvider, "Failed to enhance prompt", nil).
				WithSuggestion("Try again or check your API key and model selection")
)

// Persistence errors
var (
	ErrPersistence = NewAppError(TypePersistence, "Local store operation failed", nil)
)
