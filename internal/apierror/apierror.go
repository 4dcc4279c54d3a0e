// Package apierror holds the JSON envelopes of every 4xx/5xx response.
// Messages are user-facing Spanish text; internal errors never reach them.
package apierror

// Codes let clients branch on the error kind without parsing Detail.
const (
	CodigoNoEncontrado = "NO_ENCONTRADO"
	CodigoConflicto    = "CONFLICTO"
	CodigoInvalido     = "INVALIDO"
	CodigoValidacion   = "VALIDACION"
	CodigoLimite       = "LIMITE_EXCEDIDO"
	CodigoInterno      = "INTERNO"
)

// APIError is the canonical error envelope.
type APIError struct {
	Codigo string `json:"codigo,omitempty"`
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func NewConCodigo(codigo, msg string) *APIError {
	return &APIError{Codigo: codigo, Detail: msg}
}

// ValidationError carries one message per offending request field.
type ValidationError struct {
	Codigo string            `json:"codigo"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Codigo: CodigoValidacion, Detail: "Error de validacion", Fields: fields}
}
