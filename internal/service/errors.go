package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors. Handlers map them to HTTP status codes with errors.Is;
// the wrapped message is safe to show to clients.
var (
	ErrNoEncontrado = errors.New("no encontrado")
	ErrConflicto    = errors.New("conflicto")
	ErrInvalido     = errors.New("solicitud invalida")
)

// noEncontrado translates gorm.ErrRecordNotFound into ErrNoEncontrado with a
// user-facing message; any other error is returned untouched.
func noEncontrado(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", msg, ErrNoEncontrado)
	}
	return err
}

func conflicto(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrConflicto)
}

func invalido(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalido)
}
