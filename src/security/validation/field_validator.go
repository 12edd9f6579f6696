// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxProductoLength = 255
	MaxCuentaLength   = 50
	MaxSaltoFilas     = 50
)

var cuentaContableRegex = regexp.MustCompile(`^[0-9]{2,10}$`)

// ValidateStringNotEmpty checks that a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s no puede estar vacío", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks a string's rune count against a maximum.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s supera el largo máximo de %d caracteres", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidarProducto validates a dictionary product code.
func ValidarProducto(producto string) error {
	if err := ValidateStringNotEmpty(producto, "producto"); err != nil {
		return err
	}
	return ValidateStringMaxLength(producto, MaxProductoLength, "producto")
}

// ValidarCuentaContable validates a Concar account code: numeric, the
// lengths seen in the chart of accounts.
func ValidarCuentaContable(cuenta string) error {
	if !cuentaContableRegex.MatchString(strings.TrimSpace(cuenta)) {
		return fmt.Errorf("%w: cuenta contable '%s' debe ser numérica (2 a 10 dígitos)", ErrValidationFailed, cuenta)
	}
	return nil
}

// ValidarSalto validates a combo skip count.
func ValidarSalto(salto int) error {
	if salto < 1 || salto > MaxSaltoFilas {
		return fmt.Errorf("%w: salto %d fuera de rango [1, %d]", ErrValidationFailed, salto, MaxSaltoFilas)
	}
	return nil
}
