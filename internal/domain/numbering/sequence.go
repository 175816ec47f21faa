// Package numbering implementa el formato de números de documento legibles:
// {PREFIX}-{SEQ} con SEQ entero con padding de ceros (ej. INV-202608-000042).
// El ancho del padding es configuración, no parte del algoritmo.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/darbarboots/billing-api/internal/domain"
)

// DefaultPadWidth ancho de padding por defecto para la secuencia.
const DefaultPadWidth = 6

// Format define cómo se renderizan y parsean los números de una serie.
type Format struct {
	PadWidth int
}

// NewFormat construye el formato; width <= 0 usa DefaultPadWidth.
func NewFormat(width int) Format {
	if width <= 0 {
		width = DefaultPadWidth
	}
	return Format{PadWidth: width}
}

// Render produce el número completo para un prefijo y secuencia.
// La secuencia con padding fijo garantiza que el orden lexicográfico de los
// números dentro de una serie coincide con el orden numérico.
func (f Format) Render(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, f.PadWidth, seq)
}

// Parse separa un número en su prefijo de serie y valor de secuencia.
// El prefijo puede contener guiones; la secuencia es siempre el último tramo.
func (f Format) Parse(number string) (prefix string, seq int64, err error) {
	idx := strings.LastIndex(number, "-")
	if idx <= 0 || idx == len(number)-1 {
		return "", 0, fmt.Errorf("número %q: %w", number, domain.ErrInvalidInput)
	}
	seq, err = strconv.ParseInt(number[idx+1:], 10, 64)
	if err != nil || seq <= 0 {
		return "", 0, fmt.Errorf("número %q: secuencia inválida: %w", number, domain.ErrInvalidInput)
	}
	return number[:idx], seq, nil
}

// SeriesPrefix arma el prefijo de serie: base + componente de fecha.
// Con layout vacío la serie no rota por fecha (prefijo = base).
func SeriesPrefix(base string, date time.Time, layout string) string {
	if layout == "" {
		return base
	}
	return base + "-" + date.Format(layout)
}
