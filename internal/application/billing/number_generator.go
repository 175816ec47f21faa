package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/numbering"
)

// NumberingOptions parámetros de numeración (vienen de configuración).
type NumberingOptions struct {
	PadWidth    int    // ancho del padding de la secuencia
	DateLayout  string // componente de fecha del prefijo; vacío = serie fija
	MaxAttempts int    // reintentos ante colisión antes de ErrNumberExhausted
}

// DefaultMaxAttempts reintentos por defecto ante colisiones de número.
const DefaultMaxAttempts = 5

// NumberGenerator emite números de documento únicos y crecientes por serie.
//
// No guarda ningún contador en memoria: el máximo vigente se lee de la base en
// cada intento (dentro de la transacción del intento) y el constraint de
// unicidad del storage es el árbitro real de la exclusividad. La lectura
// previa es solo una optimización.
type NumberGenerator struct {
	format      numbering.Format
	dateLayout  string
	maxAttempts int
}

// NewNumberGenerator construye el generador.
func NewNumberGenerator(opts NumberingOptions) *NumberGenerator {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	return &NumberGenerator{
		format:      numbering.NewFormat(opts.PadWidth),
		dateLayout:  opts.DateLayout,
		maxAttempts: attempts,
	}
}

// SeriesPrefix arma el prefijo de serie para la fecha dada (ej. "INV-202608").
func (g *NumberGenerator) SeriesPrefix(base string, date time.Time) string {
	return numbering.SeriesPrefix(base, date, g.dateLayout)
}

// Next calcula la siguiente secuencia y su número para el prefijo. Debe
// invocarse con un SequenceSource atado a la transacción del intento: el
// máximo incluye documentos soft-deleted, que siguen reservando su valor.
func (g *NumberGenerator) Next(ctx context.Context, src SequenceSource, prefix string) (int64, string, error) {
	max, err := src.MaxSequence(ctx, prefix)
	if err != nil {
		return 0, "", fmt.Errorf("leer secuencia máxima de %s: %w", prefix, err)
	}
	seq := max + 1
	return seq, g.format.Render(prefix, seq), nil
}

// WithRetry ejecuta attempt hasta maxAttempts veces. Cada attempt debe ser una
// unidad atómica completa (leer máximo, calcular, intentar crear) y retornar
// domain.ErrDuplicate si la base rechazó el número por unicidad: otro request
// ganó la carrera y el siguiente intento releerá el máximo ya incrementado.
// Cualquier otro error corta de inmediato. Agotados los intentos retorna
// domain.ErrNumberExhausted.
func (g *NumberGenerator) WithRetry(attempt func(try int) error) error {
	var err error
	for try := 1; try <= g.maxAttempts; try++ {
		err = attempt(try)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
	}
	return fmt.Errorf("%w tras %d intentos: %v", domain.ErrNumberExhausted, g.maxAttempts, err)
}
