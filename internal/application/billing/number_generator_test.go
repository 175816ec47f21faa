package billing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/domain"
)

// fakeSequenceSource simula la tabla de una serie: el máximo reservado,
// incluyendo documentos soft-deleted.
type fakeSequenceSource struct {
	max   int64
	calls int
	err   error
}

func (f *fakeSequenceSource) MaxSequence(_ context.Context, _ string) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.max, nil
}

func newGenerator() *billing.NumberGenerator {
	return billing.NewNumberGenerator(billing.NumberingOptions{
		PadWidth:    6,
		DateLayout:  "200601",
		MaxAttempts: 5,
	})
}

func TestSeriesPrefix(t *testing.T) {
	gen := newGenerator()
	date := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-202608", gen.SeriesPrefix("INV", date))
}

func TestNext_MaxMasUno(t *testing.T) {
	gen := newGenerator()
	src := &fakeSequenceSource{max: 41}

	seq, number, err := gen.Next(context.Background(), src, "INV-202608")
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
	assert.Equal(t, "INV-202608-000042", number)
}

func TestNext_SerieVaciaArrancaEnUno(t *testing.T) {
	gen := newGenerator()
	src := &fakeSequenceSource{max: 0}

	seq, number, err := gen.Next(context.Background(), src, "PAY-202608")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	assert.Equal(t, "PAY-202608-000001", number)
}

// Un documento soft-deleted sigue reservando su secuencia: si el máximo es 7
// (aunque el 7 esté eliminado), el siguiente es 8, nunca se recicla el 7.
func TestNext_SoftDeletedReservaSecuencia(t *testing.T) {
	gen := newGenerator()
	src := &fakeSequenceSource{max: 7}

	seq, _, err := gen.Next(context.Background(), src, "INV-202608")
	require.NoError(t, err)
	assert.Equal(t, int64(8), seq)
}

func TestNext_ErrorDeLectura(t *testing.T) {
	gen := newGenerator()
	src := &fakeSequenceSource{err: errors.New("conexión perdida")}

	_, _, err := gen.Next(context.Background(), src, "INV-202608")
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// WithRetry
// ──────────────────────────────────────────────────────────────────────────────

func TestWithRetry_ExitoAlPrimerIntento(t *testing.T) {
	gen := newGenerator()
	tries := 0
	err := gen.WithRetry(func(int) error {
		tries++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tries)
}

// Simula la carrera: dos colisiones de unicidad y luego éxito. Cada intento es
// una transacción nueva que relee el máximo, así que el tercero gana.
func TestWithRetry_ReintentaSoloAnteDuplicado(t *testing.T) {
	gen := newGenerator()
	tries := 0
	err := gen.WithRetry(func(int) error {
		tries++
		if tries < 3 {
			return fmt.Errorf("%w: número INV-202608-000042", domain.ErrDuplicate)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tries)
}

func TestWithRetry_ErrorNoDuplicadoCortaDeInmediato(t *testing.T) {
	gen := newGenerator()
	boom := errors.New("violación de foreign key")
	tries := 0
	err := gen.WithRetry(func(int) error {
		tries++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, tries, "los errores ajenos a la numeración no se reintentan")
}

// Contención extrema: todas las colisiones. Tras agotar los intentos el error
// es ErrNumberExhausted, nunca un loop infinito.
func TestWithRetry_AgotaIntentos(t *testing.T) {
	gen := newGenerator()
	tries := 0
	err := gen.WithRetry(func(int) error {
		tries++
		return domain.ErrDuplicate
	})
	assert.ErrorIs(t, err, domain.ErrNumberExhausted)
	assert.Equal(t, 5, tries)
}

func TestWithRetry_PasaElNumeroDeIntento(t *testing.T) {
	gen := newGenerator()
	var seen []int
	_ = gen.WithRetry(func(try int) error {
		seen = append(seen, try)
		return domain.ErrDuplicate
	})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}
