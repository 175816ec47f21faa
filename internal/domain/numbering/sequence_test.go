package numbering_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darbarboots/billing-api/internal/domain/numbering"
)

func TestRender_PaddingFijo(t *testing.T) {
	f := numbering.NewFormat(6)

	assert.Equal(t, "INV-202608-000001", f.Render("INV-202608", 1))
	assert.Equal(t, "INV-202608-000042", f.Render("INV-202608", 42))
	assert.Equal(t, "PAY-202608-999999", f.Render("PAY-202608", 999999))
}

func TestRender_SecuenciaMasAnchaQueElPadding(t *testing.T) {
	// La secuencia nunca se trunca: al superar el ancho, el número se alarga.
	f := numbering.NewFormat(3)
	assert.Equal(t, "CHN-1000", f.Render("CHN", 1000))
}

func TestRender_OrdenLexicograficoCoincideConNumerico(t *testing.T) {
	f := numbering.NewFormat(6)
	a := f.Render("INV-202608", 9)
	b := f.Render("INV-202608", 10)
	assert.Less(t, a, b, "con padding fijo el orden de strings sigue al de secuencias")
}

func TestNewFormat_AnchoInvalidoUsaDefault(t *testing.T) {
	f := numbering.NewFormat(0)
	assert.Equal(t, numbering.DefaultPadWidth, f.PadWidth)
}

func TestParse_RoundTrip(t *testing.T) {
	f := numbering.NewFormat(6)
	number := f.Render("INV-202608", 137)

	prefix, seq, err := f.Parse(number)
	require.NoError(t, err)
	assert.Equal(t, "INV-202608", prefix, "el prefijo conserva sus guiones internos")
	assert.Equal(t, int64(137), seq)
}

func TestParse_NumeroInvalido(t *testing.T) {
	f := numbering.NewFormat(6)

	for _, bad := range []string{"", "INV", "INV-", "-000001", "INV-00x001", "INV-000000"} {
		_, _, err := f.Parse(bad)
		assert.Error(t, err, "debe rechazar %q", bad)
	}
}

func TestSeriesPrefix_RotacionMensual(t *testing.T) {
	date := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "INV-202608", numbering.SeriesPrefix("INV", date, "200601"))
	assert.Equal(t, "RTL-20260815", numbering.SeriesPrefix("RTL", date, "20060102"))
	assert.Equal(t, "INV", numbering.SeriesPrefix("INV", date, ""), "layout vacío = serie fija")
}

func TestSeriesPrefix_CambioDeMesAbreNuevaSerie(t *testing.T) {
	agosto := time.Date(2026, time.August, 31, 23, 59, 0, 0, time.UTC)
	septiembre := time.Date(2026, time.September, 1, 0, 1, 0, 0, time.UTC)

	assert.NotEqual(t,
		numbering.SeriesPrefix("INV", agosto, "200601"),
		numbering.SeriesPrefix("INV", septiembre, "200601"),
		"cada mes arranca su propia secuencia")
}
