package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Numbering.PadWidth)
	assert.Equal(t, "200601", cfg.Numbering.DateLayout)
	assert.Equal(t, "INV", cfg.Numbering.InvoiceSeries)
	assert.Equal(t, "CHN", cfg.Numbering.ChallanSeries)
	assert.Equal(t, "PAY", cfg.Numbering.PaymentSeries)
	assert.Equal(t, "RET", cfg.Numbering.ReturnSeries)
	assert.Equal(t, 5, cfg.Numbering.MaxGenAttempts)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("NUMBER_PAD_WIDTH", "4")
	t.Setenv("NUMBER_SERIES_INVOICE", "FAC")
	t.Setenv("NUMBER_MAX_ATTEMPTS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Numbering.PadWidth)
	assert.Equal(t, "FAC", cfg.Numbering.InvoiceSeries)
	assert.Equal(t, 3, cfg.Numbering.MaxGenAttempts)
}

func TestDBConfig_DSNEscapaCaracteresEspeciales(t *testing.T) {
	db := DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "billing",
		Password: "p@ss w#rd",
		DBName:   "darbar_billing",
		SSLMode:  "disable",
	}
	dsn := db.DSN()
	assert.Contains(t, dsn, "p%40ss%20w%23rd")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss w#rd")
}

func TestDBConfig_DatabaseURLTienePrioridad(t *testing.T) {
	db := DBConfig{
		DatabaseURL: "postgres://u:p@db:5432/x?sslmode=require",
		Host:        "ignorado",
	}
	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=require", db.ConnectionString())
}

func TestHTTPConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", HTTPConfig{Host: "0.0.0.0", Port: 8080}.Addr())
}
