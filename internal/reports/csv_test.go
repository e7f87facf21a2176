package reports

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderSummaryCSV(t *testing.T) {
	data, err := OrderSummaryCSV([]OrderSummaryRow{
		{Status: "pendiente", Count: 3, Total: 1234.5},
		{Status: "entregado", Count: 12, Total: 98765.4},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "estado;pedidos;total", lines[0])
	// Spanish digit grouping: thousands dot, decimal comma.
	assert.Equal(t, "pendiente;3;1.234,50", lines[1])
	assert.Equal(t, "entregado;12;98.765,40", lines[2])
}

func TestDispatchSummaryCSV(t *testing.T) {
	data, err := DispatchSummaryCSV([]DispatchSummaryRow{
		{Status: "pendiente", Count: 2},
		{Status: "en_ruta", Count: 5},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "estado;despachos", lines[0])
	assert.Equal(t, "en_ruta;5", lines[2])
}

func TestTopProductsCSVQuotesNames(t *testing.T) {
	data, err := TopProductsCSV([]TopProductRow{
		{ProductID: 7, ProductName: `Camisa "Premium"; lino`, Units: 40, Revenue: 1800},
	})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "producto_id;producto;unidades;ingresos")
	// Names containing the separator come out quoted.
	assert.Contains(t, out, `"Camisa ""Premium""; lino"`)
}
