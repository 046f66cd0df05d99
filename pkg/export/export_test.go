package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Table{
		Columns: []string{"Period", "Substitute"},
		Rows: [][]string{
			{"1", "Teacher Three"},
			{"3"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Period,Substitute\n1,Teacher Three\n3,\n", string(payload))
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Table{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()

	payload, err := exporter.Render(Table{
		Title:   "Substitutions 2024-03-04",
		Columns: []string{"Period", "Substitute"},
		Rows:    [][]string{{"1", "Teacher Three"}},
	})
	require.NoError(t, err)
	assert.True(t, len(payload) > 0)
	assert.Equal(t, "%PDF", string(payload[:4]))
}
