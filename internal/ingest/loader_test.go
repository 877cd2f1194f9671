package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvt-resolver/internal/domain"
)

func TestReadCSV(t *testing.T) {
	in := `completion_id,test_date,pressure,oil_formation_volume_factor,solution_gas_oil_ratio
C1,2023-11-20,1000,1.10,
C1,2023-11-20,2000,abc,250.5
C2, 2024-01-05 ,1500,NaN,inf
`
	samples, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, "C1", samples[0].CompletionID)
	assert.True(t, domain.Date(2023, 11, 20).Equal(samples[0].TestDate))
	assert.Equal(t, 1000.0, samples[0].Pressure)
	assert.InDelta(t, 1.10, *samples[0].Value(domain.OilFVF), 1e-12)
	assert.Nil(t, samples[0].Value(domain.SolutionGOR), "blank cell is absent")

	assert.Nil(t, samples[1].Value(domain.OilFVF), "non-numeric cell is absent")
	assert.InDelta(t, 250.5, *samples[1].Value(domain.SolutionGOR), 1e-12)

	assert.True(t, domain.Date(2024, 1, 5).Equal(samples[2].TestDate))
	assert.Nil(t, samples[2].Value(domain.OilFVF), "NaN is absent")
	assert.Nil(t, samples[2].Value(domain.SolutionGOR), "Inf is absent")
	assert.Nil(t, samples[2].Value(domain.ViscosityGas), "missing column is absent")
}

func TestReadCSV_ColumnOrderAndCase(t *testing.T) {
	in := "Pressure,VISCOSITY_OIL,Completion_ID,Test_Date\n3000,0.8,W-7,2022-06-30\n"

	samples, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "W-7", samples[0].CompletionID)
	assert.Equal(t, 3000.0, samples[0].Pressure)
	assert.InDelta(t, 0.8, *samples[0].Value(domain.ViscosityOil), 1e-12)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"missing key column", "completion_id,pressure\nC1,1000\n", "test_date"},
		{"duplicate property column", "completion_id,test_date,pressure,oil_formation_volume_factor,OIL_FORMATION_VOLUME_FACTOR\nC1,2024-01-01,1,1.1,1.2\n", "duplicate column"},
		{"duplicate key column", "completion_id,test_date,pressure,pressure\nC1,2024-01-01,1000,2000\n", "duplicate column"},
		{"unknown column", "completion_id,test_date,pressure,temperature\nC1,2024-01-01,1,2\n", "temperature"},
		{"bad date", "completion_id,test_date,pressure\nC1,01/02/2024,1000\n", "line 2"},
		{"bad pressure", "completion_id,test_date,pressure\nC1,2024-01-01,high\n", "pressure"},
		{"infinite pressure", "completion_id,test_date,pressure\nC1,2024-01-01,+Inf\n", "pressure"},
		{"empty id", "completion_id,test_date,pressure\n ,2024-01-01,1000\n", "completion_id"},
		{"ragged row", "completion_id,test_date,pressure\nC1,2024-01-01\n", "csv row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadCSV_Empty(t *testing.T) {
	samples, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestReadYAML(t *testing.T) {
	in := `
samples:
  - completion_id: C1
    test_date: 2023-11-20
    pressure: 1000
    oil_formation_volume_factor: 1.1
    gas_formation_volume_factor: null
  - completion_id: C1
    test_date: "2023-11-20"
    pressure: 2000.5
    viscosity_water: .nan
    solution_gas_oil_ratio: "n/a"
`
	samples, err := ReadYAML(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.True(t, domain.Date(2023, 11, 20).Equal(samples[0].TestDate))
	assert.Equal(t, 1000.0, samples[0].Pressure)
	assert.InDelta(t, 1.1, *samples[0].Value(domain.OilFVF), 1e-12)
	assert.Nil(t, samples[0].Value(domain.GasFVF))

	assert.Equal(t, 2000.5, samples[1].Pressure)
	assert.Nil(t, samples[1].Value(domain.ViscosityWater))
	assert.Nil(t, samples[1].Value(domain.SolutionGOR))
}

func TestReadYAML_Errors(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("samples:\n  - completion_id: C1\n    pressure: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml sample 0")

	_, err = ReadYAML(strings.NewReader("samples:\n  - completion_id: C1\n    test_date: 2024-01-01\n    pressure: 1\n    color: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "samples.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("completion_id,test_date,pressure\nC1,2024-01-01,1000\n"), 0644))
	samples, err := LoadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, samples, 1)

	ymlPath := filepath.Join(dir, "samples.yml")
	require.NoError(t, os.WriteFile(ymlPath, []byte("samples:\n  - {completion_id: C1, test_date: 2024-01-01, pressure: 1}\n"), 0644))
	samples, err = LoadFile(ymlPath)
	require.NoError(t, err)
	assert.Len(t, samples, 1)

	txtPath := filepath.Join(dir, "samples.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0644))
	_, err = LoadFile(txtPath)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
