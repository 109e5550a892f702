package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odpulse/pkg/contracts/domain"
)

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	err := w.WriteSimpleCSV("out.csv",
		[]string{"state", "deaths"},
		[][]string{{"Ohio", "12"}, {"Texas", "30"}})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)

	// UTF-8 BOM then header then rows.
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
	assert.Equal(t, "state,deaths\nOhio,12\nTexas,30\n", string(data[3:]))
}

func TestCSVWriter_WriteRecords(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	records := []domain.OverdoseRecord{
		{State: "Ohio", Year: 2020, Month: "January", DrugType: "Opioids", Deaths: 12.5},
	}
	require.NoError(t, w.WriteRecords("clean.csv", records))

	data, err := os.ReadFile(filepath.Join(dir, "clean.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "state,year,month,drug_type,deaths")
	assert.Contains(t, string(data), "Ohio,2020,January,Opioids,12.5")
}

func TestCSVWriter_AbsolutePathBypassesBaseDir(t *testing.T) {
	base := t.TempDir()
	other := t.TempDir()
	w := NewCSVWriter(base)

	target := filepath.Join(other, "abs.csv")
	require.NoError(t, w.WriteSimpleCSV(target, []string{"a"}, [][]string{{"1"}}))

	_, err := os.Stat(target)
	assert.NoError(t, err)
}

func TestStreamWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	sw, err := w.CreateStreamWriter("stream.csv", []string{"state", "deaths"})
	require.NoError(t, err)

	require.NoError(t, sw.WriteRecord([]string{"Utah", "5"}))
	require.NoError(t, sw.WriteRecord([]string{"Ohio", "7"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(filepath.Join(dir, "stream.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Utah,5\nOhio,7\n")
}
