package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadListingDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("b.txt", "  2015 Honda Civic &amp; more  ")
	write("a.json", `{"description":"2017 Jeep Wrangler","vin":"1C4BJWDG5HL000002","price_usd":24000}`)
	write("notes.md", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	listings, names, err := readListingDir(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.txt"}, names)
	require.Len(t, listings, 2)
	assert.Equal(t, "1C4BJWDG5HL000002", listings[0].VIN)
	assert.Equal(t, 24000.0, listings[0].PriceUSD)
	assert.Equal(t, "2015 Honda Civic & more", listings[1].Description)
}

func TestReadListingDir_BadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.json"), []byte("{"), 0o644))

	_, _, err := readListingDir(dir)
	assert.Error(t, err)

	_, _, err = readListingDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
