package dataset

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrdash/internal/errors"
)

const testHeader = "Année;Nom INSEE région;Code INSEE région;" +
	"Production hydraulique renouvelable (GWh);Production éolienne renouvelable (GWh);" +
	"Production solaire renouvelable (GWh);Production bioénergies renouvelable (GWh);" +
	"Production gaz renouvelable (GWh);Production totale renouvelable (GWh);" +
	"Géo-shape région;Géo-point région"

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Run("parses semicolon delimited file", func(t *testing.T) {
		content := testHeader + "\n" +
			`2019;Bretagne;53;13,4;2883.2;372.2;566.8;10.7;3846.3;"{""type"": ""Polygon""}";48.18, -2.84` + "\n"
		path := writeTempCSV(t, content)

		table, err := LoadCSV(path, slog.Default())
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "2019", table.Rows[0][table.Schema.Year])
		assert.Equal(t, "Bretagne", table.Rows[0][table.Schema.RegionName])
		assert.Equal(t, "53", table.Rows[0][table.Schema.RegionCode])
		assert.Len(t, table.Schema.Production, 6)
	})

	t.Run("strips UTF-8 BOM before the header", func(t *testing.T) {
		content := "\xEF\xBB\xBF" + testHeader + "\n" +
			"2019;Bretagne;53;1;2;3;4;5;15;;\n"
		path := writeTempCSV(t, content)

		table, err := LoadCSV(path, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Schema.Year)
	})

	t.Run("accepts unaccented year header", func(t *testing.T) {
		content := strings.Replace(testHeader, "Année", "Annee", 1) + "\n" +
			"2019;Bretagne;53;1;2;3;4;5;15;;\n"
		path := writeTempCSV(t, content)

		table, err := LoadCSV(path, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Schema.Year)
	})

	t.Run("missing file returns load error", func(t *testing.T) {
		_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"), nil)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeLoad, appErr.Type)
	})

	t.Run("invalid UTF-8 returns format error", func(t *testing.T) {
		path := writeTempCSV(t, testHeader+"\n2019;Bretagne\xff\xfe;53;1;2;3;4;5;15;;\n")

		_, err := LoadCSV(path, nil)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeFormat, appErr.Type)
	})

	t.Run("unknown production column returns schema error", func(t *testing.T) {
		header := strings.Replace(testHeader,
			"Production gaz renouvelable (GWh)",
			"Production marémotrice renouvelable (GWh)", 1)
		path := writeTempCSV(t, header+"\n")

		_, err := LoadCSV(path, nil)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeSchema, appErr.Type)
		assert.Contains(t, appErr.Message, "marémotrice")
	})

	t.Run("missing required column returns schema error", func(t *testing.T) {
		header := strings.Replace(testHeader, "Code INSEE région", "Code region", 1)
		path := writeTempCSV(t, header+"\n")

		_, err := LoadCSV(path, nil)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeSchema, appErr.Type)
		assert.Contains(t, appErr.Message, "Code INSEE région")
	})

	t.Run("no production columns returns schema error", func(t *testing.T) {
		header := "Année;Nom INSEE région;Code INSEE région;Géo-shape région;Géo-point région"
		path := writeTempCSV(t, header+"\n")

		_, err := LoadCSV(path, nil)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeSchema, appErr.Type)
	})
}
