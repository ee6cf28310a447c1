package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popflix/pkg/models"
)

const sample = `index,id,title,genres,keywords,cast,director,overview,budget
0,19995,Avatar,Action Adventure,culture clash,Sam Worthington,James Cameron,"In the 22nd century, a paraplegic Marine...",237000000
1,285,Pirates of the Caribbean: At World's End,Adventure Fantasy,ocean,Johnny Depp,Gore Verbinski,Captain Barbossa returns,300000000
2,99,Short
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "19995", rows[0].ID)
	assert.Equal(t, "Avatar", rows[0].Title)
	assert.Equal(t, "In the 22nd century, a paraplegic Marine...", rows[0].Overview)
	assert.Equal(t, "James Cameron", rows[0].Director)
	assert.Equal(t, "Pirates of the Caribbean: At World's End", rows[1].Title)

	assert.Equal(t, "Short", rows[2].Title)
	assert.Empty(t, rows[2].Overview)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id,title,genres\n1,A,Drama\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeff"+sample), 0o600))

	rows, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteCSVReadsBack(t *testing.T) {
	in := []models.RawRow{
		{ID: "1", Title: "Heat", Overview: "a \"cop\", a thief", Genres: "Crime", Keywords: "heist", Cast: "AlPacino", Director: "MichaelMann"},
		{ID: "2", Title: "Up"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), "id,title,genres,keywords,cast,director,overview\n"))

	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
