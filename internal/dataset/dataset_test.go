package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const sample = `# two groups
0 0
0,1

10;0
10	1
`

func TestRead_MixedDelimiters(t *testing.T) {
	m, err := Read(strings.NewReader(sample), Options{})
	require.NoError(t, err)

	r, c := m.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 2, c)
	require.True(t, mat.Equal(mat.NewDense(4, 2, []float64{0, 0, 0, 1, 10, 0, 10, 1}), m))
}

func TestRead_HeaderAndDelimiter(t *testing.T) {
	in := "x|y\n1.5|-2\n 3 | 4e2 \n"
	m, err := Read(strings.NewReader(in), Options{Delimiter: '|', Header: true})
	require.NoError(t, err)
	require.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1.5, -2, 3, 400}), m))
}

func TestRead_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		opts Options
		want error
		line string
	}{
		{"empty", "", Options{}, ErrEmpty, ""},
		{"comments only", "# a\n\n# b\n", Options{}, ErrEmpty, ""},
		{"header only", "a,b\n", Options{Header: true}, ErrEmpty, ""},
		{"ragged", "1 2\n3 4 5\n", Options{}, ErrMalformed, "line 2"},
		{"not a number", "1 2\n# skip\n3 x\n", Options{}, ErrMalformed, "line 3"},
		{"header not skipped", "a,b\n1,2\n", Options{}, ErrMalformed, "line 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Read(strings.NewReader(tc.in), tc.opts)
			require.ErrorIs(t, err, tc.want)
			require.Nil(t, m)
			require.Contains(t, err.Error(), tc.line)
		})
	}
}

func TestLoad_Compressed(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "points.txt")
	require.NoError(t, os.WriteFile(plain, []byte(sample), 0o644))

	gz := filepath.Join(dir, "points.txt.gz")
	f, err := os.Create(gz)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	zst := filepath.Join(dir, "points.txt.zst")
	f, err = os.Create(zst)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	want := mat.NewDense(4, 2, []float64{0, 0, 0, 1, 10, 0, 10, 1})
	for _, p := range []string{plain, gz, zst} {
		m, err := Load(p, Options{})
		require.NoError(t, err, p)
		require.True(t, mat.Equal(want, m), p)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.txt"), Options{})
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.gz")
	require.NoError(t, os.WriteFile(bad, []byte("not gzip"), 0o644))
	_, err = Load(bad, Options{})
	require.Error(t, err)

	ragged := filepath.Join(dir, "ragged.csv")
	require.NoError(t, os.WriteFile(ragged, []byte("1,2\n3\n"), 0o644))
	_, err = Load(ragged, Options{})
	require.ErrorIs(t, err, ErrMalformed)
	require.Contains(t, err.Error(), ragged)
}
