package series

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

func TestReadColumnSingleColumn(t *testing.T) {
	s, err := ReadColumn(strings.NewReader("1.5\n-2\n\n# comment\n3e1\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, Series{1.5, -2, 30}, s)
}

func TestReadColumnSkipsHeader(t *testing.T) {
	input := "time,value\n0,1.0\n1,2.0\n2,0.5\n"
	s, err := ReadColumn(strings.NewReader(input), 1)
	require.NoError(t, err)
	assert.Equal(t, Series{1, 2, 0.5}, s)
}

func TestReadColumnMixedSeparators(t *testing.T) {
	s, err := ReadColumn(strings.NewReader("1 2\t3\n4;5,6\n"), 2)
	require.NoError(t, err)
	assert.Equal(t, Series{3, 6}, s)
}

func TestReadColumnErrors(t *testing.T) {
	_, err := ReadColumn(strings.NewReader("1\n2\n"), 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = ReadColumn(strings.NewReader("1\nabc\n"), 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = ReadColumn(strings.NewReader("1\n"), -1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
}

func TestWindows(t *testing.T) {
	s := Series{1, 2, 3, 4, 5}
	assert.Equal(t, 3, s.Windows(3))
	assert.Equal(t, 1, s.Windows(5))
	assert.Equal(t, 0, s.Windows(6))
	assert.Equal(t, 0, s.Windows(0))
}
