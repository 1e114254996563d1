package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	{
		studies, err := readCSV(strings.NewReader(`Title,NumPTS,Iters,Courant,RMS,MAX
sine,32,1,0.5,0.2,0.3
sine,64,1,0.5,0.1,0.15
sine,32,2,0.5,0.04,0.05
sine,64,2,0.5,0.01,0.0125
`))
		require.NoError(t, err)
		require.Len(t, studies, 2)
		dc, mp := studies["sine1"], studies["sine2"]
		assert.Equal(t, []int{32, 64}, dc.numPTS)
		assert.Equal(t, .5, dc.courant)
		assert.InDelta(t, 1, dc.order(1), 1e-12)
		assert.InDelta(t, 2, mp.order(1), 1e-12)
		assert.Equal(t, []float64{.05, .0125}, mp.max)
	}
	{
		_, err := readCSV(strings.NewReader("Title,NumPTS,Iters,Courant,RMS,MAX\nsine,32,x,0.5,0.2,0.3\n"))
		assert.Error(t, err)
		_, err = readCSV(strings.NewReader("Title,NumPTS\nsine,32\n"))
		assert.Error(t, err)
	}
}
