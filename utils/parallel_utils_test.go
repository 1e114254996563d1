package utils

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 10000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Inverse lookup, the bucket that holds an index
		for _, np := range []int{1, 3, 5, 8} {
			for maxIndex := np; maxIndex < 300; maxIndex++ {
				pm := NewPartitionMap(np, maxIndex)
				for k := 0; k < maxIndex; k++ {
					bn, min, max := pm.GetBucket(k)
					mmin, mmax := pm.GetBucketRange(bn)
					assert.True(t, k >= min && k < max && min == mmin && max == mmax)
				}
				bn, _, _ := pm.GetBucket(maxIndex)
				assert.Equal(t, -1, bn)
				bn, _, _ = pm.GetBucket(-1)
				assert.Equal(t, -1, bn)
			}
		}
	}
	{ // Closed ranges tile the offset extent without gaps
		pm := NewPartitionMap(3, 10)
		assert.Equal(t, NewRng(5, 8), pm.GetBucketRng(0, 5))
		assert.Equal(t, NewRng(9, 11), pm.GetBucketRng(1, 5))
		assert.Equal(t, NewRng(12, 14), pm.GetBucketRng(2, 5))
	}
}

func TestMailBox(t *testing.T) {
	var (
		NP = 4
		mb = NewMailBox[[]float64](NP, 2, 1)
		wg sync.WaitGroup
	)
	// Each participant sends its id to both ring neighbours, then receives
	for n := 0; n < NP; n++ {
		wg.Add(1)
		go func(my int) {
			defer wg.Done()
			left, right := (my+NP-1)%NP, (my+1)%NP
			mb.PostMessage(my, right, 0, []float64{float64(my)})
			mb.PostMessage(my, left, 1, []float64{float64(my)})
			fromLeft := mb.ReceiveMessage(my, left, 0)
			fromRight := mb.ReceiveMessage(my, right, 1)
			assert.Equal(t, []float64{float64(left)}, fromLeft)
			assert.Equal(t, []float64{float64(right)}, fromRight)
		}(n)
	}
	wg.Wait()
	assert.Panics(t, func() { mb.PostMessage(0, NP, 0, nil) })
	assert.Panics(t, func() { mb.ReceiveMessage(0, 1, 2) })
}
