package utils

import "fmt"

/*
MailBox carries point to point messages between NP participants. Every
(sender, receiver, tag) triple owns a buffered channel, so posting never waits
on the receiver unless Depth messages are already queued.
*/
type MailBox[T any] struct {
	NP, NTags, Depth int
	MessageChans     [][][]chan T // [target][source][tag]
}

func NewMailBox[T any](NP, NTags, Depth int) *MailBox[T] {
	mb := &MailBox[T]{
		NP:           NP,
		NTags:        NTags,
		Depth:        Depth,
		MessageChans: make([][][]chan T, NP),
	}
	for tgt := 0; tgt < NP; tgt++ {
		mb.MessageChans[tgt] = make([][]chan T, NP)
		for src := 0; src < NP; src++ {
			mb.MessageChans[tgt][src] = make([]chan T, NTags)
			for tag := 0; tag < NTags; tag++ {
				mb.MessageChans[tgt][src][tag] = make(chan T, Depth)
			}
		}
	}
	return mb
}

func (mb *MailBox[T]) check(myThread, otherThread, tag int) {
	if otherThread < 0 || otherThread > mb.NP-1 || myThread < 0 || myThread > mb.NP-1 {
		panic(fmt.Sprintf("thread pair (%d, %d) out of bounds", myThread, otherThread))
	}
	if tag < 0 || tag > mb.NTags-1 {
		panic(fmt.Sprintf("message tag %d out of bounds", tag))
	}
}

func (mb *MailBox[T]) PostMessage(myThread, targetThread, tag int, msg T) {
	mb.check(myThread, targetThread, tag)
	mb.MessageChans[targetThread][myThread][tag] <- msg
}

// ReceiveMessage blocks until sourceThread has posted a message with this tag
func (mb *MailBox[T]) ReceiveMessage(myThread, sourceThread, tag int) T {
	mb.check(myThread, sourceThread, tag)
	return <-mb.MessageChans[myThread][sourceThread][tag]
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// GetBucket finds the partition holding index k, bucketNum is -1 when k is
// outside [0, MaxIndex)
func (pm *PartitionMap) GetBucket(k int) (bucketNum, min, max int) {
	if k < 0 || k >= pm.MaxIndex {
		return -1, 0, 0
	}
	// partitions differ in size by at most one, so the guess is off by at most one
	bucketNum = pm.ParallelDegree * k / pm.MaxIndex
	for k < pm.Partitions[bucketNum][0] {
		bucketNum--
	}
	for k >= pm.Partitions[bucketNum][1] {
		bucketNum++
	}
	min, max = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

// GetBucketRng is the closed index range of a bucket, shifted by offset
func (pm *PartitionMap) GetBucketRng(bn, offset int) Rng {
	k1, k2 := pm.GetBucketRange(bn)
	return NewRng(k1+offset, k2-1+offset)
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}
