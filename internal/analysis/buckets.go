package analysis

import "unicode/utf8"

// bucketIndex partitions unique phrases by character length into fixed-width
// buckets so the pairwise scan only examines candidates of roughly similar
// length. It is a pre-filter: the scanner still applies its own length-delta
// check before scoring.
type bucketIndex struct {
	width   int
	radius  int
	buckets map[int][]string
}

// newBucketIndex assigns each phrase to bucket floor(len/width). Bucket
// member order follows the order of the input slice, so candidate iteration
// is deterministic.
func newBucketIndex(phrases []string, width, radius int) *bucketIndex {
	bi := &bucketIndex{
		width:   width,
		radius:  radius,
		buckets: make(map[int][]string),
	}
	for _, p := range phrases {
		b := bi.bucket(p)
		bi.buckets[b] = append(bi.buckets[b], p)
	}
	return bi
}

func (bi *bucketIndex) bucket(phrase string) int {
	return utf8.RuneCountInString(phrase) / bi.width
}

// candidates returns the members of buckets [bucket(phrase)-radius,
// bucket(phrase)+radius], clamped at zero, in ascending bucket order.
func (bi *bucketIndex) candidates(phrase string) []string {
	center := bi.bucket(phrase)
	lo := center - bi.radius
	if lo < 0 {
		lo = 0
	}
	var out []string
	for b := lo; b <= center+bi.radius; b++ {
		out = append(out, bi.buckets[b]...)
	}
	return out
}
