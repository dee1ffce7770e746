package diarize

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DefaultMaxSpeakers caps the number of speaker clusters. It is a
// heuristic bound, not a speaker-count estimate.
const DefaultMaxSpeakers = 3

// Cluster groups window embeddings into at most maxSpeakers speakers using
// agglomerative clustering with cosine distance and average linkage. It
// returns a cluster id per window, in window order. Fewer than two windows
// short-circuit to a single cluster.
func Cluster(embeddings [][]float64, maxSpeakers int) []int {
	n := len(embeddings)
	if n == 0 {
		return nil
	}
	if maxSpeakers < 1 {
		maxSpeakers = DefaultMaxSpeakers
	}
	target := maxSpeakers
	if n < target {
		target = n
	}
	if n < 2 {
		return make([]int, n)
	}

	// Pairwise cosine distances between windows.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			d := cosineDistance(embeddings[i], embeddings[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	// Each window starts as its own cluster; merge the pair with the
	// smallest average pairwise distance until target clusters remain.
	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > target {
		bestA, bestB := 0, 1
		best := averageLinkage(clusters[0], clusters[1], dist)
		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				if d := averageLinkage(clusters[a], clusters[b], dist); d < best {
					best, bestA, bestB = d, a, b
				}
			}
		}
		clusters[bestA] = append(clusters[bestA], clusters[bestB]...)
		clusters = append(clusters[:bestB], clusters[bestB+1:]...)
	}

	assignments := make([]int, n)
	for id, members := range clusters {
		for _, w := range members {
			assignments[w] = id
		}
	}
	return assignments
}

// Labels maps cluster assignments to Speaker_N labels, numbering distinct
// clusters 1-based in order of first appearance. Labels are meaningful only
// within one meeting.
func Labels(assignments []int) []string {
	labels := make([]string, len(assignments))
	ordinal := make(map[int]int)
	for i, id := range assignments {
		n, ok := ordinal[id]
		if !ok {
			n = len(ordinal) + 1
			ordinal[id] = n
		}
		labels[i] = fmt.Sprintf("Speaker_%d", n)
	}
	return labels
}

func averageLinkage(a, b []int, dist [][]float64) float64 {
	var sum float64
	for _, i := range a {
		for _, j := range b {
			sum += dist[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

func cosineDistance(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - floats.Dot(a, b)/(na*nb)
}
