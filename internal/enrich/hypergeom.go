package enrich

import "math"

// HypergeomSF returns P(X >= k) for X drawn from a hypergeometric
// distribution: n draws without replacement from a population of size
// popSize containing successes success states.
func HypergeomSF(k, popSize, successes, n int) float64 {
	if popSize <= 0 || n <= 0 || successes <= 0 {
		if k <= 0 {
			return 1
		}
		return 0
	}
	lo := max(0, n-(popSize-successes))
	hi := min(n, successes)
	if k <= lo {
		return 1
	}
	if k > hi {
		return 0
	}

	total := logChoose(popSize, n)
	terms := make([]float64, 0, hi-k+1)
	for x := k; x <= hi; x++ {
		terms = append(terms, logChoose(successes, x)+logChoose(popSize-successes, n-x)-total)
	}
	p := math.Exp(logSumExp(terms))
	if p > 1 {
		return 1
	}
	return p
}

func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return lgamma(n+1) - lgamma(k+1) - lgamma(n-k+1)
}

func lgamma(x int) float64 {
	v, _ := math.Lgamma(float64(x))
	return v
}

func logSumExp(xs []float64) float64 {
	if len(xs) == 0 {
		return math.Inf(-1)
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	if math.IsInf(m, -1) {
		return m
	}
	var s float64
	for _, x := range xs {
		s += math.Exp(x - m)
	}
	return m + math.Log(s)
}
