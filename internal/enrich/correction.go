package enrich

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownMethod is returned for a correction method name that is not supported.
var ErrUnknownMethod = errors.New("unknown correction method")

// Correction method names.
const (
	Bonferroni    = "bonferroni"
	Sidak         = "sidak"
	Holm          = "holm"
	HolmSidak     = "holm-sidak"
	SimesHochberg = "simes-hochberg"
	Hommel        = "hommel"
	FDRBH         = "fdr_bh"
	FDRBY         = "fdr_by"
)

var methodAliases = map[string]string{
	"b":              Bonferroni,
	"bonferroni":     Bonferroni,
	"s":              Sidak,
	"sidak":          Sidak,
	"h":              Holm,
	"holm":           Holm,
	"hs":             HolmSidak,
	"holm-sidak":     HolmSidak,
	"sh":             SimesHochberg,
	"simes-hochberg": SimesHochberg,
	"hochberg":       SimesHochberg,
	"ho":             Hommel,
	"hommel":         Hommel,
	"fdr_i":          FDRBH,
	"fdr_bh":         FDRBH,
	"fdr_n":          FDRBY,
	"fdr_by":         FDRBY,
}

// Methods lists the canonical correction method names.
func Methods() []string {
	return []string{Bonferroni, Sidak, Holm, HolmSidak, SimesHochberg, Hommel, FDRBH, FDRBY}
}

// NormalizeMethod resolves a method name or alias to its canonical name.
func NormalizeMethod(method string) (string, error) {
	m, ok := methodAliases[strings.ToLower(strings.TrimSpace(method))]
	if !ok {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownMethod, method, strings.Join(Methods(), ", "))
	}
	return m, nil
}

// Correct adjusts pvals for multiple testing. It returns the reject
// decision at level alpha and the corrected p-values, both in input order.
func Correct(pvals []float64, alpha float64, method string) ([]bool, []float64, error) {
	m, err := NormalizeMethod(method)
	if err != nil {
		return nil, nil, err
	}

	n := len(pvals)
	if n == 0 {
		return []bool{}, []float64{}, nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return pvals[order[a]] < pvals[order[b]] })

	p := make([]float64, n)
	for i, idx := range order {
		p[i] = pvals[idx]
	}

	var reject []bool
	var corr []float64

	switch m {
	case Bonferroni:
		reject, corr = bonferroni(p, alpha)
	case Sidak:
		reject, corr = sidak(p, alpha)
	case Holm:
		reject, corr = stepDown(p, alpha, false)
	case HolmSidak:
		reject, corr = stepDown(p, alpha, true)
	case SimesHochberg:
		reject, corr = simesHochberg(p, alpha)
	case Hommel:
		reject, corr = hommel(p, alpha)
	case FDRBH:
		reject, corr = fdr(p, alpha, false)
	case FDRBY:
		reject, corr = fdr(p, alpha, true)
	}

	outReject := make([]bool, n)
	outCorr := make([]float64, n)
	for i, idx := range order {
		outReject[idx] = reject[i]
		outCorr[idx] = math.Min(corr[i], 1)
	}
	return outReject, outCorr, nil
}

// The helpers below take p-values sorted ascending.

func bonferroni(p []float64, alpha float64) ([]bool, []float64) {
	n := float64(len(p))
	reject := make([]bool, len(p))
	corr := make([]float64, len(p))
	for i, v := range p {
		reject[i] = v <= alpha/n
		corr[i] = v * n
	}
	return reject, corr
}

func sidak(p []float64, alpha float64) ([]bool, []float64) {
	n := float64(len(p))
	alphac := 1 - math.Pow(1-alpha, 1/n)
	reject := make([]bool, len(p))
	corr := make([]float64, len(p))
	for i, v := range p {
		reject[i] = v <= alphac
		corr[i] = -math.Expm1(n * math.Log1p(-v))
	}
	return reject, corr
}

// stepDown implements Holm and Holm-Sidak: rejection stops at the first
// p-value above its step threshold, corrected values are non-decreasing.
func stepDown(p []float64, alpha float64, useSidak bool) ([]bool, []float64) {
	n := len(p)
	reject := make([]bool, n)
	corr := make([]float64, n)

	stopped := false
	running := 0.0
	for i, v := range p {
		k := float64(n - i)
		var threshold, raw float64
		if useSidak {
			threshold = 1 - math.Pow(1-alpha, 1/k)
			raw = -math.Expm1(k * math.Log1p(-v))
		} else {
			threshold = alpha / k
			raw = v * k
		}
		if v > threshold {
			stopped = true
		}
		reject[i] = !stopped
		running = math.Max(running, raw)
		corr[i] = running
	}
	return reject, corr
}

func simesHochberg(p []float64, alpha float64) ([]bool, []float64) {
	n := len(p)
	reject := make([]bool, n)
	last := -1
	for i, v := range p {
		if v <= alpha/float64(n-i) {
			last = i
		}
	}
	for i := 0; i <= last; i++ {
		reject[i] = true
	}

	corr := make([]float64, n)
	running := math.Inf(1)
	for i := n - 1; i >= 0; i-- {
		running = math.Min(running, p[i]*float64(n-i))
		corr[i] = running
	}
	return reject, corr
}

func hommel(p []float64, alpha float64) ([]bool, []float64) {
	n := len(p)
	a := make([]float64, n)
	copy(a, p)

	for m := n; m > 1; m-- {
		cim := math.Inf(1)
		for j := 0; j < m; j++ {
			cim = math.Min(cim, float64(m)*p[n-m+j]/float64(j+1))
		}
		for j := n - m; j < n; j++ {
			a[j] = math.Max(a[j], cim)
		}
		for j := 0; j < n-m; j++ {
			a[j] = math.Max(a[j], math.Min(float64(m)*p[j], cim))
		}
	}

	reject := make([]bool, n)
	for i, v := range a {
		reject[i] = v <= alpha
	}
	return reject, a
}

// fdr implements Benjamini-Hochberg and, with dependent set, Benjamini-Yekutieli.
func fdr(p []float64, alpha float64, dependent bool) ([]bool, []float64) {
	n := len(p)
	cm := 1.0
	if dependent {
		cm = 0
		for i := 1; i <= n; i++ {
			cm += 1 / float64(i)
		}
	}

	factor := make([]float64, n)
	reject := make([]bool, n)
	last := -1
	for i, v := range p {
		factor[i] = float64(i+1) / float64(n) / cm
		if v <= factor[i]*alpha {
			last = i
		}
	}
	for i := 0; i <= last; i++ {
		reject[i] = true
	}

	corr := make([]float64, n)
	running := math.Inf(1)
	for i := n - 1; i >= 0; i-- {
		running = math.Min(running, p[i]/factor[i])
		corr[i] = running
	}
	return reject, corr
}
