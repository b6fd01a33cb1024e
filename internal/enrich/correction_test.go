package enrich

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestCorrect_Bonferroni(t *testing.T) {
	reject, corr, err := Correct([]float64{0.01, 0.02, 0.03, 0.04, 0.05}, 0.04, "bonferroni")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.05, 0.1, 0.15, 0.2, 0.25}, corr, eps)
	assert.Equal(t, []bool{false, false, false, false, false}, reject)
}

func TestCorrect_BonferroniClipsAtOne(t *testing.T) {
	_, corr, err := Correct([]float64{0.4, 0.9}, 0.05, "bonferroni")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.8, 1.0}, corr, eps)
}

func TestCorrect_Sidak(t *testing.T) {
	reject, corr, err := Correct([]float64{0.05, 0.05}, 0.05, "sidak")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.0975, 0.0975}, corr, eps)
	assert.Equal(t, []bool{false, false}, reject)
}

func TestCorrect_Holm(t *testing.T) {
	reject, corr, err := Correct([]float64{0.01, 0.02, 0.03, 0.04, 0.05}, 0.06, "holm")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.05, 0.08, 0.09, 0.09, 0.09}, corr, eps)
	assert.Equal(t, []bool{true, false, false, false, false}, reject)
}

func TestCorrect_HolmStopsAtFirstAcceptance(t *testing.T) {
	// 0.06 fails the last step; the earlier rejections stand.
	reject, _, err := Correct([]float64{0.06, 0.001, 0.02}, 0.05, "holm")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, reject)
}

func TestCorrect_SimesHochberg(t *testing.T) {
	reject, corr, err := Correct([]float64{0.5, 0.01, 0.02}, 0.05, "hochberg")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.03, 0.04}, corr, eps)
	assert.Equal(t, []bool{false, true, true}, reject)
}

func TestCorrect_Hommel(t *testing.T) {
	reject, corr, err := Correct([]float64{0.5, 0.01, 0.02}, 0.05, "hommel")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.03, 0.04}, corr, eps)
	assert.Equal(t, []bool{false, true, true}, reject)
}

func TestCorrect_HommelEqualSpacing(t *testing.T) {
	reject, corr, err := Correct([]float64{0.01, 0.02, 0.03, 0.04, 0.05}, 0.1, "hommel")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.05, 0.05, 0.05, 0.05, 0.05}, corr, eps)
	assert.Equal(t, []bool{true, true, true, true, true}, reject)
}

func TestCorrect_HommelTwoTests(t *testing.T) {
	_, corr, err := Correct([]float64{0.01, 0.5}, 0.05, "hommel")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.02, 0.5}, corr, eps)
}

func TestCorrect_FDRBH(t *testing.T) {
	reject, corr, err := Correct([]float64{0.01, 0.02, 0.03, 0.04, 0.05}, 0.05, "fdr_bh")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.05, 0.05, 0.05, 0.05, 0.05}, corr, eps)
	assert.Equal(t, []bool{true, true, true, true, true}, reject)
}

func TestCorrect_FDRBY(t *testing.T) {
	reject, corr, err := Correct([]float64{0.04, 0.01}, 0.05, "fdr_by")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.06, 0.03}, corr, eps)
	assert.Equal(t, []bool{false, true}, reject)
}

func TestCorrect_Monotone(t *testing.T) {
	pvals := []float64{0.001, 0.2, 0.04, 0.03, 0.7, 0.011, 0.5}
	for _, m := range Methods() {
		_, corr, err := Correct(pvals, 0.05, m)
		require.NoError(t, err, m)
		for i, p := range pvals {
			assert.GreaterOrEqual(t, corr[i]+eps, p, "%s: corrected below raw", m)
			assert.LessOrEqual(t, corr[i], 1.0, m)
		}
	}
}

func TestCorrect_Empty(t *testing.T) {
	reject, corr, err := Correct(nil, 0.05, "hommel")
	require.NoError(t, err)
	assert.Empty(t, reject)
	assert.Empty(t, corr)
}

func TestCorrect_UnknownMethod(t *testing.T) {
	_, _, err := Correct([]float64{0.1}, 0.05, "magic")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMethod))
}

func TestNormalizeMethod_Aliases(t *testing.T) {
	for in, want := range map[string]string{
		"HOMMEL":   Hommel,
		" fdr_i ":  FDRBH,
		"hs":       HolmSidak,
		"hochberg": SimesHochberg,
	} {
		got, err := NormalizeMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
