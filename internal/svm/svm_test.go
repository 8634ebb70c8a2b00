package svm

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"osr-predict/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearModel separates on the sign of feature 1: dec(x) = 2*x1 - rho.
const linearModel = `svm_type c_svc
kernel_type linear
nr_class 2
total_sv 2
rho 0
label 1 -1
nr_sv 1 1
SV
1 1:1
-1 1:-1
`

func writeModel(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func vec(pairs ...float64) []Node {
	x := make([]Node, 0, len(pairs)/2+1)
	for i := 0; i+1 < len(pairs); i += 2 {
		x = append(x, Node{Index: int(pairs[i]), Value: pairs[i+1]})
	}
	return append(x, Node{Index: -1})
}

func TestLoadModel(t *testing.T) {
	path := writeModel(t, t.TempDir(), "model", linearModel)

	m, err := LoadModel(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, CSVC, m.SVMType())
	assert.Equal(t, Linear, m.KernelType())
	assert.Equal(t, 2, m.ClassCount())
	assert.Equal(t, []int{1, -1}, m.Labels())
	assert.False(t, m.SupportsProbability())
	assert.False(t, m.OpenSet())
	assert.Equal(t, path, m.Path())
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var openErr *common.FileOpenError
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, "model", openErr.Kind)
}

func TestReadModel_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown svm type", "svm_type magic\n"},
		{"unknown kernel", "svm_type c_svc\nkernel_type cubic\n"},
		{"unknown keyword", "svm_type c_svc\nfoo 1\n"},
		{"header without SV", "svm_type c_svc\nkernel_type linear\nnr_class 2\n"},
		{"missing labels", "svm_type c_svc\nkernel_type linear\nnr_class 2\ntotal_sv 0\nrho 0\nSV\n"},
		{"truncated SV block", strings.Replace(linearModel, "-1 1:-1\n", "", 1)},
		{"bad SV element", strings.Replace(linearModel, "1 1:1\n", "1 1-1\n", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadModel(strings.NewReader(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestPredict_Linear(t *testing.T) {
	m, err := ReadModel(strings.NewReader(linearModel))
	require.NoError(t, err)

	assert.Equal(t, 1.0, m.Predict(vec(1, 0.5, 2, -0.3)))
	assert.Equal(t, -1.0, m.Predict(vec(1, -0.5, 2, 0.3)))

	dec := make([]float64, m.DecisionSize())
	label := m.PredictValues(vec(1, 0.5), dec)
	assert.Equal(t, 1.0, label)
	assert.InDelta(t, 1.0, dec[0], 1e-12)
}

func TestPredict_IgnoresTerminatorTail(t *testing.T) {
	m, err := ReadModel(strings.NewReader(linearModel))
	require.NoError(t, err)

	x := []Node{{Index: 1, Value: -0.5}, {Index: -1}, {Index: 1, Value: 100}}
	assert.Equal(t, -1.0, m.Predict(x))
}

func TestPredictProbability(t *testing.T) {
	body := strings.Replace(linearModel, "nr_sv 1 1\n", "probA -2\nprobB 0\nnr_sv 1 1\n", 1)
	m, err := ReadModel(strings.NewReader(body))
	require.NoError(t, err)
	require.True(t, m.SupportsProbability())

	probs := make([]float64, m.ClassCount())
	label := m.PredictProbability(vec(1, 0.5), probs)

	assert.Equal(t, 1.0, label)
	assert.Greater(t, probs[0], probs[1])
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-9)
}

func TestPredict_Regression(t *testing.T) {
	body := `svm_type epsilon_svr
kernel_type linear
nr_class 2
total_sv 1
rho -0.5
probA 0.25
SV
2 1:1
`
	m, err := ReadModel(strings.NewReader(body))
	require.NoError(t, err)

	assert.InDelta(t, 2*3+0.5, m.Predict(vec(1, 3)), 1e-12)
	assert.True(t, m.SupportsProbability())
	assert.Nil(t, m.Labels())

	sigma, err := m.SVRProbability()
	require.NoError(t, err)
	assert.Equal(t, 0.25, sigma)
}

func TestPredict_OneClass(t *testing.T) {
	body := `svm_type one_class
kernel_type rbf
gamma 0.5
nr_class 2
total_sv 1
rho 0.5
SV
1 1:0 2:0
`
	m, err := ReadModel(strings.NewReader(body))
	require.NoError(t, err)

	assert.False(t, m.SupportsProbability())
	assert.Equal(t, 1.0, m.Predict(vec(1, 0.1)))
	assert.Equal(t, -1.0, m.Predict(vec(1, 5, 2, 5)))

	_, err = m.SVRProbability()
	assert.Error(t, err)
}

func TestKernels(t *testing.T) {
	x := []Node{{1, 1}, {3, 2}}
	y := []Node{{1, 2}, {2, 1}, {3, 1}}

	assert.Equal(t, 4.0, dot(x, y))
	assert.Equal(t, 1.0+1.0+1.0, squaredDistance(x, y))
	assert.InDelta(t, 25.0, kernel(x, y, &Parameter{KernelType: Poly, Gamma: 1, Coef0: 1, Degree: 2}), 1e-12)
	assert.Equal(t, 8.0, powi(2, 3))
}

func TestOpenSetBin_Threshold(t *testing.T) {
	body := strings.Replace(linearModel, "c_svc", "openset_bin", 1)
	m, err := ReadModel(strings.NewReader(body))
	require.NoError(t, err)
	require.True(t, m.OpenSet())

	// dec = 1, default sigmoid gives 1/(1+e^-1) ~ 0.73
	m.SetOpenSetThreshold(0.5)
	assert.Equal(t, 1.0, m.Predict(vec(1, 0.5)))

	m.SetOpenSetThreshold(0.99)
	assert.Equal(t, UnknownLabel, m.Predict(vec(1, 0.5)))
	assert.Equal(t, 0.99, m.Threshold())
}

func TestOpenSetPair_Threshold(t *testing.T) {
	body := strings.Replace(linearModel, "c_svc", "openset_pair", 1)
	m, err := ReadModel(strings.NewReader(body))
	require.NoError(t, err)

	m.SetOpenSetThreshold(0.001)
	assert.Equal(t, -1.0, m.Predict(vec(1, -2)))

	m.SetOpenSetThreshold(0.999)
	assert.Equal(t, UnknownLabel, m.Predict(vec(1, -0.1)))
}

func TestOpenSetOC(t *testing.T) {
	body := `svm_type openset_oc
kernel_type linear
nr_class 1
total_sv 1
rho 0
label 7
SV
1 1:1
`
	m, err := ReadModel(strings.NewReader(body))
	require.NoError(t, err)

	m.SetOpenSetThreshold(0.5)
	assert.Equal(t, 7.0, m.Predict(vec(1, 3)))
	assert.Equal(t, UnknownLabel, m.Predict(vec(1, -3)))
}

func TestLoadOpenSet_OneVsRest(t *testing.T) {
	dir := t.TempDir()
	base := writeModel(t, dir, "osr.model", strings.Replace(linearModel, "c_svc", "one_vs_rest_pi_svm", 1))

	// class 3 is positive on feature 1, class 5 on feature 2
	writeModel(t, dir, "osr.model.3", strings.Replace(linearModel, "label 1 -1", "label 3 -1", 1))
	writeModel(t, dir, "osr.model.5", `svm_type c_svc
kernel_type linear
nr_class 2
total_sv 2
rho 0
label -1 1
nr_sv 1 1
SV
1 2:-1
-1 2:1
`)
	writeModel(t, dir, "osr.model.txt", "ignored")

	m, err := LoadOpenSet(base)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 2, m.ClassCount())
	assert.Equal(t, []int{3, 5}, m.Labels())
	assert.Equal(t, 1, m.DecisionSize())

	m.SetOpenSetThreshold(0.6)
	assert.Equal(t, 3.0, m.Predict(vec(1, 2, 2, -2)))
	assert.Equal(t, 5.0, m.Predict(vec(1, -2, 2, 2)))
	assert.Equal(t, UnknownLabel, m.Predict(vec(1, -2, 2, -2)))
}

func TestLoadOpenSet_OneVsRestNeedsMembers(t *testing.T) {
	base := writeModel(t, t.TempDir(), "lonely", strings.Replace(linearModel, "c_svc", "one_vs_rest_pi_svm", 1))

	_, err := LoadOpenSet(base)
	assert.Error(t, err)
}

func TestLoad_AutoDetectsOpenSet(t *testing.T) {
	dir := t.TempDir()
	base := writeModel(t, dir, "osr.model", strings.Replace(linearModel, "c_svc", "one_vs_rest_pi_svm", 1))
	writeModel(t, dir, "osr.model.3", strings.Replace(linearModel, "label 1 -1", "label 3 -1", 1))

	m, err := Load(base, false)
	require.NoError(t, err)
	defer m.Close()

	assert.True(t, m.OpenSet())
	assert.Equal(t, []int{3}, m.Labels())
}

func TestLoad_PlainModelIgnoresMemberFiles(t *testing.T) {
	dir := t.TempDir()
	base := writeModel(t, dir, "plain.model", linearModel)
	writeModel(t, dir, "plain.model.3", linearModel)

	m, err := Load(base, false)
	require.NoError(t, err)
	defer m.Close()

	assert.False(t, m.OpenSet())
	assert.Equal(t, []int{1, -1}, m.Labels())
}

func TestLoad_RegressionIgnoresMemberFiles(t *testing.T) {
	dir := t.TempDir()
	base := writeModel(t, dir, "svr.model", `svm_type epsilon_svr
kernel_type linear
nr_class 2
total_sv 1
rho -0.5
SV
2 1:1
`)
	writeModel(t, dir, "svr.model.7", linearModel)

	m, err := Load(base, true)
	require.NoError(t, err)
	defer m.Close()

	assert.False(t, m.OpenSet())
	assert.Equal(t, 2, m.ClassCount())
	assert.Nil(t, m.Labels())
	assert.InDelta(t, 2*0.25+0.5, m.Predict(vec(1, 0.25)), 1e-12)
}

func TestClassScore_Orientation(t *testing.T) {
	tests := []struct {
		name   string
		labels string
		class  int
		want   float64
	}{
		{"class first", "label 4 -1", 4, 1},
		{"class second", "label 1 4", 4, -1},
		{"class second of negative pair", "label -1 4", 4, -1},
		{"positive convention", "label 1 -1", 4, 1},
		{"negative convention", "label -1 1", 4, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadModel(strings.NewReader(strings.Replace(linearModel, "label 1 -1", tt.labels, 1)))
			require.NoError(t, err)

			// dec(x) = 2*x1 favours the first label for x1 > 0
			assert.InDelta(t, tt.want, m.classScore([]Node{{Index: 1, Value: 0.5}}, tt.class), 1e-12)
		})
	}
}

func TestPredictOpenSet_ForcedOrdinaryModel(t *testing.T) {
	m, err := ReadModel(strings.NewReader(linearModel))
	require.NoError(t, err)
	m.SetOpenSetThreshold(0.99)

	dec := make([]float64, m.DecisionSize())
	label, prob := m.PredictOpenSet(vec(1, -0.25), dec)

	assert.Equal(t, -1.0, label)
	assert.Equal(t, 1.0, prob)
	assert.InDelta(t, -0.5, dec[0], 1e-12)
}

func TestModel_CloseTwice(t *testing.T) {
	m, err := ReadModel(strings.NewReader(linearModel))
	require.NoError(t, err)

	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

func TestTypeNames(t *testing.T) {
	for _, name := range []string{"c_svc", "nu_svc", "one_class", "epsilon_svr", "nu_svr", "openset_oc", "openset_pair", "openset_bin", "one_vs_rest_pi_svm"} {
		typ, err := ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, name, typ.String())
	}
	assert.True(t, OpenSetBin.IsOpenSet())
	assert.False(t, CSVC.IsOpenSet())
	assert.True(t, NuSVR.IsRegression())
	assert.Equal(t, "svm_type(42)", Type(42).String())
}
