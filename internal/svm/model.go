package svm

import (
	"errors"
	"sort"
)

// Model is a loaded SVM model.
type Model struct {
	Param   Parameter
	NrClass int         // number of classes, 2 for regression and one-class
	L       int         // total number of support vectors
	SV      [][]Node    // support vectors, without terminator
	SVCoef  [][]float64 // coefficients per decision function, SVCoef[k-1][l]
	Rho     []float64   // decision function constants, nrClass*(nrClass-1)/2
	ProbA   []float64   // pairwise sigmoid slope, or the SVR Laplace scale
	ProbB   []float64   // pairwise sigmoid intercept
	Label   []int       // class labels, nil for regression and one-class
	NSV     []int       // support vectors per class

	path      string
	threshold float64

	// members holds the per-class models of a one-vs-rest open-set model,
	// keyed by class label and sorted by label.
	members      []*Model
	memberLabels []int
	closed       bool
}

// SVMType returns the declared formulation of the model.
func (m *Model) SVMType() Type {
	return m.Param.SVMType
}

// KernelType returns the kernel function of the model.
func (m *Model) KernelType() KernelType {
	return m.Param.KernelType
}

// Path returns the file the model was loaded from.
func (m *Model) Path() string {
	return m.path
}

// ClassCount returns the number of classes the model distinguishes.
func (m *Model) ClassCount() int {
	if len(m.members) > 0 {
		return len(m.members)
	}
	return m.NrClass
}

// Labels returns the class labels in model order. It is nil for models that
// carry no labels (regression, one-class).
func (m *Model) Labels() []int {
	if len(m.members) > 0 {
		return append([]int(nil), m.memberLabels...)
	}
	if m.Label == nil {
		return nil
	}
	return append([]int(nil), m.Label...)
}

// OpenSet reports whether predictions go through open-set thresholding.
func (m *Model) OpenSet() bool {
	return m.Param.SVMType.IsOpenSet() || len(m.members) > 0
}

// SupportsProbability reports whether the model carries the information
// needed for probability estimates.
func (m *Model) SupportsProbability() bool {
	switch m.Param.SVMType {
	case CSVC, NuSVC:
		return m.ProbA != nil && m.ProbB != nil
	case EpsilonSVR, NuSVR:
		return m.ProbA != nil
	}
	return false
}

// SVRProbability returns the scale of the Laplace residual distribution of
// a regression model trained with probability information.
func (m *Model) SVRProbability() (float64, error) {
	if m.Param.SVMType.IsRegression() && len(m.ProbA) > 0 {
		return m.ProbA[0], nil
	}
	return 0, errors.New("model doesn't contain information for SVR probability inference")
}

// Threshold returns the open-set minimum probability in effect.
func (m *Model) Threshold() float64 {
	return m.threshold
}

// SetOpenSetThreshold sets the minimum probability a class needs to be
// accepted by an open-set evaluation.
func (m *Model) SetOpenSetThreshold(v float64) {
	m.threshold = v
	for _, member := range m.members {
		member.threshold = v
	}
}

// Close releases the model. It is safe to call more than once.
func (m *Model) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	for _, member := range m.members {
		member.Close()
	}
	m.SV, m.SVCoef, m.members = nil, nil, nil
	return nil
}

func (m *Model) addMember(label int, member *Model) {
	m.members = append(m.members, member)
	m.memberLabels = append(m.memberLabels, label)
	sort.Sort(byLabel{m})
}

type byLabel struct{ m *Model }

func (b byLabel) Len() int           { return len(b.m.members) }
func (b byLabel) Less(i, j int) bool { return b.m.memberLabels[i] < b.m.memberLabels[j] }
func (b byLabel) Swap(i, j int) {
	b.m.members[i], b.m.members[j] = b.m.members[j], b.m.members[i]
	b.m.memberLabels[i], b.m.memberLabels[j] = b.m.memberLabels[j], b.m.memberLabels[i]
}
