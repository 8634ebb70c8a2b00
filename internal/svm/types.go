// Package svm loads trained SVM models in libsvm text format and evaluates
// them against sparse feature vectors. Besides the classic libsvm model types
// it understands four open-set variants that may reject every known class
// and answer with UnknownLabel instead.
//
// The package is the model adapter of the prediction driver: it exposes the
// model's declared type, classes and probability support together with the
// plain, probability and decision-value evaluation entry points.
package svm

import "fmt"

// Type is the declared SVM formulation of a model.
type Type int

const (
	CSVC Type = iota
	NuSVC
	OneClass
	EpsilonSVR
	NuSVR
	OpenSetOC
	OpenSetPair
	OpenSetBin
	OneVsRestPISVM
)

// KernelType is the kernel function of a model.
type KernelType int

const (
	Linear KernelType = iota
	Poly
	RBF
	Sigmoid
	Precomputed
)

// UnknownLabel is returned by open-set models when no class clears the
// minimum probability threshold.
const UnknownLabel = -99999.0

var typeNames = []string{
	CSVC:           "c_svc",
	NuSVC:          "nu_svc",
	OneClass:       "one_class",
	EpsilonSVR:     "epsilon_svr",
	NuSVR:          "nu_svr",
	OpenSetOC:      "openset_oc",
	OpenSetPair:    "openset_pair",
	OpenSetBin:     "openset_bin",
	OneVsRestPISVM: "one_vs_rest_pi_svm",
}

var kernelNames = []string{
	Linear:      "linear",
	Poly:        "polynomial",
	RBF:         "rbf",
	Sigmoid:     "sigmoid",
	Precomputed: "precomputed",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("svm_type(%d)", int(t))
}

func (k KernelType) String() string {
	if k >= 0 && int(k) < len(kernelNames) {
		return kernelNames[k]
	}
	return fmt.Sprintf("kernel_type(%d)", int(k))
}

// IsOpenSet reports whether t is one of the open-set variants.
func (t Type) IsOpenSet() bool {
	switch t {
	case OpenSetOC, OpenSetPair, OpenSetBin, OneVsRestPISVM:
		return true
	}
	return false
}

// IsRegression reports whether t predicts real values.
func (t Type) IsRegression() bool {
	return t == EpsilonSVR || t == NuSVR
}

// singleDecision reports whether t evaluates one decision function instead
// of the pairwise one-vs-one set.
func (t Type) singleDecision() bool {
	return t == OneClass || t == EpsilonSVR || t == NuSVR || t == OpenSetOC
}

// ParseType maps a model-file svm_type name to its Type.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown svm type %q", name)
}

// ParseKernelType maps a model-file kernel_type name to its KernelType.
func ParseKernelType(name string) (KernelType, error) {
	for i, n := range kernelNames {
		if n == name {
			return KernelType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown kernel type %q", name)
}

// Node is one index:value pair of a sparse feature vector. A vector is
// terminated by a node with Index -1.
type Node struct {
	Index int
	Value float64
}

// Parameter holds the kernel parameters a model was trained with.
type Parameter struct {
	SVMType    Type
	KernelType KernelType
	Degree     int     // poly
	Gamma      float64 // poly/rbf/sigmoid
	Coef0      float64 // poly/sigmoid
}
