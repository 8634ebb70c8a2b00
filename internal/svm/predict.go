package svm

import "math"

const minPairwiseProb = 1e-7

// DecisionSize returns the number of decision values PredictValues fills:
// one per class pair, or one for single-decision models.
func (m *Model) DecisionSize() int {
	if len(m.members) > 0 {
		return pairs(len(m.members))
	}
	if m.Param.SVMType.singleDecision() {
		return 1
	}
	return pairs(m.NrClass)
}

// Predict evaluates x and returns the predicted label or regression value.
// Open-set models return UnknownLabel when no class is accepted.
func (m *Model) Predict(x []Node) float64 {
	dec := make([]float64, m.DecisionSize())
	return m.PredictValues(x, dec)
}

// PredictValues evaluates x, stores the decision values in dec and returns
// the predicted label. For pairwise models dec is ordered (0,1), (0,2), ...,
// (1,2), ... over the class order of Labels; a positive value favours the
// first class of the pair.
func (m *Model) PredictValues(x []Node, dec []float64) float64 {
	x = active(x)
	if m.OpenSet() {
		label, _ := m.predictOpenSet(x, dec)
		return label
	}
	return m.predictValues(x, dec)
}

// PredictOpenSet evaluates x through open-set thresholding even when the
// model type is not an open-set variant. It returns the label, or
// UnknownLabel, and the probability of the best class.
func (m *Model) PredictOpenSet(x []Node, dec []float64) (float64, float64) {
	return m.predictOpenSet(active(x), dec)
}

// PredictProbability evaluates x and fills probs, aligned with Labels, with
// the class probability estimates. Models without probability information
// fall back to Predict and leave probs untouched.
func (m *Model) PredictProbability(x []Node, probs []float64) float64 {
	x = active(x)
	t := m.Param.SVMType
	if (t != CSVC && t != NuSVC) || m.ProbA == nil || m.ProbB == nil {
		dec := make([]float64, m.DecisionSize())
		return m.predictValues(x, dec)
	}

	dec := make([]float64, pairs(m.NrClass))
	m.predictValues(x, dec)
	m.coupledProbabilities(dec, probs)

	best := 0
	for i := 1; i < m.NrClass; i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return float64(m.Label[best])
}

// predictValues computes the decision functions of a single model. x has no
// terminator.
func (m *Model) predictValues(x []Node, dec []float64) float64 {
	if m.Param.SVMType.singleDecision() {
		coef := m.SVCoef[0]
		sum := 0.0
		for i := 0; i < m.L; i++ {
			sum += coef[i] * kernel(x, m.SV[i], &m.Param)
		}
		sum -= m.Rho[0]
		dec[0] = sum

		switch m.Param.SVMType {
		case EpsilonSVR, NuSVR:
			return sum
		}
		if sum > 0 {
			return 1
		}
		return -1
	}

	votes := m.pairwise(x, dec)
	return float64(m.Label[argmaxInt(votes)])
}

// pairwise fills dec with the one-vs-one decision values and returns the
// per-class vote counts.
func (m *Model) pairwise(x []Node, dec []float64) []int {
	nrClass := m.NrClass

	kvalue := make([]float64, m.L)
	for i := 0; i < m.L; i++ {
		kvalue[i] = kernel(x, m.SV[i], &m.Param)
	}

	start := make([]int, nrClass)
	for i := 1; i < nrClass; i++ {
		start[i] = start[i-1] + m.NSV[i-1]
	}

	votes := make([]int, nrClass)
	p := 0
	for i := 0; i < nrClass; i++ {
		for j := i + 1; j < nrClass; j++ {
			sum := 0.0
			si, sj := start[i], start[j]
			ci, cj := m.NSV[i], m.NSV[j]
			coef1, coef2 := m.SVCoef[j-1], m.SVCoef[i]

			for k := 0; k < ci; k++ {
				sum += coef1[si+k] * kvalue[si+k]
			}
			for k := 0; k < cj; k++ {
				sum += coef2[sj+k] * kvalue[sj+k]
			}
			sum -= m.Rho[p]
			dec[p] = sum

			if sum > 0 {
				votes[i]++
			} else {
				votes[j]++
			}
			p++
		}
	}
	return votes
}

// coupledProbabilities turns pairwise decision values into class
// probabilities. Models without sigmoid parameters use A=-1, B=0.
func (m *Model) coupledProbabilities(dec, probs []float64) {
	k := m.NrClass
	r := make([][]float64, k)
	for i := range r {
		r[i] = make([]float64, k)
	}

	p := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			a, b := -1.0, 0.0
			if m.ProbA != nil && m.ProbB != nil {
				a, b = m.ProbA[p], m.ProbB[p]
			}
			r[i][j] = math.Min(math.Max(sigmoidPredict(dec[p], a, b), minPairwiseProb), 1-minPairwiseProb)
			r[j][i] = 1 - r[i][j]
			p++
		}
	}
	multiclassProbability(k, r, probs)
}

func sigmoidPredict(decision, a, b float64) float64 {
	fApB := decision*a + b
	if fApB >= 0 {
		return math.Exp(-fApB) / (1.0 + math.Exp(-fApB))
	}
	return 1.0 / (1 + math.Exp(fApB))
}

// multiclassProbability solves the pairwise coupling problem of Wu, Lin and
// Weng (2004), method 2.
func multiclassProbability(k int, r [][]float64, p []float64) {
	maxIter := 100
	if k > maxIter {
		maxIter = k
	}
	q := make([][]float64, k)
	for i := range q {
		q[i] = make([]float64, k)
	}
	qp := make([]float64, k)
	eps := 0.005 / float64(k)

	for t := 0; t < k; t++ {
		p[t] = 1.0 / float64(k)
		q[t][t] = 0
		for j := 0; j < t; j++ {
			q[t][t] += r[j][t] * r[j][t]
			q[t][j] = q[j][t]
		}
		for j := t + 1; j < k; j++ {
			q[t][t] += r[j][t] * r[j][t]
			q[t][j] = -r[j][t] * r[t][j]
		}
	}

	for iter := 0; iter < maxIter; iter++ {
		pqp := 0.0
		for t := 0; t < k; t++ {
			qp[t] = 0
			for j := 0; j < k; j++ {
				qp[t] += q[t][j] * p[j]
			}
			pqp += p[t] * qp[t]
		}
		maxError := 0.0
		for t := 0; t < k; t++ {
			if e := math.Abs(qp[t] - pqp); e > maxError {
				maxError = e
			}
		}
		if maxError < eps {
			return
		}

		for t := 0; t < k; t++ {
			diff := (-qp[t] + pqp) / q[t][t]
			p[t] += diff
			pqp = (pqp + diff*(diff*q[t][t]+2*qp[t])) / (1 + diff) / (1 + diff)
			for j := 0; j < k; j++ {
				qp[j] = (qp[j] + diff*q[t][j]) / (1 + diff)
				p[j] /= 1 + diff
			}
		}
	}
}

func argmaxInt(v []int) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func argmaxFloat(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
