package svm

// predictOpenSet evaluates an open-set model. It returns UnknownLabel when
// the best class probability is below the model threshold, together with
// that probability. x has no terminator.
func (m *Model) predictOpenSet(x []Node, dec []float64) (float64, float64) {
	if len(m.members) > 0 {
		return m.predictOneVsRest(x, dec)
	}

	switch m.Param.SVMType {
	case OpenSetOC:
		m.predictValues(x, dec)
		a, b := m.sigmoid(0)
		prob := sigmoidPredict(dec[0], a, b)
		return m.accept(m.oneClassLabel(), prob)

	case OpenSetBin:
		votes := m.pairwise(x, dec)
		probs := make([]float64, m.NrClass)
		m.coupledProbabilities(dec, probs)
		winner := argmaxInt(votes)
		return m.accept(float64(m.Label[winner]), probs[winner])

	case OpenSetPair, OneVsRestPISVM:
		m.pairwise(x, dec)
		probs := make([]float64, m.NrClass)
		m.coupledProbabilities(dec, probs)
		winner := argmaxFloat(probs)
		return m.accept(float64(m.Label[winner]), probs[winner])
	}

	// Ordinary model forced into open-set mode without per-class models.
	return m.predictValues(x, dec), 1
}

// predictOneVsRest scores x with one model per class. dec receives the
// pairwise margins score(i)-score(j) in Labels order.
func (m *Model) predictOneVsRest(x []Node, dec []float64) (float64, float64) {
	n := len(m.members)
	scores := make([]float64, n)
	probs := make([]float64, n)
	for c, member := range m.members {
		scores[c] = member.classScore(x, m.memberLabels[c])
		a, b := member.sigmoid(0)
		probs[c] = sigmoidPredict(scores[c], a, b)
	}

	if n == 1 {
		dec[0] = scores[0]
	}
	p := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dec[p] = scores[i] - scores[j]
			p++
		}
	}

	winner := argmaxFloat(probs)
	return m.accept(float64(m.memberLabels[winner]), probs[winner])
}

// classScore returns the decision value of a per-class model oriented so
// that a positive value favours class label. A binary member naming label
// among its two labels is oriented towards it; otherwise label 1 stands for
// the class and any other label for the rest.
func (m *Model) classScore(x []Node, label int) float64 {
	dec := make([]float64, m.DecisionSize())
	m.predictValues(x, dec)
	if m.Param.SVMType.singleDecision() || len(m.Label) != 2 {
		return dec[0]
	}
	switch {
	case m.Label[0] == label:
		return dec[0]
	case m.Label[1] == label:
		return -dec[0]
	case m.Label[0] == 1:
		return dec[0]
	}
	return -dec[0]
}

// sigmoid returns the sigmoid parameters of decision function p, defaulting
// to A=-1, B=0 when the model carries none.
func (m *Model) sigmoid(p int) (float64, float64) {
	if p < len(m.ProbA) && p < len(m.ProbB) {
		return m.ProbA[p], m.ProbB[p]
	}
	return -1, 0
}

func (m *Model) oneClassLabel() float64 {
	if len(m.Label) > 0 {
		return float64(m.Label[0])
	}
	return 1
}

func (m *Model) accept(label, prob float64) (float64, float64) {
	if prob < m.threshold {
		return UnknownLabel, prob
	}
	return label, prob
}
