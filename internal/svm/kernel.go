package svm

import "math"

// active returns x without its -1 terminator (and anything after it).
func active(x []Node) []Node {
	for i := range x {
		if x[i].Index == -1 {
			return x[:i]
		}
	}
	return x
}

func powi(base float64, times int) float64 {
	tmp := base
	ret := 1.0

	for t := times; t > 0; t /= 2 {
		if t%2 == 1 {
			ret *= tmp
		}
		tmp = tmp * tmp
	}
	return ret
}

func dot(x, y []Node) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i].Index == y[j].Index:
			sum += x[i].Value * y[j].Value
			i++
			j++
		case x[i].Index > y[j].Index:
			j++
		default:
			i++
		}
	}
	return sum
}

func squaredDistance(x, y []Node) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i].Index == y[j].Index:
			d := x[i].Value - y[j].Value
			sum += d * d
			i++
			j++
		case x[i].Index > y[j].Index:
			sum += y[j].Value * y[j].Value
			j++
		default:
			sum += x[i].Value * x[i].Value
			i++
		}
	}
	for ; i < len(x); i++ {
		sum += x[i].Value * x[i].Value
	}
	for ; j < len(y); j++ {
		sum += y[j].Value * y[j].Value
	}
	return sum
}

// kernel evaluates K(x, sv). Both vectors must already be stripped of their
// terminator.
func kernel(x, sv []Node, param *Parameter) float64 {
	switch param.KernelType {
	case Linear:
		return dot(x, sv)
	case Poly:
		return powi(param.Gamma*dot(x, sv)+param.Coef0, param.Degree)
	case RBF:
		return math.Exp(-param.Gamma * squaredDistance(x, sv))
	case Sigmoid:
		return math.Tanh(param.Gamma*dot(x, sv) + param.Coef0)
	case Precomputed:
		// sv[0].Value holds the 1-based serial number of the support vector,
		// x carries the precomputed kernel row with 0:<serial> first.
		if len(sv) == 0 {
			return 0
		}
		k := int(sv[0].Value)
		if k < 0 || k >= len(x) {
			return 0
		}
		return x[k].Value
	}
	return 0
}
