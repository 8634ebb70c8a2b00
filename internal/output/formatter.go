// Package output renders predictions into the output file encodings:
// plain labels, per-class probabilities, and the pairwise score bins, vote
// tallies and total scores of open-set runs.
package output

import (
	"bufio"
	"io"
	"strconv"
)

// Mode selects the encoding of each output line. Probability excludes the
// pairwise sections; Scores, Votes and Totals may be combined.
type Mode struct {
	Probability bool
	Scores      bool
	Votes       bool
	Totals      bool
}

// Pairwise reports whether any pairwise section is requested.
func (m Mode) Pairwise() bool {
	return m.Scores || m.Votes || m.Totals
}

// Formatter writes one line per prediction. Writes are buffered; call Flush
// before closing the underlying writer.
type Formatter struct {
	w      *bufio.Writer
	labels []int
	mode   Mode
	buf    []byte
	votes  []int
	totals []float64
}

// New returns a Formatter for a model with the given class labels.
func New(w io.Writer, labels []int, mode Mode) *Formatter {
	return &Formatter{
		w:      bufio.NewWriter(w),
		labels: labels,
		mode:   mode,
		votes:  make([]int, len(labels)),
		totals: make([]float64, len(labels)),
	}
}

// WriteHeader writes the "labels ..." line of probability output. It writes
// nothing in the other modes.
func (f *Formatter) WriteHeader() error {
	if !f.mode.Probability {
		return nil
	}
	b := append(f.buf[:0], "labels"...)
	for _, l := range f.labels {
		b = append(b, ' ')
		b = strconv.AppendInt(b, int64(l), 10)
	}
	b = append(b, '\n')
	f.buf = b
	_, err := f.w.Write(b)
	return err
}

// Write renders one prediction. probs is used in probability mode and must
// be aligned with the labels; dec holds the pairwise decision values in
// (0,1), (0,2), ..., (1,2), ... order and is used by the pairwise sections.
func (f *Formatter) Write(label float64, probs, dec []float64) error {
	b := appendFloat(f.buf[:0], label)

	switch {
	case f.mode.Probability:
		for _, p := range probs {
			b = append(b, ' ')
			b = appendFloat(b, p)
		}
	case f.mode.Pairwise():
		b = f.appendPairwise(b, dec)
	}

	b = append(b, '\n')
	f.buf = b
	_, err := f.w.Write(b)
	return err
}

// Flush writes any buffered lines to the underlying writer.
func (f *Formatter) Flush() error {
	return f.w.Flush()
}

func (f *Formatter) appendPairwise(b []byte, dec []float64) []byte {
	k := len(f.labels)
	if len(dec) < k*(k-1)/2 {
		return b
	}

	if f.mode.Scores {
		b = append(b, " scores"...)
		p := 0
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				b = append(b, ' ')
				b = strconv.AppendInt(b, int64(f.labels[i]), 10)
				b = append(b, '-')
				b = strconv.AppendInt(b, int64(f.labels[j]), 10)
				b = append(b, ':')
				b = appendFloat(b, dec[p])
				p++
			}
		}
	}

	if f.mode.Votes || f.mode.Totals {
		Tally(dec, f.votes, f.totals)
	}
	if f.mode.Votes {
		b = append(b, " votes"...)
		for i, v := range f.votes {
			b = f.appendClass(b, i)
			b = strconv.AppendInt(b, int64(v), 10)
		}
	}
	if f.mode.Totals {
		b = append(b, " totals"...)
		for i, s := range f.totals {
			b = f.appendClass(b, i)
			b = appendFloat(b, s)
		}
	}
	return b
}

func (f *Formatter) appendClass(b []byte, i int) []byte {
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(f.labels[i]), 10)
	return append(b, ':')
}

// Tally computes the one-vs-one votes and total scores of each class from
// pairwise decision values. A positive value is a win for the first class of
// the pair; totals are oriented so that positive favours the class.
func Tally(dec []float64, votes []int, totals []float64) {
	k := len(votes)
	for i := range votes {
		votes[i] = 0
		totals[i] = 0
	}
	p := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if dec[p] > 0 {
				votes[i]++
			} else {
				votes[j]++
			}
			totals[i] += dec[p]
			totals[j] -= dec[p]
			p++
		}
	}
}

func appendFloat(b []byte, v float64) []byte {
	return strconv.AppendFloat(b, v, 'g', -1, 64)
}
