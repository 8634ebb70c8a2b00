package record

import (
	"bytes"
	"strconv"

	"osr-predict/internal/common"
	"osr-predict/internal/svm"
)

// Record is one parsed test-file line.
type Record struct {
	Label    float64
	Features []svm.Node // terminated by svm.Node{Index: -1}
}

// Pairs returns the features without the terminator.
func (r Record) Pairs() []svm.Node {
	if n := len(r.Features); n > 0 && r.Features[n-1].Index == -1 {
		return r.Features[:n-1]
	}
	return r.Features
}

// Parser turns lines into records. It owns the feature buffer, so a Record
// is only valid until the next call to ParseLine.
type Parser struct {
	nodes []svm.Node
}

// NewParser returns a Parser with the default feature capacity.
func NewParser() *Parser {
	return &Parser{nodes: make([]svm.Node, 0, common.DefaultFeatureCapacity)}
}

// Cap returns the current capacity of the feature buffer.
func (p *Parser) Cap() int {
	return cap(p.nodes)
}

// ParseLine parses one line. lineNumber is 1-based and only used for errors.
func (p *Parser) ParseLine(line []byte, lineNumber int) (Record, error) {
	fields := bytes.Fields(line)
	if len(fields) == 0 {
		return Record{}, formatError(lineNumber, "empty line")
	}

	label, err := strconv.ParseFloat(string(fields[0]), 64)
	if err != nil {
		return Record{}, formatError(lineNumber, "bad label "+strconv.Quote(string(fields[0])))
	}

	p.nodes = p.nodes[:0]
	maxIndex := -1
	for _, tok := range fields[1:] {
		idx, val, ok := bytes.Cut(tok, []byte{':'})
		if !ok {
			return Record{}, formatError(lineNumber, "missing ':' in "+strconv.Quote(string(tok)))
		}

		index, err := strconv.ParseInt(string(idx), 10, 32)
		if err != nil {
			return Record{}, formatError(lineNumber, "bad index "+strconv.Quote(string(idx)))
		}
		if int(index) <= maxIndex {
			return Record{}, formatError(lineNumber, "index "+string(idx)+" not increasing")
		}
		maxIndex = int(index)

		value, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return Record{}, formatError(lineNumber, "bad value "+strconv.Quote(string(val)))
		}

		p.push(svm.Node{Index: int(index), Value: value})
	}
	p.push(svm.Node{Index: -1})

	return Record{Label: label, Features: p.nodes}, nil
}

// push appends n, doubling the buffer capacity when it is full.
func (p *Parser) push(n svm.Node) {
	if len(p.nodes) == cap(p.nodes) {
		newCap := 2 * cap(p.nodes)
		if newCap == 0 {
			newCap = common.DefaultFeatureCapacity
		}
		grown := make([]svm.Node, len(p.nodes), newCap)
		copy(grown, p.nodes)
		p.nodes = grown
	}
	p.nodes = append(p.nodes, n)
}

func formatError(line int, reason string) error {
	return &common.InputFormatError{Line: line, Reason: reason}
}
