package svm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"osr-predict/internal/common"
)

// LoadModel reads a model file in libsvm text format.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &common.FileOpenError{Kind: "model", Path: path, Err: err}
	}
	defer f.Close()

	m, err := ReadModel(f)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	m.path = path
	return m, nil
}

// Load loads the model at path. Per-class models are attached when openSet
// is set or when the model declares one of the open-set types. Regression and
// one-class models never get per-class models.
func Load(path string, openSet bool) (*Model, error) {
	m, err := LoadModel(path)
	if err != nil {
		return nil, err
	}
	if !openSet && !m.SVMType().IsOpenSet() {
		return m, nil
	}
	if t := m.SVMType(); t.IsRegression() || t == OneClass {
		return m, nil
	}
	if err := m.attachMembers(path); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// LoadOpenSet loads the model at path together with the per-class models
// stored next to it as <path>.<label>. One-vs-rest open-set models must have
// at least one per-class model.
func LoadOpenSet(path string) (*Model, error) {
	return Load(path, true)
}

func (m *Model) attachMembers(path string) error {
	labels, paths, err := memberFiles(path)
	if err != nil {
		return err
	}
	for i, p := range paths {
		member, err := LoadModel(p)
		if err != nil {
			return err
		}
		m.addMember(labels[i], member)
	}

	if m.Param.SVMType == OneVsRestPISVM && len(m.members) == 0 {
		return fmt.Errorf("model %s: %s requires per-class models named %s.<class>", path, OneVsRestPISVM, path)
	}
	return nil
}

// memberFiles lists the files named <base>.<integer label>.
func memberFiles(base string) ([]int, []string, error) {
	dir, name := filepath.Split(base)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, &common.FileOpenError{Kind: "model", Path: dir, Err: err}
	}

	var labels []int
	var paths []string
	prefix := name + "."
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		label, err := strconv.Atoi(strings.TrimPrefix(e.Name(), prefix))
		if err != nil {
			continue
		}
		labels = append(labels, label)
		paths = append(paths, filepath.Join(filepath.Dir(base), e.Name()))
	}
	return labels, paths, nil
}

// ReadModel parses a model in libsvm text format from r.
func ReadModel(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)
	m := &Model{}
	param := &m.Param
	lineNo := 0

header:
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && (readErr != io.EOF || line == "") {
			if readErr == io.EOF {
				return nil, fmt.Errorf("unexpected end of model header")
			}
			return nil, readErr
		}
		lineNo++

		var err error

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "svm_type":
			if len(args) < 1 {
				return nil, fmt.Errorf("line %d: missing svm_type", lineNo)
			}
			if param.SVMType, err = ParseType(args[0]); err != nil {
				return nil, err
			}
		case "kernel_type":
			if len(args) < 1 {
				return nil, fmt.Errorf("line %d: missing kernel_type", lineNo)
			}
			if param.KernelType, err = ParseKernelType(args[0]); err != nil {
				return nil, err
			}
		case "degree":
			if param.Degree, err = atoi(args, lineNo); err != nil {
				return nil, err
			}
		case "gamma":
			if param.Gamma, err = atof(args, lineNo); err != nil {
				return nil, err
			}
		case "coef0":
			if param.Coef0, err = atof(args, lineNo); err != nil {
				return nil, err
			}
		case "nr_class":
			if m.NrClass, err = atoi(args, lineNo); err != nil {
				return nil, err
			}
		case "total_sv":
			if m.L, err = atoi(args, lineNo); err != nil {
				return nil, err
			}
		case "rho":
			if m.Rho, err = floats(args, pairs(m.NrClass), lineNo); err != nil {
				return nil, err
			}
		case "label":
			if m.Label, err = ints(args, m.NrClass, lineNo); err != nil {
				return nil, err
			}
		case "probA":
			n := pairs(m.NrClass)
			if param.SVMType.IsRegression() {
				n = 1
			}
			if m.ProbA, err = floats(args, n, lineNo); err != nil {
				return nil, err
			}
		case "probB":
			if m.ProbB, err = floats(args, pairs(m.NrClass), lineNo); err != nil {
				return nil, err
			}
		case "nr_sv":
			if m.NSV, err = ints(args, m.NrClass, lineNo); err != nil {
				return nil, err
			}
		case "SV":
			break header
		default:
			return nil, fmt.Errorf("line %d: unknown text in model file: [%s]", lineNo, strings.TrimSpace(line))
		}

		if readErr == io.EOF {
			return nil, fmt.Errorf("unexpected end of model header")
		}
	}

	if err := m.validateHeader(); err != nil {
		return nil, err
	}

	coefs := m.NrClass - 1
	if coefs < 1 {
		coefs = 1
	}
	m.SVCoef = make([][]float64, coefs)
	for k := range m.SVCoef {
		m.SVCoef[k] = make([]float64, m.L)
	}
	m.SV = make([][]Node, m.L)

	for i := 0; i < m.L; i++ {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			return nil, fmt.Errorf("support vector %d: %w", i+1, io.ErrUnexpectedEOF)
		}
		lineNo++

		fields := strings.Fields(line)
		if len(fields) < coefs {
			return nil, fmt.Errorf("line %d: expected %d coefficients", lineNo, coefs)
		}
		for k := 0; k < coefs; k++ {
			if m.SVCoef[k][i], err = strconv.ParseFloat(fields[k], 64); err != nil {
				return nil, fmt.Errorf("line %d: bad coefficient: %w", lineNo, err)
			}
		}

		nodes := make([]Node, 0, len(fields)-coefs)
		for _, tok := range fields[coefs:] {
			idx, val, ok := strings.Cut(tok, ":")
			if !ok {
				return nil, fmt.Errorf("line %d: bad support vector element %q", lineNo, tok)
			}
			index, err := strconv.Atoi(idx)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad index %q", lineNo, idx)
			}
			value, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad value %q", lineNo, val)
			}
			nodes = append(nodes, Node{Index: index, Value: value})
		}
		m.SV[i] = nodes
	}

	return m, nil
}

func (m *Model) validateHeader() error {
	if m.NrClass < 1 {
		return fmt.Errorf("nr_class missing or invalid")
	}
	if m.L < 0 {
		return fmt.Errorf("total_sv is negative")
	}
	if len(m.Rho) == 0 {
		return fmt.Errorf("rho missing")
	}
	if !m.Param.SVMType.singleDecision() {
		if len(m.Label) != m.NrClass {
			return fmt.Errorf("%s model needs %d labels, got %d", m.Param.SVMType, m.NrClass, len(m.Label))
		}
		if len(m.NSV) != m.NrClass {
			return fmt.Errorf("%s model needs nr_sv for %d classes", m.Param.SVMType, m.NrClass)
		}
		total := 0
		for _, n := range m.NSV {
			total += n
		}
		if total != m.L {
			return fmt.Errorf("nr_sv sums to %d, total_sv is %d", total, m.L)
		}
	}
	return nil
}

func pairs(nrClass int) int {
	n := nrClass * (nrClass - 1) / 2
	if n < 1 {
		n = 1
	}
	return n
}

func atoi(args []string, lineNo int) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("line %d: missing value", lineNo)
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("line %d: %w", lineNo, err)
	}
	return v, nil
}

func atof(args []string, lineNo int) (float64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("line %d: missing value", lineNo)
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %w", lineNo, err)
	}
	return v, nil
}

func floats(args []string, n, lineNo int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("line %d: expected %d values, got %d", lineNo, n, len(args))
	}
	out := make([]float64, n)
	for i := range out {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out[i] = v
	}
	return out, nil
}

func ints(args []string, n, lineNo int) ([]int, error) {
	if len(args) < n {
		return nil, fmt.Errorf("line %d: expected %d values, got %d", lineNo, n, len(args))
	}
	out := make([]int, n)
	for i := range out {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out[i] = v
	}
	return out, nil
}
