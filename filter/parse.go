package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidFilter = errors.New("invalid filter")

type Kind string

const (
	Brightness Kind = "brightness"
	Saturate   Kind = "saturate"
	Sepia      Kind = "sepia"
	Grayscale  Kind = "grayscale"
	Contrast   Kind = "contrast"
	HueRotate  Kind = "hue-rotate"
	Blur       Kind = "blur"
)

// Op is one filter function. Amount is a factor (1 == 100%) for the color
// functions, degrees for hue-rotate and pixels for blur.
type Op struct {
	Kind   Kind
	Amount float64
}

// Parse splits a description like "brightness(120%) blur(2px)" into ops.
func Parse(s string) ([]Op, error) {
	var ops []Op
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closing := strings.IndexByte(rest, ')')
		if open <= 0 || closing < open {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, rest)
		}
		op, err := parseOp(strings.TrimSpace(rest[:open]), strings.TrimSpace(rest[open+1:closing]))
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		rest = strings.TrimSpace(rest[closing+1:])
	}
	return ops, nil
}

func parseOp(name, arg string) (Op, error) {
	kind := Kind(name)
	switch kind {
	case Brightness, Saturate, Sepia, Grayscale, Contrast:
		v, err := parseFactor(arg)
		if err != nil {
			return Op{}, fmt.Errorf("%w: %s(%s): %v", ErrInvalidFilter, name, arg, err)
		}
		return Op{Kind: kind, Amount: v}, nil
	case HueRotate:
		v, err := parseUnit(arg, "deg")
		if err != nil {
			return Op{}, fmt.Errorf("%w: %s(%s): %v", ErrInvalidFilter, name, arg, err)
		}
		return Op{Kind: kind, Amount: v}, nil
	case Blur:
		v, err := parseUnit(arg, "px")
		if err != nil {
			return Op{}, fmt.Errorf("%w: %s(%s): %v", ErrInvalidFilter, name, arg, err)
		}
		return Op{Kind: kind, Amount: v}, nil
	default:
		return Op{}, fmt.Errorf("%w: unsupported function %q", ErrInvalidFilter, name)
	}
}

func parseFactor(arg string) (float64, error) {
	if pct, ok := strings.CutSuffix(arg, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		return v / 100, err
	}
	return strconv.ParseFloat(arg, 64)
}

func parseUnit(arg, unit string) (float64, error) {
	v, _ := strings.CutSuffix(arg, unit)
	return strconv.ParseFloat(v, 64)
}
