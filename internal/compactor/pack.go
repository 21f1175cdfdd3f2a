package compactor

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/models"
)

const float32Width = 4

// tupleShape validates that v is an array of equal-arity numeric tuples and
// returns the tuples and their arity.
func tupleShape(path string, v models.Value) (models.Array, int, error) {
	seq, ok := v.(models.Array)
	if !ok {
		return nil, 0, errors.NewTypeMismatchError(path, fmt.Sprintf("expected array of numeric tuples, got %s", kindOf(v)))
	}

	arity := -1
	for i, elem := range seq {
		tuple, ok := elem.(models.Array)
		if !ok {
			return nil, 0, errors.NewTypeMismatchError(
				fmt.Sprintf("%s[%d]", path, i),
				fmt.Sprintf("expected numeric tuple, got %s", kindOf(elem)),
			)
		}
		if arity == -1 {
			arity = len(tuple)
		} else if len(tuple) != arity {
			return nil, 0, errors.NewTypeMismatchError(
				fmt.Sprintf("%s[%d]", path, i),
				fmt.Sprintf("tuple has %d elements, expected %d", len(tuple), arity),
			)
		}
		for j, scalar := range tuple {
			if _, ok := scalar.(models.Number); !ok {
				return nil, 0, errors.NewTypeMismatchError(
					fmt.Sprintf("%s[%d][%d]", path, i, j),
					fmt.Sprintf("expected number, got %s", kindOf(scalar)),
				)
			}
		}
	}
	if arity < 0 {
		arity = 0
	}
	return seq, arity, nil
}

// packBytes flattens tuples into one unsigned byte per scalar.
func packBytes(path string, seq models.Array, arity int) ([]byte, error) {
	buf := make([]byte, 0, len(seq)*arity)
	for i, elem := range seq {
		for j, scalar := range elem.(models.Array) {
			n := scalar.(models.Number)
			iv, err := n.Int64()
			if err != nil {
				if stderrors.Is(err, strconv.ErrRange) {
					return nil, errors.NewRangeError(
						fmt.Sprintf("%s[%d][%d]", path, i, j),
						fmt.Sprintf("%s does not fit in an unsigned byte", n),
					)
				}
				return nil, errors.NewTypeMismatchError(
					fmt.Sprintf("%s[%d][%d]", path, i, j),
					fmt.Sprintf("expected integer, got %s", n),
				)
			}
			if iv < 0 || iv > math.MaxUint8 {
				return nil, errors.NewRangeError(
					fmt.Sprintf("%s[%d][%d]", path, i, j),
					fmt.Sprintf("%d does not fit in an unsigned byte", iv),
				)
			}
			buf = append(buf, byte(iv))
		}
	}
	return buf, nil
}

// packFloats flattens tuples into little-endian IEEE-754 float32 values.
func packFloats(path string, seq models.Array, arity int) ([]byte, error) {
	buf := make([]byte, len(seq)*arity*float32Width)
	off := 0
	for i, elem := range seq {
		for j, scalar := range elem.(models.Array) {
			n := scalar.(models.Number)
			f, err := n.Float64()
			if err != nil {
				return nil, errors.NewRangeError(
					fmt.Sprintf("%s[%d][%d]", path, i, j),
					fmt.Sprintf("%s is not a representable float", n),
				)
			}
			if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
				return nil, errors.NewRangeError(
					fmt.Sprintf("%s[%d][%d]", path, i, j),
					fmt.Sprintf("%s overflows a 32-bit float", n),
				)
			}
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(f)))
			off += float32Width
		}
	}
	return buf, nil
}

func kindOf(v models.Value) string {
	if v == nil {
		return models.KindNull.String()
	}
	return v.Kind().String()
}
