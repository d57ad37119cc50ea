package trace

import (
	"fmt"
	"regexp"
)

// Kind tags how a parameter's value is shaped and how many channels it emits.
type Kind uint8

const (
	// Scalar values emit one channel named after the parameter.
	Scalar Kind = iota + 1
	// Vector2D values emit two channels suffixed _X and _Y.
	Vector2D
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Vector2D:
		return "vector2d"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Channels reports how many output channels a parameter of this kind fills.
func (k Kind) Channels() int {
	if k == Vector2D {
		return 2
	}
	return 1
}

// Value is a tagged union: a scalar stores its number in X and leaves Y at zero.
type Value struct {
	Kind Kind
	X    float32
	Y    float32
}

func ScalarValue(v float32) Value { return Value{Kind: Scalar, X: v} }

func VectorValue(x, y float32) Value { return Value{Kind: Vector2D, X: x, Y: y} }

func (v Value) String() string {
	if v.Kind == Vector2D {
		return fmt.Sprintf("{%g, %g}", v.X, v.Y)
	}
	return fmt.Sprintf("%g", v.X)
}

// Rect is a block region in luma pixels. It is not validated against the frame.
type Rect struct {
	X, Y, W, H int
}

// Record is one BlockStat line: a statistic for one coding block of one picture.
type Record struct {
	FrameIndex int
	Rect       Rect
	Param      string
	Value      Value
}

// Param describes a recognized trace parameter.
type Param struct {
	Name    string
	Kind    Kind
	pattern *regexp.Regexp
}

// blockStatPattern follows the decoder's trace layout; %s is the parameter name.
const blockStatPattern = `BlockStat: POC (\d+) @\(\s*(\d+),\s*(\d+)\) \[\s*(\d+)x\s*(\d+)\] %s=(.+)`

func newParam(name string, kind Kind) Param {
	return Param{
		Name:    name,
		Kind:    kind,
		pattern: regexp.MustCompile(fmt.Sprintf(blockStatPattern, regexp.QuoteMeta(name))),
	}
}

// params is tried in order; the first match wins.
var params = []Param{
	newParam("QP", Scalar),
	newParam("PredMode", Scalar),
	newParam("Depth", Scalar),
	newParam("MVL0", Vector2D),
	newParam("MVL1", Vector2D),
}

// Params returns the recognized parameters in matching order.
func Params() []Param {
	out := make([]Param, len(params))
	copy(out, params)
	return out
}

// KindOf looks up the kind of a recognized parameter name.
func KindOf(name string) (Kind, bool) {
	for _, p := range params {
		if p.Name == name {
			return p.Kind, true
		}
	}
	return 0, false
}
