package trace

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LinePrefix marks candidate lines; everything else in a trace is ignored.
const LinePrefix = "BlockStat:"

// maxLineSize bounds a single trace line. Longer lines (other trace rules can
// emit long dumps interleaved with block stats) are dropped and counted as
// skipped.
const maxLineSize = 1 << 20

var vectorComponent = regexp.MustCompile(`-?\d+`)

// Stats summarizes a parse pass.
type Stats struct {
	Lines     int // lines seen
	Records   int // records produced
	Skipped   int // lines without a recognized BlockStat grammar
	Fallbacks int // records whose value failed to parse and got the default
}

// Trace is the immutable result of parsing one decoder trace. It is safe for
// concurrent readers; every accessor returns fresh slices.
type Trace struct {
	records []Record
	stats   Stats
}

// Parse turns trace lines into records, in input order.
func Parse(lines []string) Trace {
	p := &parser{}
	for _, line := range lines {
		p.line(line)
	}
	return p.trace()
}

// ParseReader parses a trace stream line by line. Only read errors fail the
// parse; malformed or overlong lines are skipped.
func ParseReader(r io.Reader) (Trace, error) {
	p := &parser{}
	br := bufio.NewReaderSize(r, 64*1024)
	var (
		buf      []byte
		overlong bool
	)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Trace{}, errors.Wrap(err, "read trace")
		}
		if !overlong {
			buf = append(buf, chunk...)
			if len(buf) > maxLineSize {
				overlong = true
				buf = buf[:0]
			}
		}
		if isPrefix {
			continue
		}
		if overlong {
			p.skip()
			overlong = false
			continue
		}
		p.line(string(buf))
		buf = buf[:0]
	}
	switch {
	case overlong:
		p.skip()
	case len(buf) > 0:
		p.line(string(buf))
	}
	return p.trace(), nil
}

// ParseFile parses the trace at path. A missing file is not an error: it
// yields an empty trace, and callers fall back to zero-valued feature maps.
func ParseFile(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Trace{}, nil
		}
		return Trace{}, errors.Wrapf(err, "open trace %s", path)
	}
	defer f.Close()

	t, err := ParseReader(f)
	if err != nil {
		return Trace{}, errors.Wrapf(err, "parse trace %s", path)
	}
	return t, nil
}

type parser struct {
	records []Record
	stats   Stats
}

func (p *parser) line(line string) {
	p.stats.Lines++
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, LinePrefix) {
		p.stats.Skipped++
		return
	}
	for _, param := range params {
		rec, ok, fallback := param.match(line)
		if !ok {
			continue
		}
		p.records = append(p.records, rec)
		p.stats.Records++
		if fallback {
			p.stats.Fallbacks++
		}
		return
	}
	p.stats.Skipped++
}

func (p *parser) skip() {
	p.stats.Lines++
	p.stats.Skipped++
}

func (p *parser) trace() Trace {
	return Trace{records: p.records, stats: p.stats}
}

// match applies the parameter's grammar. fallback reports that the value
// could not be parsed and the documented default was used instead.
func (param Param) match(line string) (rec Record, ok bool, fallback bool) {
	m := param.pattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false, false
	}
	var ints [5]int
	for i := range ints {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Record{}, false, false
		}
		ints[i] = v
	}
	value, fallback := parseValue(param.Kind, strings.TrimSpace(m[6]))
	return Record{
		FrameIndex: ints[0],
		Rect:       Rect{X: ints[1], Y: ints[2], W: ints[3], H: ints[4]},
		Param:      param.Name,
		Value:      value,
	}, true, fallback
}

// parseValue never fails: malformed numbers degrade to zero values. Values
// beyond the float32 range become ±Inf rather than falling back.
func parseValue(kind Kind, raw string) (Value, bool) {
	switch kind {
	case Scalar:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ScalarValue(0), true
		}
		return ScalarValue(float32(v)), false
	case Vector2D:
		nums := vectorComponent.FindAllString(raw, 2)
		if len(nums) < 2 {
			return VectorValue(0, 0), true
		}
		x, errX := strconv.ParseFloat(nums[0], 64)
		y, errY := strconv.ParseFloat(nums[1], 64)
		if errX != nil || errY != nil {
			return VectorValue(0, 0), true
		}
		return VectorValue(float32(x), float32(y)), false
	}
	return Value{}, true
}

// Records returns a copy of all records in trace order.
func (t Trace) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

func (t Trace) Len() int { return len(t.records) }

func (t Trace) Empty() bool { return len(t.records) == 0 }

func (t Trace) Stats() Stats { return t.stats }

// GroupByFrame buckets records by frame index. Within a frame records are
// ordered top-to-bottom then left-to-right, ties keeping trace order, so the
// painting order (and which overlapping block wins) is deterministic.
func (t Trace) GroupByFrame() map[int][]Record {
	grouped := make(map[int][]Record)
	for _, r := range t.records {
		grouped[r.FrameIndex] = append(grouped[r.FrameIndex], r)
	}
	for _, recs := range grouped {
		sortByPosition(recs)
	}
	return grouped
}

// FrameIndices returns the distinct frame indices in ascending order.
func (t Trace) FrameIndices() []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, r := range t.records {
		if _, ok := seen[r.FrameIndex]; ok {
			continue
		}
		seen[r.FrameIndex] = struct{}{}
		out = append(out, r.FrameIndex)
	}
	sort.Ints(out)
	return out
}

// Frame returns the ordered records of a single frame.
func (t Trace) Frame(frameIndex int) []Record {
	out := make([]Record, 0)
	for _, r := range t.records {
		if r.FrameIndex == frameIndex {
			out = append(out, r)
		}
	}
	sortByPosition(out)
	return out
}

func sortByPosition(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Rect.Y != recs[j].Rect.Y {
			return recs[i].Rect.Y < recs[j].Rect.Y
		}
		return recs[i].Rect.X < recs[j].Rect.X
	})
}
