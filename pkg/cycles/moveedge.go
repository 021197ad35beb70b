package cycles

import (
	"github.com/matzehuels/trigen/pkg/errors"
)

// Pattern classifies a cycle relative to the vertices (a, b, c) of a move.
// The names spell the cycle read from a, with '*' standing for one or more
// unmarked vertices.
type Pattern int

const (
	PatternNone        Pattern = iota // no a, not both of b and c
	PatternBC                         // "bc*": no a, b and c consecutive
	PatternBStarC                     // "b*c*": no a, b and c apart
	PatternA                          // "a*"
	PatternAB                         // "ab*"
	PatternAStarB                     // "a*b*"
	PatternAStarC                     // "a*c*"
	PatternABC                        // "abc*"
	PatternABStarC                    // "ab*c*"
	PatternAStarBC                    // "a*bc*"
	PatternAStarBStarC                // "a*b*c*"
)

var patternNames = map[Pattern]string{
	PatternNone:        "-",
	PatternBC:          "bc*",
	PatternBStarC:      "b*c*",
	PatternA:           "a*",
	PatternAB:          "ab*",
	PatternAStarB:      "a*b*",
	PatternAStarC:      "a*c*",
	PatternABC:         "abc*",
	PatternABStarC:     "ab*c*",
	PatternAStarBC:     "a*bc*",
	PatternAStarBStarC: "a*b*c*",
}

var patternsBySignature = func() map[string]Pattern {
	m := make(map[string]Pattern, len(patternNames))
	for p, name := range patternNames {
		if p != PatternNone {
			m[name] = p
		}
	}
	return m
}()

func (p Pattern) String() string {
	if s, ok := patternNames[p]; ok {
		return s
	}
	return "unknown"
}

// oriented is a cycle read in the direction used for classification, with
// the positions of the marked vertices in that reading (-1 when absent).
type oriented struct {
	seq        []int
	ia, ib, ic int
}

// orient reads c starting at a, or at b when a is absent. From a, the
// direction puts b directly after a when they are consecutive and otherwise
// meets b before c.
func orient(c Cycle, a, b, cc int) oriented {
	n := c.Len()
	start, dir := c.Index(a), 1
	if start < 0 {
		start = c.Index(b)
	} else if pb := c.Index(b); pb >= 0 {
		switch pc := c.Index(cc); {
		case pb == (start+n-1)%n:
			dir = -1
		case pb == (start+1)%n:
		case pc >= 0 && (pb-start+n)%n > (pc-start+n)%n:
			dir = -1
		}
	}
	if start < 0 {
		start = 0
	}
	o := oriented{seq: c.walk(start, dir), ia: -1, ib: -1, ic: -1}
	for i, v := range o.seq {
		switch v {
		case a:
			o.ia = i
		case b:
			o.ib = i
		case cc:
			o.ic = i
		}
	}
	return o
}

// signature collapses the oriented reading into marks and '*' runs.
func (o oriented) signature(a, b, c int) string {
	sig := make([]byte, 0, 6)
	for _, v := range o.seq {
		var mark byte
		switch v {
		case a:
			mark = 'a'
		case b:
			mark = 'b'
		case c:
			mark = 'c'
		default:
			mark = '*'
		}
		if mark == '*' && len(sig) > 0 && sig[len(sig)-1] == '*' {
			continue
		}
		sig = append(sig, mark)
	}
	return string(sig)
}

// Classify returns the pattern of c for a move of edge (a,b) to (a,c).
// Cycles in which a is next to c are rejected with IMPOSSIBLE_PATTERN.
func Classify(c Cycle, a, b, cc int) (Pattern, error) {
	p, _, err := classify(c, a, b, cc)
	return p, err
}

func classify(c Cycle, a, b, cc int) (Pattern, oriented, error) {
	o := orient(c, a, b, cc)
	if !c.Contains(a) {
		switch {
		case !c.Contains(b) || !c.Contains(cc):
			return PatternNone, o, nil
		case c.Adjacent(b, cc):
			return PatternBC, o, nil
		default:
			return PatternBStarC, o, nil
		}
	}
	sig := o.signature(a, b, cc)
	p, ok := patternsBySignature[sig]
	if !ok || p == PatternBC || p == PatternBStarC {
		return PatternNone, o, errors.New(errors.ErrCodeImpossiblePattern,
			"move (%d,%d)->(%d,%d): cycle %s reads %q", a, b, a, cc, c, sig)
	}
	return p, o, nil
}

// MoveEdge rewrites s for the replacement of edge (a,b) by (a,c), where
// (b,c) is an edge of the graph. Cycles through the deleted edge are
// rewritten, cycles through a and c gain the chord split, and pairs of
// cycles meeting only at b are stitched into cycles through the new edge.
func MoveEdge(s *Set, a, b, c int) (*Set, error) {
	if a == b || b == c || a == c {
		return nil, errors.New(errors.ErrCodeInvariantViolation,
			"move (%d,%d)->(%d,%d): vertices must be distinct", a, b, a, c)
	}
	out := NewSet()
	var xs, ys []oriented
	for cyc := range s.All() {
		p, o, err := classify(cyc, a, b, c)
		if err != nil {
			return nil, err
		}
		switch p {
		case PatternNone, PatternA:
			out.Add(cyc)
		case PatternBC, PatternBStarC:
			out.Add(cyc)
			ys = append(ys, o)
		case PatternAStarB:
			out.Add(cyc)
			xs = append(xs, o)
		case PatternAB:
			// a c b ... : route the deleted edge through c.
			seq := append([]int{a, c}, o.seq[1:]...)
			out.Add(canonical(seq))
			xs = append(xs, o)
		case PatternAStarC, PatternAStarBC, PatternAStarBStarC:
			out.Add(cyc)
			out.Add(canonical(o.seq[:o.ic+1]))
			out.Add(canonical(append(o.seq[o.ic:], a)))
		case PatternABC:
			// a b c R... : drop b.
			out.Add(canonical(append([]int{a}, o.seq[2:]...)))
		case PatternABStarC:
			// a b P c Q... : a c Q... and b P c.
			out.Add(canonical(append([]int{a}, o.seq[o.ic:]...)))
			out.Add(canonical(o.seq[1 : o.ic+1]))
		default:
			return nil, errors.New(errors.ErrCodeImpossiblePattern,
				"move (%d,%d)->(%d,%d): unhandled pattern %s", a, b, a, c, p)
		}
	}
	stitch(out, xs, ys, b)
	return out, nil
}

// stitch joins each a..b arc of a cycle through a and b with each b..c arc
// of a cycle through b and c, when the two cycles share only b. The joined
// path is closed by the new edge (c,a). The direct arc a-b is skipped since
// that edge no longer exists.
func stitch(out *Set, xs, ys []oriented, b int) {
	for _, x := range xs {
		xArcs := arcsTo(x.seq, x.ib)
		if x.ib == 1 {
			xArcs = xArcs[1:]
		}
		for _, y := range ys {
			if !meetOnlyAt(x.seq, y.seq, b) {
				continue
			}
			for _, ya := range arcsTo(y.seq, y.ic) {
				for _, xa := range xArcs {
					seq := make([]int, 0, len(xa)+len(ya)-1)
					seq = append(seq, xa...)
					seq = append(seq, ya[1:]...)
					out.Add(canonical(seq))
				}
			}
		}
	}
}

// arcsTo returns the two paths around seq from seq[0] to seq[k]: forward
// first, then backward.
func arcsTo(seq []int, k int) [][]int {
	n := len(seq)
	fwd := append([]int(nil), seq[:k+1]...)
	bwd := make([]int, 0, n-k+1)
	bwd = append(bwd, seq[0])
	for i := n - 1; i >= k; i-- {
		bwd = append(bwd, seq[i])
	}
	return [][]int{fwd, bwd}
}

func meetOnlyAt(x, y []int, b int) bool {
	in := make(map[int]struct{}, len(x))
	for _, v := range x {
		in[v] = struct{}{}
	}
	for _, v := range y {
		if _, ok := in[v]; ok && v != b {
			return false
		}
	}
	return true
}
