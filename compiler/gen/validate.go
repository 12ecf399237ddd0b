package gen

import (
	"go/token"
	"sort"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/pattern"
)

// Validate computes route specificity, checks the route set for duplicates
// and unreachable routes, and returns the routes in match order. Diagnostics
// for violations land on diags; callers abort emission when errors exist.
func Validate(app *ir.AppModel, diags *ir.Diagnostics) []*ir.RouteDefinition {
	for _, r := range app.Routes {
		r.Specificity = specificityOf(r)
	}
	ordered := make([]*ir.RouteDefinition, len(app.Routes))
	copy(ordered, app.Routes)
	sort.SliceStable(ordered, func(i, j int) bool {
		if c := ordered[i].Specificity.Compare(ordered[j].Specificity); c != 0 {
			return c < 0
		}
		return ordered[i].Order < ordered[j].Order
	})
	checkOverlaps(ordered, diags)
	return ordered
}

// specificityOf derives the ordering vector from the route's segments.
func specificityOf(r *ir.RouteDefinition) ir.Specificity {
	var s ir.Specificity
	for _, seg := range r.Positionals() {
		switch seg.Kind {
		case ir.SegLiteral:
			s.Literals++
		case ir.SegParam:
			if typed(seg) {
				s.TypedParams++
			}
		case ir.SegCatchAll:
			s.CatchAll = true
		}
	}
	for _, opt := range r.Options() {
		if opt.Required {
			s.RequiredOptions++
		}
	}
	return s
}

func typed(seg *ir.SegmentDefinition) bool {
	return seg.Type != "" && seg.Type != pattern.TypeString
}

// checkOverlaps runs the pairwise match-set analysis. Routes are bucketed by
// their leading literal so unrelated command families never get compared;
// routes that open with a parameter or catch-all overlap every bucket.
func checkOverlaps(ordered []*ir.RouteDefinition, diags *ir.Diagnostics) {
	buckets := make(map[string][]int)
	var open []int
	for i, r := range ordered {
		pos := r.Positionals()
		if len(pos) > 0 && pos[0].Kind == ir.SegLiteral {
			for _, w := range literalWords(r, 0, pos[0]) {
				buckets[w] = append(buckets[w], i)
			}
		} else {
			open = append(open, i)
		}
	}
	flagged := make(map[int]bool)
	compare := func(i, j int) {
		// j is the later route in match order.
		if flagged[j] {
			return
		}
		a, b := ordered[j], ordered[i]
		ab := subsetOf(a, b)
		ba := subsetOf(b, a)
		switch {
		case ab && ba:
			flagged[j] = true
			diags.Errorf(ir.CodeDuplicateRoute, sitePos(a.Site),
				"route %q duplicates route %q", a.FullPattern(), b.FullPattern())
		case ab:
			flagged[j] = true
			diags.Errorf(ir.CodeUnreachableRoute, sitePos(a.Site),
				"route %q can never match; every input it accepts is claimed by %q",
				a.FullPattern(), b.FullPattern())
		}
	}
	for _, idxs := range buckets {
		for x := 0; x < len(idxs); x++ {
			for y := x + 1; y < len(idxs); y++ {
				compare(idxs[x], idxs[y])
			}
		}
		for _, o := range open {
			for _, i := range idxs {
				if o < i {
					compare(o, i)
				} else {
					compare(i, o)
				}
			}
		}
	}
	for x := 0; x < len(open); x++ {
		for y := x + 1; y < len(open); y++ {
			compare(open[x], open[y])
		}
	}
}

// subsetOf reports whether every input route a accepts is also accepted by
// route b. Mutual subsets are duplicates; a one-way subset of an
// earlier-matching route is unreachable.
func subsetOf(a, b *ir.RouteDefinition) bool {
	if !positionalSubset(a, b) {
		return false
	}
	bOpts := make(map[string]*ir.SegmentDefinition)
	for _, opt := range b.Options() {
		bOpts[opt.Name] = opt
	}
	// Every option a mentions must be known to b; an input carrying an
	// option b never declared does not match b at all.
	for _, opt := range a.Options() {
		if _, ok := bOpts[opt.Name]; !ok {
			return false
		}
	}
	// Every option b requires must be required by a too, otherwise a
	// accepts inputs that omit it and b rejects them.
	aRequired := make(map[string]bool)
	for _, opt := range a.Options() {
		if opt.Required {
			aRequired[opt.Name] = true
		}
	}
	for _, opt := range b.Options() {
		if opt.Required && !aRequired[opt.Name] {
			return false
		}
	}
	return true
}

// literalWords returns the words a literal slot accepts. Route aliases
// widen the route's own leading word, the slot just after the group prefix.
func literalWords(r *ir.RouteDefinition, idx int, s *ir.SegmentDefinition) []string {
	words := []string{s.Text}
	if idx != len(r.GroupPrefix) {
		return words
	}
	for _, a := range r.Aliases {
		if a != s.Text {
			words = append(words, a)
		}
	}
	return words
}

func wordSubset(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, w := range b {
		set[w] = true
	}
	for _, w := range a {
		if !set[w] {
			return false
		}
	}
	return true
}

// positionalSubset walks both routes' positional lists in lockstep.
func positionalSubset(ra, rb *ir.RouteDefinition) bool {
	a, b := ra.Positionals(), rb.Positionals()
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		as, bs := a[i], b[j]
		if bs.Kind == ir.SegCatchAll {
			// b accepts any remaining tail.
			return true
		}
		if as.Kind == ir.SegCatchAll {
			// a accepts arbitrary tails that b cannot.
			return false
		}
		switch bs.Kind {
		case ir.SegLiteral:
			if as.Kind != ir.SegLiteral {
				return false
			}
			if !wordSubset(literalWords(ra, i, as), literalWords(rb, j, bs)) {
				return false
			}
		case ir.SegParam:
			if as.Kind == ir.SegParam {
				if as.Optional != bs.Optional {
					return false
				}
				// A looser type in a matches words the stricter type
				// in b rejects.
				if typed(bs) && as.Type != bs.Type {
					return false
				}
			}
			// A literal in a always fits a parameter slot in b.
		}
		i++
		j++
	}
	if i < len(a) {
		return len(b) > 0 && b[len(b)-1].Kind == ir.SegCatchAll
	}
	for ; j < len(b); j++ {
		if b[j].Kind != ir.SegCatchAll && !(b[j].Kind == ir.SegParam && b[j].Optional) {
			return false
		}
	}
	return true
}

func sitePos(s ir.CallSite) token.Position {
	return token.Position{Filename: s.File, Line: s.Line, Column: s.Col}
}
