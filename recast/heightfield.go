package recast

import "github.com/gorustyt/gorecast/common"

const (
	/// Defines the number of bits allocated to RcSpan::Smin and RcSpan::Smax.
	RC_SPAN_HEIGHT_BITS = 13
	/// Defines the maximum value for RcSpan::Smin and RcSpan::Smax.
	RC_SPAN_MAX_HEIGHT = (1 << RC_SPAN_HEIGHT_BITS) - 1
	/// Represents the null area.
	/// When a data element is given this value it is considered to no longer be
	/// assigned to a usable area.  (E.g. It is un-walkable.)
	RC_NULL_AREA = 0
	/// The default area id used to indicate a walkable polygon.
	/// This is also the maximum allowed area id, and the only non-null area id
	/// recognized by some steps in the build process.
	RC_WALKABLE_AREA = 63

	// Terminates a span chain.
	RC_NULL_SPAN = -1
)

// RcSpan is one solid interval of a heightfield column.
type RcSpan struct {
	Smin int ///< The lower limit of the span. [Limit: < #Smax]
	Smax int ///< The upper limit of the span. [Limit: <= #RC_SPAN_MAX_HEIGHT]
	Area int ///< The area id assigned to the span.
	Next int ///< Pool index of the next span higher up in the column, or RC_NULL_SPAN.
}

// / A dynamic heightfield representing obstructed space.
// / Spans live in one pool slice and are chained per column through RcSpan.Next.
type RcHeightfield struct {
	Width      int         ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height     int         ///< The height of the heightfield. (Along the z-axis in cell units.)
	Bmin       common.Vec3 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax       common.Vec3 ///< The maximum bounds in world space. [(x, y, z)]
	Cs         float64     ///< The size of each cell. (On the xz-plane.)
	Ch         float64     ///< The height of each cell. (The minimum increment along the y-axis.)
	BorderSize int         ///< Border size in cell units.
	Spans      []int       ///< First span of each column (width*height), RC_NULL_SPAN if empty.

	pool     []RcSpan
	freelist int
}

func RcCreateHeightfield(width, height int, bmin, bmax common.Vec3, cs, ch float64, borderSize int) *RcHeightfield {
	hf := &RcHeightfield{
		Width:      width,
		Height:     height,
		Bmin:       bmin,
		Bmax:       bmax,
		Cs:         cs,
		Ch:         ch,
		BorderSize: borderSize,
		Spans:      make([]int, width*height),
		freelist:   RC_NULL_SPAN,
	}
	common.Fill(hf.Spans, RC_NULL_SPAN)
	return hf
}

// Span returns the pooled span at index i. The pointer is valid until the next insertion.
func (hf *RcHeightfield) Span(i int) *RcSpan {
	return &hf.pool[i]
}

// Column returns a copy of the spans of column (x, z), bottom to top.
func (hf *RcHeightfield) Column(x, z int) []RcSpan {
	var res []RcSpan
	for s := hf.Spans[x+z*hf.Width]; s != RC_NULL_SPAN; s = hf.pool[s].Next {
		res = append(res, hf.pool[s])
	}
	return res
}

// WalkableSpanCount counts the spans that are not RC_NULL_AREA.
func (hf *RcHeightfield) WalkableSpanCount() int {
	n := 0
	for _, first := range hf.Spans {
		for s := first; s != RC_NULL_SPAN; s = hf.pool[s].Next {
			if hf.pool[s].Area != RC_NULL_AREA {
				n++
			}
		}
	}
	return n
}

func (hf *RcHeightfield) allocSpan() int {
	if hf.freelist != RC_NULL_SPAN {
		i := hf.freelist
		hf.freelist = hf.pool[i].Next
		return i
	}
	hf.pool = append(hf.pool, RcSpan{})
	return len(hf.pool) - 1
}

func (hf *RcHeightfield) freeSpan(i int) {
	hf.pool[i] = RcSpan{Next: hf.freelist}
	hf.freelist = i
}

// / Adds a span to the heightfield.  If the new span overlaps existing spans,
// / it will merge the new span with the existing ones.
// / The area ids are merged when the tops are within flagMergeThr of each other;
// / higher area ids win.
func RcAddSpan(hf *RcHeightfield, x, z, smin, smax, area, flagMergeThr int) {
	newMin, newMax, newArea := smin, smax, area

	col := x + z*hf.Width
	prev := RC_NULL_SPAN
	cur := hf.Spans[col]

	for cur != RC_NULL_SPAN {
		c := hf.pool[cur]
		if c.Smin > newMax {
			break
		}
		if c.Smax < newMin {
			prev = cur
			cur = c.Next
			continue
		}
		newMin = min(newMin, c.Smin)
		newMax = max(newMax, c.Smax)
		if common.Abs(newMax-c.Smax) <= flagMergeThr {
			newArea = max(newArea, c.Area)
		}
		next := c.Next
		hf.freeSpan(cur)
		if prev != RC_NULL_SPAN {
			hf.pool[prev].Next = next
		} else {
			hf.Spans[col] = next
		}
		cur = next
	}

	s := hf.allocSpan()
	hf.pool[s] = RcSpan{Smin: newMin, Smax: newMax, Area: newArea}
	if prev != RC_NULL_SPAN {
		hf.pool[s].Next = hf.pool[prev].Next
		hf.pool[prev].Next = s
	} else {
		hf.pool[s].Next = hf.Spans[col]
		hf.Spans[col] = s
	}
}
