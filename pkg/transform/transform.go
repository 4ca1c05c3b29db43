// Package transform implements the world-editing pipeline (L15, §4.16):
// rotate (0/90/180/270 clockwise) → mirror X/Y (in the rotated frame) →
// crop (applied last, in output coordinates). Road masks are
// direction-dependent, so every transform here ends with a mandatory
// RecomputeRoadMasks.
package transform

import "github.com/dshills/procicity/pkg/world"

// Rotation is a clockwise rotation in quarter turns.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Rect is an output-coordinate crop window, [MinX,MaxX) x [MinY,MaxY).
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

// Pipeline is the full rotate→mirror→crop configuration for one transform.
type Pipeline struct {
	Rotate  Rotation
	MirrorX bool
	MirrorY bool
	Crop    *Rect // nil means no crop
}

// Apply runs the pipeline against w and returns a new *world.World; the
// input is never mutated. RecomputeRoadMasks is called once at the end,
// since the low-4-bit adjacency mask is direction-dependent and cannot be
// remapped tile-by-tile during rotation/mirroring.
func Apply(w *world.World, p Pipeline) *world.World {
	rotated := rotate(w, p.Rotate)
	mirrored := mirror(rotated, p.MirrorX, p.MirrorY)
	cropped := crop(mirrored, p.Crop)
	cropped.RecomputeRoadMasks()
	return cropped
}

// rotate returns a new world rotated clockwise by r quarter turns. For
// 90/270 the output width and height are swapped.
func rotate(w *world.World, r Rotation) *world.World {
	switch r {
	case Rotate90:
		out := world.New(w.Height, w.Width, w.Seed)
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				nx, ny := w.Height-1-y, x
				_ = out.Set(nx, ny, w.At(x, y))
			}
		}
		return out
	case Rotate180:
		out := world.New(w.Width, w.Height, w.Seed)
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				nx, ny := w.Width-1-x, w.Height-1-y
				_ = out.Set(nx, ny, w.At(x, y))
			}
		}
		return out
	case Rotate270:
		out := world.New(w.Height, w.Width, w.Seed)
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				nx, ny := y, w.Width-1-x
				_ = out.Set(nx, ny, w.At(x, y))
			}
		}
		return out
	default: // Rotate0
		return w.Clone()
	}
}

// mirror flips the world along X and/or Y in its current (already-rotated)
// frame.
func mirror(w *world.World, mirrorX, mirrorY bool) *world.World {
	if !mirrorX && !mirrorY {
		return w
	}
	out := world.New(w.Width, w.Height, w.Seed)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			sx, sy := x, y
			if mirrorX {
				sx = w.Width - 1 - x
			}
			if mirrorY {
				sy = w.Height - 1 - y
			}
			_ = out.Set(x, y, w.At(sx, sy))
		}
	}
	return out
}

// crop returns the sub-rectangle of w described by rect (in w's current
// coordinate frame), or w unchanged if rect is nil. An out-of-range rect is
// clamped to the valid bounds so the mapping from output to source pixels
// stays a bijection on the output rectangle.
func crop(w *world.World, rect *Rect) *world.World {
	if rect == nil {
		return w
	}
	minX, minY := clampInt(rect.MinX, 0, w.Width), clampInt(rect.MinY, 0, w.Height)
	maxX, maxY := clampInt(rect.MaxX, minX, w.Width), clampInt(rect.MaxY, minY, w.Height)
	width, height := maxX-minX, maxY-minY
	out := world.New(width, height, w.Seed)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			_ = out.Set(x, y, w.At(minX+x, minY+y))
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
