package region_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tfufuz1/NovaDE-sub008/internal/region"
)

func area(rg region.Region) (n int) {
	for _, r := range rg.Rects() {
		n += r.Dx() * r.Dy()
	}
	return n
}

func TestAddDisjoint(t *testing.T) {
	var rg region.Region
	rg.Add(image.Rect(0, 0, 10, 10))
	rg.Add(image.Rect(20, 0, 30, 10))

	assert.Equal(t, 200, area(rg))
	assert.True(t, rg.Contains(image.Pt(5, 5)))
	assert.True(t, rg.Contains(image.Pt(25, 5)))
	assert.False(t, rg.Contains(image.Pt(15, 5)))
}

func TestAddOverlapping(t *testing.T) {
	var rg region.Region
	rg.Add(image.Rect(0, 0, 10, 10))
	rg.Add(image.Rect(5, 5, 15, 15))

	assert.Equal(t, 175, area(rg), "overlap must not be double counted")
	assert.Equal(t, image.Rect(0, 0, 15, 15), rg.Bounds())
}

func TestAddContained(t *testing.T) {
	var rg region.Region
	rg.Add(image.Rect(0, 0, 10, 10))
	rg.Add(image.Rect(2, 2, 8, 8))

	assert.Equal(t, 100, area(rg))
}

func TestSubtract(t *testing.T) {
	rg := region.Rect(image.Rect(0, 0, 10, 10))
	rg.Subtract(image.Rect(2, 2, 8, 8))

	assert.Equal(t, 64, area(rg))
	assert.False(t, rg.Contains(image.Pt(5, 5)))
	assert.True(t, rg.Contains(image.Pt(1, 1)))
	assert.True(t, rg.Contains(image.Pt(9, 9)))
}

func TestSubtractAll(t *testing.T) {
	rg := region.Rect(image.Rect(0, 0, 10, 10))
	rg.Subtract(image.Rect(-5, -5, 15, 15))

	assert.True(t, rg.Empty())
}

func TestIntersect(t *testing.T) {
	var rg region.Region
	rg.Add(image.Rect(0, 0, 10, 10))
	rg.Add(image.Rect(20, 0, 30, 10))
	rg.Intersect(image.Rect(5, 0, 25, 10))

	assert.Equal(t, 100, area(rg))
	assert.Equal(t, image.Rect(5, 0, 25, 10), rg.Bounds())
}

func TestTranslate(t *testing.T) {
	rg := region.Rect(image.Rect(0, 0, 10, 10))
	rg.Translate(image.Pt(100, 50))

	assert.Equal(t, image.Rect(100, 50, 110, 60), rg.Bounds())
}

func TestCapCollapsesToBounds(t *testing.T) {
	var rg region.Region
	for i := 0; i < 200; i++ {
		rg.Add(image.Rect(i*3, i*7%100, i*3+2, i*7%100+2))
	}

	assert.LessOrEqual(t, len(rg.Rects()), 65)
	assert.True(t, rg.Contains(image.Pt(1, 1)))
}

func TestAddCanonicalizes(t *testing.T) {
	var rg region.Region
	rg.Add(image.Rect(10, 10, 0, 0))

	assert.Equal(t, 100, area(rg))
	assert.True(t, rg.Contains(image.Pt(5, 5)))
}
