// Package geo содержит расчёт покрытия тайлами и фильтрацию событий по области.
package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// IncidentLayerRowOffset - сдвиг слоя событий относительно базового слоя карты по оси Y
const IncidentLayerRowOffset = 2

// ErrInvalidZoom возвращается для неположительного уровня масштаба
var ErrInvalidZoom = errors.New("zoom must be positive")

// BBox - прямоугольная область в градусах, min <= max по обеим осям
type BBox struct {
	LatMin float64 `json:"lat_min"`
	LonMin float64 `json:"lon_min"`
	LatMax float64 `json:"lat_max"`
	LonMax float64 `json:"lon_max"`
}

// NewBBox строит область по двум углам в любом порядке
func NewBBox(lat1, lon1, lat2, lon2 float64) BBox {
	b := BBox{LatMin: lat1, LonMin: lon1, LatMax: lat2, LonMax: lon2}
	if b.LatMin > b.LatMax {
		b.LatMin, b.LatMax = b.LatMax, b.LatMin
	}
	if b.LonMin > b.LonMax {
		b.LonMin, b.LonMax = b.LonMax, b.LonMin
	}
	return b
}

// Bound возвращает область как orb.Bound (X - долгота, Y - широта)
func (b BBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.LonMin, b.LatMin},
		Max: orb.Point{b.LonMax, b.LatMax},
	}
}

// Contains проверяет попадание точки в область, границы включительно
func (b BBox) Contains(lat, lon float64) bool {
	return b.Bound().Contains(orb.Point{lon, lat})
}

// TileRange - включительный прямоугольник тайлов одного уровня масштаба
type TileRange struct {
	XMin, XMax uint32
	YMin, YMax uint32
	Z          maptile.Zoom
}

// Count возвращает количество тайлов в прямоугольнике
func (r TileRange) Count() int {
	return int(r.XMax-r.XMin+1) * int(r.YMax-r.YMin+1)
}

// Contains проверяет, входит ли тайл в прямоугольник
func (r TileRange) Contains(t maptile.Tile) bool {
	return t.Z == r.Z && t.X >= r.XMin && t.X <= r.XMax && t.Y >= r.YMin && t.Y <= r.YMax
}

// Tiles перечисляет тайлы по столбцам: сначала x, внутри него y.
// Порядок фиксирован, от него зависит слияние результатов цикла.
func (r TileRange) Tiles() []maptile.Tile {
	tiles := make([]maptile.Tile, 0, r.Count())
	for x := r.XMin; x <= r.XMax; x++ {
		for y := r.YMin; y <= r.YMax; y++ {
			tiles = append(tiles, maptile.New(x, y, r.Z))
		}
	}
	return tiles
}

// TileAt возвращает тайл Web-Mercator, содержащий точку
func TileAt(lat, lon float64, zoom int) maptile.Tile {
	return maptile.At(orb.Point{lon, lat}, maptile.Zoom(zoom))
}

// CoverTiles вычисляет прямоугольник тайлов слоя событий, покрывающий область
func CoverTiles(box BBox, zoom int) (TileRange, error) {
	if zoom <= 0 {
		return TileRange{}, fmt.Errorf("cover tiles: %w: %d", ErrInvalidZoom, zoom)
	}

	lower := TileAt(box.LatMin, box.LonMin, zoom)
	upper := TileAt(box.LatMax, box.LonMax, zoom)

	xMin, xMax := sortedPair(lower.X, upper.X)
	yMin, yMax := sortedPair(lower.Y, upper.Y)

	yMin, yMax = sortedPair(yMin+IncidentLayerRowOffset, yMax+IncidentLayerRowOffset)

	return TileRange{
		XMin: xMin,
		XMax: xMax,
		YMin: yMin,
		YMax: yMax,
		Z:    maptile.Zoom(zoom),
	}, nil
}

func sortedPair(a, b uint32) (uint32, uint32) {
	if a > b {
		return b, a
	}
	return a, b
}
