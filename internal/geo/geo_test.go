package geo

import (
	"math"
	"testing"
)

func TestDistanceMilesIdenticalPoints(t *testing.T) {
	if d := DistanceMiles(39.7392, -104.9903, 39.7392, -104.9903); d != 0 {
		t.Fatalf("expected exactly 0 for identical points, got %v", d)
	}
}

func TestDistanceMilesKnownPair(t *testing.T) {
	// Denver to Colorado Springs, roughly 63 miles.
	d := DistanceMiles(39.7392, -104.9903, 38.8339, -104.8214)
	if d < 55 || d > 70 {
		t.Fatalf("Denver-Colorado Springs distance out of range: %v", d)
	}
}

func TestDistanceMilesAntipodal(t *testing.T) {
	d := DistanceMiles(0, 0, 0, 180)
	if math.IsNaN(d) {
		t.Fatal("antipodal distance must not be NaN")
	}
	// Half the circumference of a 3956-mile-radius sphere.
	want := math.Pi * 3956
	if math.Abs(d-want) > 1 {
		t.Fatalf("antipodal distance = %v, want about %v", d, want)
	}
}

func TestBoundingBoxContainsCenter(t *testing.T) {
	west, south, east, north := BoundingBox(39.7392, -104.9903, 25)
	if !(west < -104.9903 && east > -104.9903) {
		t.Fatalf("center longitude outside box: west=%v east=%v", west, east)
	}
	if !(south < 39.7392 && north > 39.7392) {
		t.Fatalf("center latitude outside box: south=%v north=%v", south, north)
	}
}

func TestBoundingBoxLongitudeWidensWithLatitude(t *testing.T) {
	wEq, _, eEq, _ := BoundingBox(0, 0, 25)
	wHi, _, eHi, _ := BoundingBox(60, 0, 25)
	if (eHi - wHi) <= (eEq - wEq) {
		t.Fatalf("longitude delta should grow with latitude: equator=%v lat60=%v", eEq-wEq, eHi-wHi)
	}
}

func TestBoundingBoxNearPole(t *testing.T) {
	west, _, east, _ := BoundingBox(90, 0, 25)
	if math.IsNaN(west) || math.IsInf(west, 0) || math.IsNaN(east) || math.IsInf(east, 0) {
		t.Fatalf("polar bounding box produced non-finite longitudes: %v %v", west, east)
	}
}

func TestBoundingBoxRounding(t *testing.T) {
	west, south, east, north := BoundingBox(39.123456789, -104.987654321, 10)
	for _, v := range []float64{west, south, east, north} {
		if r := math.Round(v*1e7) / 1e7; r != v {
			t.Fatalf("coordinate %v not rounded to 7 decimals", v)
		}
	}
}
