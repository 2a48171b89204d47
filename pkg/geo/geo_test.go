package geo

import (
	"math"
	"testing"
)

func TestNewBoundingBoxIsInverted(t *testing.T) {
	bb := NewBoundingBox()

	if !math.IsInf(bb.MinLat, 1) || !math.IsInf(bb.MinLon, 1) {
		t.Errorf("expected min bounds at +Inf, got %v %v", bb.MinLat, bb.MinLon)
	}
	if !math.IsInf(bb.MaxLat, -1) || !math.IsInf(bb.MaxLon, -1) {
		t.Errorf("expected max bounds at -Inf, got %v %v", bb.MaxLat, bb.MaxLon)
	}
}

func TestExtendWithPoint(t *testing.T) {
	bb := NewBoundingBox()
	bb.ExtendWithPoint(48.85, 2.35)
	bb.ExtendWithPoint(48.86, 2.29)
	bb.ExtendWithPoint(48.82, 2.41)

	if bb.MinLat != 48.82 || bb.MaxLat != 48.86 {
		t.Errorf("unexpected lat bounds: %v %v", bb.MinLat, bb.MaxLat)
	}
	if bb.MinLon != 2.29 || bb.MaxLon != 2.41 {
		t.Errorf("unexpected lon bounds: %v %v", bb.MinLon, bb.MaxLon)
	}
	if got := bb.LatRange(); math.Abs(got-0.04) > 1e-9 {
		t.Errorf("LatRange = %v, want 0.04", got)
	}
	if got := bb.LonRange(); math.Abs(got-0.12) > 1e-9 {
		t.Errorf("LonRange = %v, want 0.12", got)
	}
}

func TestBoundingBoxSinglePoint(t *testing.T) {
	bb := NewBoundingBox()
	bb.ExtendWithPoint(10, 20)

	if bb.LatRange() != 0 || bb.LonRange() != 0 {
		t.Errorf("single point should have zero ranges, got %v %v", bb.LatRange(), bb.LonRange())
	}
}

func TestValidateCoords(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid", 48.85, 2.35, false},
		{"lat too high", 90.1, 0, true},
		{"lat too low", -90.1, 0, true},
		{"lon too high", 0, 180.1, true},
		{"lon too low", 0, -180.1, true},
		{"boundary values", 90, -180, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoords(tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoords(%v, %v) error = %v, wantErr %v", tt.lat, tt.lon, err, tt.wantErr)
			}
		})
	}
}
