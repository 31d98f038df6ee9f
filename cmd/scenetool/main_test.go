package main

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/nevk-scene/internal/engine/gpubuf"
)

func TestParseVec3(t *testing.T) {
	tests := []struct {
		in      string
		want    mgl32.Vec3
		wantErr bool
	}{
		{"1,2,3", mgl32.Vec3{1, 2, 3}, false},
		{" -1.5, 0 ,10", mgl32.Vec3{-1.5, 0, 10}, false},
		{"1,2", mgl32.Vec3{}, true},
		{"a,b,c", mgl32.Vec3{}, true},
	}
	for _, tt := range tests {
		got, err := parseVec3(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseVec3(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseVec3(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDescribePlan(t *testing.T) {
	p := gpubuf.Plan{
		Instances: gpubuf.Upload{Kind: gpubuf.Patch, Ranges: []gpubuf.Range{{First: 2, Count: 3}}},
	}
	got := describePlan(p)
	for _, want := range []string{"vertices skip", "instances patch [{2 3}]", "materials skip"} {
		if !strings.Contains(got, want) {
			t.Errorf("describePlan = %q, missing %q", got, want)
		}
	}
}
