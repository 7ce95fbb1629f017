package tracker

import (
	"errors"
	"testing"
)

func TestCheckSanity(t *testing.T) {

	params := DefaultParams().Sanity
	straight := LaneModel{Left: LaneCurve{C: 300}, Right: LaneCurve{C: 980}}

	tests := []struct {
		name   string
		model  LaneModel
		prev   *LaneModel
		width  int
		params func(SanityParams) SanityParams
		fail   bool
	}{
		{
			name:  "straight lane",
			model: straight,
		},
		{
			name:  "too narrow",
			model: LaneModel{Left: LaneCurve{C: 600}, Right: LaneCurve{C: 700}},
			fail:  true,
		},
		{
			name:  "too wide",
			model: LaneModel{Left: LaneCurve{C: 50}, Right: LaneCurve{C: 1250}},
			fail:  true,
		},
		{
			// lines converge towards the top of the frame
			name:  "not parallel",
			model: LaneModel{Left: LaneCurve{B: 0.5, C: 0}, Right: LaneCurve{B: -0.5, C: 1400}},
			fail:  true,
		},
		{
			name:  "width jump",
			model: straight,
			prev:  &LaneModel{Left: LaneCurve{C: 400}, Right: LaneCurve{C: 900}},
			fail:  true,
		},
		{
			name:  "small width change",
			model: straight,
			prev:  &LaneModel{Left: LaneCurve{C: 320}, Right: LaneCurve{C: 960}},
		},
		{
			// 340px apart is plausible on a half width mask
			name:  "narrow mask",
			model: LaneModel{Left: LaneCurve{C: 150}, Right: LaneCurve{C: 490}},
			width: 640,
		},
		{
			name:  "too narrow for full width mask",
			model: LaneModel{Left: LaneCurve{C: 150}, Right: LaneCurve{C: 490}},
			fail:  true,
		},
		{
			name:  "unscaled bounds",
			model: LaneModel{Left: LaneCurve{C: 150}, Right: LaneCurve{C: 490}},
			width: 640,
			params: func(p SanityParams) SanityParams {
				p.ReferenceWidth = 0
				return p
			},
			fail: true,
		},
		{
			name:  "disabled",
			model: LaneModel{Left: LaneCurve{C: 600}, Right: LaneCurve{C: 700}},
			params: func(p SanityParams) SanityParams {
				p.Enabled = false
				return p
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params

			if tt.width == 0 {
				tt.width = testWidth
			}

			if tt.params != nil {
				p = tt.params(p)
			}

			err := CheckSanity(tt.model, tt.prev, tt.width, testHeight, p)

			if tt.fail && !errors.Is(err, ErrImplausibleFit) {
				t.Errorf("expected ErrImplausibleFit, got %v", err)
			}

			if !tt.fail && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
