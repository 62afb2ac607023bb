package checkin

import (
	"strings"
	"testing"
)

func TestValidateSubmission(t *testing.T) {
	valid := SubmitRequest{Energy: 3, Mood: "Happy", Gratitude: "my morning coffee"}

	tests := []struct {
		name    string
		mutate  func(*SubmitRequest)
		wantErr string
	}{
		{"valid", func(r *SubmitRequest) {}, ""},
		{"energy_low", func(r *SubmitRequest) { r.Energy = 0 }, "energy"},
		{"energy_high", func(r *SubmitRequest) { r.Energy = 6 }, "energy"},
		{"unknown_mood", func(r *SubmitRequest) { r.Mood = "Meh" }, "mood"},
		{"empty_gratitude", func(r *SubmitRequest) { r.Gratitude = "" }, "gratitude"},
		{"blank_gratitude", func(r *SubmitRequest) { r.Gratitude = "   \n" }, "gratitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := ValidateSubmission(&req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not name field %q", err, tt.wantErr)
			}
		})
	}
}
