package invoice

import (
	"testing"

	"github.com/Messano/brain-hr-hub/internal/models"
)

func TestTotalsByTaxCategory(t *testing.T) {
	tests := []struct {
		name     string
		totalHT  float64
		category models.TaxCategory
		wantTVA  float64
		wantTTC  float64
	}{
		{"reduced rate", 1000, models.TaxReduced, 100.00, 1100.00},
		{"exempt", 1000, models.TaxExempt, 0.00, 1000.00},
		{"standard rate", 1000, models.TaxStandard, 200.00, 1200.00},
		{"unknown category falls back to standard", 1000, "autre", 200.00, 1200.00},
		{"rounding to two decimals", 33.33, models.TaxReduced, 3.33, 36.66},
		{"zero amount", 0, models.TaxStandard, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tva, ttc := Totals(tt.totalHT, tt.category)
			if tva != tt.wantTVA {
				t.Errorf("TVA = %v, want %v", tva, tt.wantTVA)
			}
			if ttc != tt.wantTTC {
				t.Errorf("TTC = %v, want %v", ttc, tt.wantTTC)
			}
		})
	}
}
