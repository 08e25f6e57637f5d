package response

import "testing"

func TestCalculatePagination(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		limit      int
		total      int64
		wantPage   int
		wantLimit  int
		wantsPages int
	}{
		{"exact division", 1, 10, 30, 1, 10, 3},
		{"partial last page", 2, 10, 31, 2, 10, 4},
		{"zero total", 1, 10, 0, 1, 10, 0},
		{"page below one clamped", 0, 10, 5, 1, 10, 1},
		{"limit below one defaulted", 1, 0, 25, 1, 10, 3},
		{"limit above cap clamped", 1, 500, 250, 1, 100, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := CalculatePagination(tc.page, tc.limit, tc.total)
			if meta.CurrentPage != tc.wantPage {
				t.Errorf("CurrentPage = %d, want %d", meta.CurrentPage, tc.wantPage)
			}
			if meta.PerPage != tc.wantLimit {
				t.Errorf("PerPage = %d, want %d", meta.PerPage, tc.wantLimit)
			}
			if meta.Total != tc.total {
				t.Errorf("Total = %d, want %d", meta.Total, tc.total)
			}
			if meta.TotalPages != tc.wantsPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tc.wantsPages)
			}
		})
	}
}
