package pagination

import "testing"

func TestDefaults(t *testing.T) {
	var req PageRequest
	req.Defaults()

	if req.Page != 1 || req.PageSize != 10 {
		t.Errorf("expected page 1 size 10, got page %d size %d", req.Page, req.PageSize)
	}

	explicit := PageRequest{Page: 3, PageSize: 25}
	explicit.Defaults()
	if explicit.Page != 3 || explicit.PageSize != 25 {
		t.Error("expected explicit values to be kept")
	}
}

func TestOffset(t *testing.T) {
	cases := []struct {
		page, size, expected int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
	}
	for _, tc := range cases {
		req := PageRequest{Page: tc.page, PageSize: tc.size}
		if got := req.Offset(); got != tc.expected {
			t.Errorf("page %d size %d: expected offset %d, got %d", tc.page, tc.size, tc.expected, got)
		}
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]int{1, 2, 3}, 2, 10, 25)

	if resp.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", resp.TotalPages)
	}
	if resp.TotalItems != 25 {
		t.Errorf("expected 25 total items, got %d", resp.TotalItems)
	}

	empty := NewPageResponse[int](nil, 1, 10, 0)
	if empty.Data == nil {
		t.Error("expected empty data slice, not nil")
	}
	if empty.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", empty.TotalPages)
	}
}
