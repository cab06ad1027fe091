package pagination

import "testing"

func TestLimit(t *testing.T) {
	cases := map[int]int{0: DefaultPageSize, -5: DefaultPageSize, 10: 10, 500: MaxPageSize}
	for size, want := range cases {
		if got := (Pagination{PageSize: size}).Limit(); got != want {
			t.Fatalf("Limit(%d) = %d, want %d", size, got, want)
		}
	}
}

func TestOffsetAndNext(t *testing.T) {
	if got := (Pagination{PageToken: "40"}).Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
	if got := (Pagination{PageToken: "abc"}).Offset(); got != 0 {
		t.Fatalf("expected malformed token to reset, got %d", got)
	}

	info := Next(0, 20, 45)
	if info.NextPageToken != "20" || info.TotalCount != 45 {
		t.Fatalf("unexpected page info %+v", info)
	}
	if last := Next(40, 20, 45); last.NextPageToken != "" {
		t.Fatalf("expected last page, got %+v", last)
	}
}
