package routing

import "testing"

func TestParseQueryRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"a=1",
		"b=2&a=1",
		"a=1&a=2",
		"q=hello+world&x=%26",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			if got := ParseQuery(s).Encode(); got != s {
				t.Errorf("ParseQuery(%q).Encode() = %q", s, got)
			}
		})
	}
}

func TestParseQueryEdgeCases(t *testing.T) {
	q := ParseQuery("?&a&b=&&c=%zz")
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	if v, ok := q.Get("a"); !ok || v != "" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if v, _ := q.Get("c"); v != "%zz" {
		t.Errorf("Get(c) = %q, want literal %%zz", v)
	}
	if got := q.Encode(); got != "a=&b=&c=%25zz" {
		t.Errorf("Encode() = %q", got)
	}
}

func TestQuerySetReplacesFirstAndDropsDuplicates(t *testing.T) {
	q := ParseQuery("a=1&b=2&a=3")
	q.Set("a", "9")
	if got := q.Encode(); got != "a=9&b=2" {
		t.Errorf("Encode() = %q, want a=9&b=2", got)
	}
	q.Set("c", "4")
	if got := q.Encode(); got != "a=9&b=2&c=4" {
		t.Errorf("Encode() = %q, want append", got)
	}
}

func TestQueryDeleteAndSort(t *testing.T) {
	q := ParseQuery("z=1&a=2&m=3&a=1")
	q.Sort()
	if got := q.Encode(); got != "a=2&a=1&m=3&z=1" {
		t.Errorf("sorted = %q (stable order for equal keys)", got)
	}
	q.Delete("a")
	if got := q.Encode(); got != "m=3&z=1" {
		t.Errorf("after Delete = %q", got)
	}
	q.Delete("missing")
	if q.Len() != 2 {
		t.Errorf("Len() = %d", q.Len())
	}
}

func TestQueryFromMapSorted(t *testing.T) {
	q := QueryFromMap(map[string]string{"b": "2", "c": "3", "a": "1"})
	if got := q.Encode(); got != "a=1&b=2&c=3" {
		t.Errorf("Encode() = %q", got)
	}
	if got := QueryFromMap(map[string]string{}).Encode(); got != "" {
		t.Errorf("empty map Encode() = %q", got)
	}
}
