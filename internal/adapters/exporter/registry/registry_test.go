package registry

import "testing"

func TestForFile(t *testing.T) {
	r := Default()
	for name, format := range map[string]string{"out.ts": "ts", "out.CSV": "csv", "out.json": "json"} {
		e, ok := r.ForFile(name)
		if !ok || e.Format() != format {
			t.Fatalf("%s: expected %s exporter", name, format)
		}
	}
	if _, ok := r.Get("xliff"); ok {
		t.Fatal("unexpected xliff exporter")
	}
}
