package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"tskit/internal/ports"
)

type stubProvider struct{ err error }

func (s stubProvider) Translate(context.Context, ports.Segment, ports.TranslateParams) (ports.TranslateResult, error) {
	return ports.TranslateResult{}, nil
}
func (s stubProvider) ListModels(context.Context) ([]ports.ModelInfo, error) { return nil, nil }
func (s stubProvider) Test(context.Context) error                          { return s.err }

func TestHealthCheck(t *testing.T) {
	r := New()
	down := errors.New("down")
	r.Register("local", stubProvider{})
	r.Register("remote", stubProvider{err: down})
	r.Register("broken", nil)

	if diff := cmp.Diff([]string{"broken", "local", "remote"}, r.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	res := r.HealthCheck(context.Background())
	if res["local"] != nil || !errors.Is(res["remote"], down) || res["broken"] == nil {
		t.Fatalf("unexpected results %v", res)
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("unexpected provider")
	}
}
