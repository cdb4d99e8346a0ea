package checked

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/checkedbuilder/internal/platform/errors"
)

type setCall struct {
	field string
	value any
}

func applyAll(t *testing.T, c Chain, calls ...setCall) Chain {
	t.Helper()
	for _, call := range calls {
		next, err := c.Set(call.field, call.value)
		if err != nil {
			t.Fatalf("Set(%q): %v", call.field, err)
		}
		c = next
	}
	return c
}

func TestChainScenarioFullBuild(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	c := applyAll(t, l.Begin(),
		setCall{"enable_logging", "info"},
		setCall{"enable_tracing", false},
		setCall{"host", "localhost"},
		setCall{"port", uint16(8080)},
	)
	got, err := c.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := Assembly{
		Aggregate: "Config",
		Values: []FieldValue{
			{Field: "enable_logging", Value: "info"},
			{Field: "enable_tracing", Value: false},
			{Field: "host", Value: "localhost"},
			{Field: "port", Value: uint16(8080)},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("assembly mismatch (-want +got):\n%s", diff)
	}
	if c.Len() != 4 {
		t.Fatalf("chain length = %d, want 4", c.Len())
	}
	if c.State() != "ConfigBuilderPortState" {
		t.Fatalf("state = %q", c.State())
	}
}

func TestChainScenarioPartialHandOff(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	bound, err := l.Bound("host")
	if err != nil {
		t.Fatalf("Bound: %v", err)
	}
	c := applyAll(t, l.Begin(),
		setCall{"enable_logging", "info"},
		setCall{"enable_tracing", false},
		setCall{"host", "localhost"},
	)

	h, err := bound.Admit(c)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	host, ok := h.Get("host")
	if !ok || host != "localhost" {
		t.Fatalf("host = %v, %v", host, ok)
	}
	h, err = h.Set("port", uint16(8080))
	if err != nil {
		t.Fatalf("Set(port): %v", err)
	}
	got, err := h.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if diff := cmp.Diff(map[string]any{
		"enable_logging": "info",
		"enable_tracing": false,
		"host":           "localhost",
		"port":           uint16(8080),
	}, got.Map()); diff != "" {
		t.Fatalf("assembly mismatch (-want +got):\n%s", diff)
	}
}

func TestChainScenarioOverwrite(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	c := applyAll(t, l.Begin(),
		setCall{"enable_logging", "info"},
		setCall{"enable_tracing", false},
		setCall{"host", "localhost"},
		setCall{"port", uint16(8080)},
		setCall{"port", uint16(9090)},
	)
	got, err := c.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if port, _ := got.Value("port"); port != uint16(9090) {
		t.Fatalf("port = %v, want 9090", port)
	}
	if c.Len() != 5 {
		t.Fatalf("chain length = %d, want 5", c.Len())
	}
}

func TestChainMissingField(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	c := applyAll(t, l.Begin(),
		setCall{"enable_logging", "info"},
		setCall{"enable_tracing", false},
		setCall{"host", "localhost"},
	)
	_, err := c.Build()
	if apperrors.CodeOf(err) != apperrors.CodeMissingField {
		t.Fatalf("expected missing field, got %v", err)
	}
	if field, ok := MissingField(err); !ok || field != "port" {
		t.Fatalf("missing field = %q, %v", field, ok)
	}
}

func TestChainMissingFieldDeclarationOrder(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	c := applyAll(t, l.Begin(),
		setCall{"port", uint16(1)},
		setCall{"enable_logging", "debug"},
	)
	_, err := c.Build()
	if field, ok := MissingField(err); !ok || field != "enable_tracing" {
		t.Fatalf("missing field = %q, %v", field, ok)
	}

	_, err = l.Begin().Build()
	if field, ok := MissingField(err); !ok || field != "enable_logging" {
		t.Fatalf("empty chain missing field = %q, %v", field, ok)
	}
}

func TestChainSetIsPure(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	base := applyAll(t, l.Begin(), setCall{"host", "a"})
	left := applyAll(t, base, setCall{"host", "b"})
	right := applyAll(t, base, setCall{"port", uint16(1)})

	if v, _ := base.Get("host"); v != "a" {
		t.Fatalf("base host = %v", v)
	}
	if v, _ := left.Get("host"); v != "b" {
		t.Fatalf("left host = %v", v)
	}
	if v, _ := right.Get("host"); v != "a" {
		t.Fatalf("right host = %v", v)
	}
	if _, ok := base.Get("port"); ok {
		t.Fatal("base should not see port set on a derived chain")
	}
}

func TestChainOrderIndependence(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	values := map[string]any{
		"enable_logging": "warn",
		"enable_tracing": true,
		"host":           "example.com",
		"port":           uint16(443),
	}
	want := Assembly{
		Aggregate: "Config",
		Values: []FieldValue{
			{Field: "enable_logging", Value: "warn"},
			{Field: "enable_tracing", Value: true},
			{Field: "host", Value: "example.com"},
			{Field: "port", Value: uint16(443)},
		},
	}
	for _, order := range permutations(l.Aggregate.FieldNames()) {
		c := l.Begin()
		for _, field := range order {
			c = applyAll(t, c, setCall{field, values[field]})
		}
		got, err := c.Build()
		if err != nil {
			t.Fatalf("order %v: Build: %v", order, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("order %v: assembly mismatch (-want +got):\n%s", order, diff)
		}
	}
}

func TestChainIdempotentReset(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	c := applyAll(t, l.Begin(), setCall{"host", "x"})
	twice := applyAll(t, c, setCall{"host", "x"})
	a, _ := c.Get("host")
	b, _ := twice.Get("host")
	if a != b {
		t.Fatalf("re-setting the same value changed the read: %v != %v", a, b)
	}
}

func TestChainSatisfies(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	c := l.Begin()
	if !c.Satisfies("ConfigBuilderState") || !c.Satisfies("ConfigBuilderHostSetter") {
		t.Fatal("initial state should satisfy the marker and every setter")
	}
	if c.Satisfies("ConfigBuilderHost") {
		t.Fatal("initial state should not satisfy a getter")
	}
	if c.State() != "ConfigBuilderInitialState" {
		t.Fatalf("initial state name = %q", c.State())
	}
	c = applyAll(t, c, setCall{"host", "h"}, setCall{"port", uint16(1)})
	if !c.Satisfies("ConfigBuilderHost") || !c.Satisfies("ConfigBuilderPort") {
		t.Fatal("expected host and port getters after setting them")
	}
	if c.Satisfies("ConfigBuilderEnableTracing") {
		t.Fatal("enable_tracing getter should stay unsatisfied")
	}
	if c.Satisfies("NotACapability") {
		t.Fatal("unknown capability should not be satisfied")
	}
}

func TestChainErrors(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	if _, err := l.Begin().Set("nope", 1); apperrors.CodeOf(err) != apperrors.CodeUnknownField {
		t.Fatalf("expected unknown field, got %v", err)
	}
	var zero Chain
	if _, err := zero.Set("host", "h"); err == nil {
		t.Fatal("expected error setting on a zero chain")
	}
	if _, err := zero.Build(); err == nil {
		t.Fatal("expected error building a zero chain")
	}
	other := mustGenerate(t, configAggregate())
	if _, err := other.Build(l.Begin()); err == nil {
		t.Fatal("expected error building a chain from another lattice")
	}
	if _, ok := l.Begin().Get("nope"); ok {
		t.Fatal("unknown field should not resolve")
	}
}

func permutations(items []string) [][]string {
	if len(items) <= 1 {
		return [][]string{append([]string(nil), items...)}
	}
	var out [][]string
	for i := range items {
		rest := make([]string, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, tail := range permutations(rest) {
			out = append(out, append([]string{items[i]}, tail...))
		}
	}
	return out
}

func TestChainScenarioLatestLoggingWins(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	c := applyAll(t, l.Begin(),
		setCall{"enable_logging", "Info"},
		setCall{"enable_tracing", false},
		setCall{"host", "localhost"},
		setCall{"port", 8080},
		setCall{"enable_logging", "Debug"},
	)
	got, err := c.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if diff := cmp.Diff(map[string]any{
		"enable_logging": "Debug",
		"enable_tracing": false,
		"host":           "localhost",
		"port":           8080,
	}, got.Map()); diff != "" {
		t.Fatalf("assembly mismatch (-want +got):\n%s", diff)
	}
}

func TestChainScenarioHelperReturnsBoundedChain(t *testing.T) {
	l := mustGenerate(t, configAggregate())
	tracing, err := l.Bound("enable_tracing")
	if err != nil {
		t.Fatalf("Bound: %v", err)
	}
	helper := func(c Chain) (Handle, error) {
		h, err := tracing.Admit(c)
		if err != nil {
			return Handle{}, err
		}
		return h.Set("enable_logging", "Warn")
	}

	h, err := helper(applyAll(t, l.Begin(), setCall{"enable_tracing", true}))
	if err != nil {
		t.Fatalf("helper: %v", err)
	}
	if !h.Readable("enable_tracing") || !h.Readable("enable_logging") {
		t.Fatal("helper result should expose tracing and logging")
	}
	if h.Readable("host") {
		t.Fatal("host is outside the returned bound")
	}
	for _, call := range []setCall{{"host", "localhost"}, {"port", 8080}, {"enable_tracing", false}} {
		if h, err = h.Set(call.field, call.value); err != nil {
			t.Fatalf("Set(%q): %v", call.field, err)
		}
	}
	if tracingValue, _ := h.Get("enable_tracing"); tracingValue != false {
		t.Fatalf("enable_tracing = %v, want false", tracingValue)
	}
	got, err := h.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if logging, _ := got.Value("enable_logging"); logging != "Warn" {
		t.Fatalf("enable_logging = %v, want Warn", logging)
	}
}
