package compose

import (
	"errors"
	"reflect"
	"testing"

	"github.com/brianly1003/breve/internal/domain"
)

func funcPtr(v any) uintptr {
	return reflect.ValueOf(v).Pointer()
}

func TestMixin_ArityErrors(t *testing.T) {
	tests := []struct {
		name   string
		target MethodTable
		source MethodTable
		names  []string
		got    int
	}{
		{"no names", MethodTable{}, MethodTable{"publish": func() {}}, nil, 2},
		{"nil target", nil, MethodTable{}, []string{"publish"}, 2},
		{"nil source", MethodTable{}, nil, []string{"publish"}, 2},
		{"nothing", nil, nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Mixin(tt.target, tt.source, tt.names...)
			if err == nil {
				t.Fatal("Mixin() error = nil, want ArityError")
			}
			if !errors.Is(err, domain.ErrArity) {
				t.Errorf("errors.Is(err, ErrArity) = false for %v", err)
			}
			var arity *domain.ArityError
			if !errors.As(err, &arity) {
				t.Fatalf("error type = %T, want *domain.ArityError", err)
			}
			if arity.Op != "mixin" || arity.Got != tt.got {
				t.Errorf("ArityError = %+v, want op mixin got %d", arity, tt.got)
			}
		})
	}
}

func TestMixin_CopiesOnlyNamed(t *testing.T) {
	publish := func() {}
	subscribe := func() {}
	source := MethodTable{"publish": publish, "subscribe": subscribe}
	target := MethodTable{}

	if err := Mixin(target, source, "publish"); err != nil {
		t.Fatalf("Mixin() error = %v", err)
	}

	if len(target) != 1 {
		t.Fatalf("len(target) = %d, want 1", len(target))
	}
	if funcPtr(target["publish"]) != funcPtr(publish) {
		t.Error("target[publish] is not the source function")
	}
	if _, ok := target["subscribe"]; ok {
		t.Error("subscribe should not be copied")
	}
}

func TestMixin_MissingNameClearsTarget(t *testing.T) {
	target := MethodTable{"close": func() {}}

	if err := Mixin(target, MethodTable{}, "close"); err != nil {
		t.Fatalf("Mixin() error = %v", err)
	}
	if _, ok := target["close"]; ok {
		t.Error("close should be removed when the source lacks it")
	}
}

func TestExtend_NoArguments(t *testing.T) {
	_, err := Extend()
	if !errors.Is(err, domain.ErrArity) {
		t.Fatalf("Extend() error = %v, want ErrArity", err)
	}
}

func TestExtend_ChildAndParent(t *testing.T) {
	parent := NewClass("Parent", MethodTable{"greet": func() string { return "parent" }})
	child := NewClass("Child", nil)

	got, err := Extend(child, parent)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if got != child {
		t.Error("Extend() should return the given child")
	}
	if child.Superclass != parent {
		t.Error("child.Superclass should be parent")
	}

	inst := child.New()
	if !inst.InstanceOf(child) {
		t.Error("instance should be an instance of Child")
	}
	if !inst.InstanceOf(parent) {
		t.Error("instance should be an instance of Parent")
	}
	if parent.New().InstanceOf(child) {
		t.Error("parent instance should not be an instance of Child")
	}
}

func TestExtend_SynthesizesChild(t *testing.T) {
	parent := NewClass("Parent", nil)

	child, err := Extend(parent)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if child == nil || child == parent {
		t.Fatal("Extend(parent) should synthesize a new child")
	}
	if child.Superclass != parent {
		t.Error("child.Superclass should be parent")
	}
	if child.Methods == nil {
		t.Error("synthesized child should have a method table")
	}
}

func TestExtend_Errors(t *testing.T) {
	a := NewClass("A", nil)
	b := NewClass("B", nil)
	if _, err := Extend(b, a); err != nil {
		t.Fatalf("Extend(b, a) error = %v", err)
	}

	if _, err := Extend(a, b); !errors.Is(err, domain.ErrCyclicExtend) {
		t.Errorf("Extend(a, b) error = %v, want ErrCyclicExtend", err)
	}
	if _, err := Extend(a, a); !errors.Is(err, domain.ErrCyclicExtend) {
		t.Errorf("Extend(a, a) error = %v, want ErrCyclicExtend", err)
	}
	if _, err := Extend(a, nil); !errors.Is(err, domain.ErrNilParent) {
		t.Errorf("Extend(a, nil) error = %v, want ErrNilParent", err)
	}
}

func TestLookup_Delegation(t *testing.T) {
	base := NewClass("Base", MethodTable{
		"name":  func() string { return "base" },
		"greet": func() string { return "hello" },
	})
	derived := NewClass("Derived", MethodTable{
		"name": func() string { return "derived" },
	})
	if _, err := Extend(derived, base); err != nil {
		t.Fatalf("Extend() error = %v", err)
	}

	inst := derived.New()

	fn, ok := inst.Lookup("name")
	if !ok {
		t.Fatal("Lookup(name) not found")
	}
	if got := fn.(func() string)(); got != "derived" {
		t.Errorf("name() = %q, want derived", got)
	}

	fn, ok = inst.Lookup("greet")
	if !ok {
		t.Fatal("Lookup(greet) should delegate to the superclass")
	}
	if got := fn.(func() string)(); got != "hello" {
		t.Errorf("greet() = %q, want hello", got)
	}

	super, ok := derived.Superclass.Lookup("name")
	if !ok || super.(func() string)() != "base" {
		t.Error("superclass lookup should return the base method")
	}

	if _, ok := inst.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}
