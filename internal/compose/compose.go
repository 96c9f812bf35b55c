// Package compose provides method-table mixins and class-style delegation.
//
// A MethodTable maps method names to function values. Mixin copies named
// entries between tables. A Class pairs a table with an optional superclass;
// Lookup resolves a name on the class first and then up the superclass chain.
package compose

import (
	"fmt"

	"github.com/brianly1003/breve/internal/domain"
)

// MethodTable maps method names to function values.
type MethodTable map[string]any

// Mixin copies the named entries of source onto target. Names missing from
// source are removed from target. It needs a target, a source and at least
// one name.
func Mixin(target, source MethodTable, names ...string) error {
	if target == nil || source == nil || len(names) == 0 {
		got := len(names)
		if target != nil {
			got++
		}
		if source != nil {
			got++
		}
		return domain.NewArityError("mixin", 3, got)
	}

	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		if fn, ok := source[name]; ok {
			target[name] = fn
		} else {
			delete(target, name)
		}
	}
	return nil
}

// Class is a named method table with an optional superclass.
type Class struct {
	Name       string
	Methods    MethodTable
	Superclass *Class
}

// NewClass creates a class with no superclass.
func NewClass(name string, methods MethodTable) *Class {
	if methods == nil {
		methods = make(MethodTable)
	}
	return &Class{Name: name, Methods: methods}
}

// Extend makes child delegate to parent. Called as Extend(parent) it
// creates an empty child class; called as Extend(child, parent) it links the
// given child. Further arguments are ignored.
func Extend(classes ...*Class) (*Class, error) {
	var child, parent *Class
	switch len(classes) {
	case 0:
		return nil, domain.NewArityError("extend", 1, 0)
	case 1:
		parent = classes[0]
	default:
		child, parent = classes[0], classes[1]
	}

	if parent == nil {
		return nil, fmt.Errorf("extend: %w", domain.ErrNilParent)
	}
	if child == nil {
		child = NewClass("", nil)
	}
	if parent.IsSubclassOf(child) {
		return nil, fmt.Errorf("extend %q from %q: %w", child.Name, parent.Name, domain.ErrCyclicExtend)
	}
	if child.Methods == nil {
		child.Methods = make(MethodTable)
	}

	child.Superclass = parent
	return child, nil
}

// Lookup resolves name on c or its nearest superclass defining it.
func (c *Class) Lookup(name string) (any, bool) {
	for cls := c; cls != nil; cls = cls.Superclass {
		if fn, ok := cls.Methods[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// IsSubclassOf reports whether other is c or one of its ancestors.
func (c *Class) IsSubclassOf(other *Class) bool {
	if other == nil {
		return false
	}
	for cls := c; cls != nil; cls = cls.Superclass {
		if cls == other {
			return true
		}
	}
	return false
}

// New creates an instance of c.
func (c *Class) New() *Instance {
	return &Instance{class: c, Fields: make(map[string]any)}
}

// Instance is a value whose behaviour comes from its class chain.
type Instance struct {
	class  *Class
	Fields map[string]any
}

// Class returns the instance's class.
func (i *Instance) Class() *Class {
	return i.class
}

// InstanceOf reports whether c is the instance's class or an ancestor of it.
func (i *Instance) InstanceOf(c *Class) bool {
	return i.class.IsSubclassOf(c)
}

// Lookup resolves a method through the instance's class chain.
func (i *Instance) Lookup(name string) (any, bool) {
	return i.class.Lookup(name)
}
