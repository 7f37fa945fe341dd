package typetable

import (
	"reflect"
	"testing"
)

type sampleType struct{ X int }

func TestEncodeTableAssignsMonotonicIDs(t *testing.T) {
	tbl := NewEncodeTable()

	t1 := reflect.TypeOf(int(0))
	t2 := reflect.TypeOf(sampleType{})

	if _, ok := tbl.Lookup(t1); ok {
		t.Fatal("expected miss on empty table")
	}

	id1 := tbl.Assign(t1)
	id2 := tbl.Assign(t2)

	if id1 != 0 || id2 != 1 {
		t.Fatalf("got ids %d, %d; want 0, 1", id1, id2)
	}

	if got, ok := tbl.Lookup(t1); !ok || got != 0 {
		t.Fatalf("Lookup(t1) = %d, %v", got, ok)
	}
}

func TestEncodeTableReset(t *testing.T) {
	tbl := NewEncodeTable()
	tbl.Assign(reflect.TypeOf(int(0)))
	tbl.Reset()

	if _, ok := tbl.Lookup(reflect.TypeOf(int(0))); ok {
		t.Fatal("expected empty table after Reset")
	}
}

func TestDecodeTableRoundtrip(t *testing.T) {
	tbl := NewDecodeTable()
	typ := reflect.TypeOf(sampleType{})

	id := tbl.Assign(typ)
	got, ok := tbl.Lookup(id)

	if !ok || got != typ {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestDecompose(t *testing.T) {
	d := Decompose(reflect.TypeOf([]int{}))
	if d.Definition != DefSlice || len(d.Args) != 1 || d.Args[0] != reflect.TypeOf(int(0)) {
		t.Fatalf("unexpected decomposition: %+v", d)
	}

	named := Decompose(reflect.TypeOf(sampleType{}))
	if named.Definition != FullName(reflect.TypeOf(sampleType{})) || len(named.Args) != 0 {
		t.Fatalf("unexpected decomposition for named type: %+v", named)
	}
}

func TestRegisterAndLookupName(t *testing.T) {
	typ := reflect.TypeOf(sampleType{})
	name := FullName(typ) + "#TestRegisterAndLookupName"

	if _, ok := LookupName(name); ok {
		t.Fatal("expected miss before registration")
	}

	RegisterName(name, typ)

	got, ok := LookupName(name)
	if !ok || got != typ {
		t.Fatalf("got %v, %v", got, ok)
	}

	// Re-registering the same name is a no-op, not an error.
	RegisterName(name, typ)
}

func TestPreEncodedSnippetCache(t *testing.T) {
	typ := reflect.TypeOf(sampleType{})

	if _, ok := PreEncodedSnippet(typ); ok {
		// A previous test in this package may have cached it already;
		// either state is acceptable, just exercise the write path.
		_ = ok
	}

	CachePreEncodedSnippet(typ, []byte{1, 2, 3})

	got, ok := PreEncodedSnippet(typ)
	if !ok {
		t.Fatal("expected snippet to be cached")
	}

	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestVersionTolerantResolve(t *testing.T) {
	typ := reflect.TypeOf(sampleType{})
	fqName := "some.pkg.v1.Widget#TestVersionTolerantResolve"
	simple := "Widget#TestVersionTolerantResolve"

	exact := ResolverFunc(func(name string) (reflect.Type, bool) {
		if name == simple {
			return typ, true
		}

		return nil, false
	})

	// Strict mode: exact resolver only matches fqName, not the simple form.
	if _, err := VersionTolerantResolve(fqName, exact, false, nil); err == nil {
		t.Fatal("expected strict-mode resolution to fail")
	}

	got, err := VersionTolerantResolve(fqName, exact, true, nil)
	if err != nil {
		t.Fatalf("tolerant resolve: %v", err)
	}

	if got != typ {
		t.Fatalf("got %v, want %v", got, typ)
	}
}

func TestSimpleName(t *testing.T) {
	if got := simpleName("a.b.C"); got != "C" {
		t.Fatalf("got %q", got)
	}

	if got := simpleName("NoDots"); got != "NoDots" {
		t.Fatalf("got %q", got)
	}
}
