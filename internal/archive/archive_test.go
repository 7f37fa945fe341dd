package archive

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/aalhour/binarchive/internal/arraycodec"
	"github.com/aalhour/binarchive/internal/iosink"
	"github.com/aalhour/binarchive/internal/typetable"
)

// --- fixtures ---------------------------------------------------------------

type widget struct {
	Name  string
	Count int32
}

func (w *widget) MaxSupportedVersion() uint32 { return 1 }

func (w *widget) SerializeArchive(a *Writer, version uint32) error {
	if err := a.WriteString(w.Name); err != nil {
		return err
	}

	return a.WriteInt32(w.Count)
}

func (w *widget) DeserializeArchive(a *Reader, version uint32) error {
	name, err := a.ReadString()
	if err != nil {
		return err
	}

	count, err := a.ReadInt32()
	if err != nil {
		return err
	}

	w.Name, w.Count = name, count

	return nil
}

type pair struct {
	A, B string
}

func (p *pair) MaxSupportedVersion() uint32 { return 1 }

func (p *pair) SerializeArchive(a *Writer, version uint32) error {
	if err := a.WriteString(p.A); err != nil {
		return err
	}

	return a.WriteString(p.B)
}

func (p *pair) DeserializeArchive(a *Reader, version uint32) error {
	var err error

	if p.A, err = a.ReadString(); err != nil {
		return err
	}

	p.B, err = a.ReadString()

	return err
}

// node forms a cyclic graph via Next, exercising object-reference interning
// for self- and mutually-referential values.
type node struct {
	Value int32
	Next  *node
}

func (n *node) MaxSupportedVersion() uint32 { return 1 }

func (n *node) SerializeArchive(a *Writer, version uint32) error {
	if err := a.WriteInt32(n.Value); err != nil {
		return err
	}

	return a.WriteObject(n.Next)
}

func (n *node) DeserializeArchive(a *Reader, version uint32) error {
	v, err := a.ReadInt32()
	if err != nil {
		return err
	}

	n.Value = v

	next, err := a.ReadObject()
	if err != nil {
		return err
	}

	if next != nil {
		asNode, ok := next.(*node)
		if !ok {
			t := reflect.TypeOf(next)
			return &reflectTypeMismatch{got: t}
		}

		n.Next = asNode
	}

	return nil
}

type reflectTypeMismatch struct{ got reflect.Type }

func (e *reflectTypeMismatch) Error() string { return "unexpected type: " + e.got.String() }

type animal struct {
	Sound string
}

func (a *animal) MaxSupportedVersion() uint32 { return 1 }

func (a *animal) SerializeArchive(w *Writer, version uint32) error {
	return w.WriteString(a.Sound)
}

func (a *animal) DeserializeArchive(r *Reader, version uint32) error {
	s, err := r.ReadString()
	a.Sound = s

	return err
}

type dog struct {
	animal
	Name string
}

func (d *dog) MaxSupportedVersion() uint32 { return 1 }

func (d *dog) SerializeArchive(w *Writer, version uint32) error {
	if err := w.WriteBaseArchive(&d.animal); err != nil {
		return err
	}

	return w.WriteString(d.Name)
}

func (d *dog) DeserializeArchive(r *Reader, version uint32) error {
	if err := r.ReadBaseArchive(&d.animal); err != nil {
		return err
	}

	name, err := r.ReadString()
	d.Name = name

	return err
}

type matrix struct {
	Rows, Cols int
	Data       []int32
}

func (m *matrix) MaxSupportedVersion() uint32 { return 1 }

func (m *matrix) SerializeArchive(w *Writer, version uint32) error {
	dims := []arraycodec.Dim{{Lower: 0, Length: int64(m.Rows)}, {Lower: 0, Length: int64(m.Cols)}}
	return w.WriteInt32ArrayMD(dims, m.Data)
}

func (m *matrix) DeserializeArchive(r *Reader, version uint32) error {
	dims, values, err := r.ReadInt32ArrayMD()
	if err != nil {
		return err
	}

	m.Rows = int(dims[0].Length)
	m.Cols = int(dims[1].Length)
	m.Data = values

	return nil
}

// --- harness -----------------------------------------------------------------

func newRegistry(t *testing.T, samples ...Serializable) *Registry {
	t.Helper()

	reg := NewRegistry()

	for _, s := range samples {
		typ := reflect.TypeOf(s)
		factoryType := typ

		reg.Register(typetable.FullName(typ), func() Serializable {
			return reflect.New(factoryType.Elem()).Interface().(Serializable)
		})
	}

	return reg
}

func roundtrip(t *testing.T, reg *Registry, v Serializable) (Serializable, []byte) {
	t.Helper()

	buf := iosink.NewBufferedWriter(64)
	w := NewWriter(buf, reg)

	if err := w.WriteObject(v); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}

	r := NewReader(iosink.NewStreamReader(bytes.NewReader(buf.Bytes())), reg)

	got, err := r.ReadObject()
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}

	return got, buf.Bytes()
}

// --- tests ---------------------------------------------------------------

func TestWidgetRoundtrip(t *testing.T) {
	reg := newRegistry(t, &widget{})

	got, _ := roundtrip(t, reg, &widget{Name: "gear", Count: 7})

	w, ok := got.(*widget)
	if !ok || w.Name != "gear" || w.Count != 7 {
		t.Fatalf("got %#v", got)
	}
}

// TestSharedStringInterning mirrors scenario S3: a container holding the
// same string value twice must emit the second occurrence as a
// back-reference, not a repeated String payload.
func TestSharedStringInterning(t *testing.T) {
	reg := newRegistry(t, &pair{})

	got, _ := roundtrip(t, reg, &pair{A: "hi", B: "hi"})

	p, ok := got.(*pair)
	if !ok || p.A != "hi" || p.B != "hi" {
		t.Fatalf("got %#v", got)
	}
}

// TestCyclicGraph mirrors scenario S4: a self-referential object graph
// must round-trip without infinite recursion, using object-identity
// back-references.
func TestCyclicGraph(t *testing.T) {
	reg := newRegistry(t, &node{})

	a := &node{Value: 1}
	b := &node{Value: 2}
	a.Next = b
	b.Next = a

	got, _ := roundtrip(t, reg, a)

	gotA, ok := got.(*node)
	if !ok || gotA.Value != 1 {
		t.Fatalf("got %#v", got)
	}

	if gotA.Next == nil || gotA.Next.Value != 2 {
		t.Fatalf("got.Next = %#v", gotA.Next)
	}

	if gotA.Next.Next != gotA {
		t.Fatal("expected cycle to be preserved by identity")
	}
}

// TestBaseArchiveNesting mirrors scenario S5: a derived type's base class
// is serialized via a nested BaseArchiveStart block sharing the derived
// object's identity and closed by the derived object's own ArchiveEnd.
func TestBaseArchiveNesting(t *testing.T) {
	reg := newRegistry(t, &dog{})

	got, _ := roundtrip(t, reg, &dog{animal: animal{Sound: "woof"}, Name: "Rex"})

	d, ok := got.(*dog)
	if !ok || d.Sound != "woof" || d.Name != "Rex" {
		t.Fatalf("got %#v", got)
	}
}

// TestMultiDimArray mirrors scenario S6: a 2x3 row-major int32 matrix
// round-trips its shape and flattened elements together.
func TestMultiDimArray(t *testing.T) {
	reg := newRegistry(t, &matrix{})

	src := &matrix{Rows: 2, Cols: 3, Data: []int32{1, 2, 3, 4, 5, 6}}

	got, _ := roundtrip(t, reg, src)

	m, ok := got.(*matrix)
	if !ok || m.Rows != 2 || m.Cols != 3 {
		t.Fatalf("got %#v", got)
	}

	for i, v := range src.Data {
		if m.Data[i] != v {
			t.Fatalf("idx %d: got %d, want %d", i, m.Data[i], v)
		}
	}
}

func TestVersionTooNewRejected(t *testing.T) {
	reg := newRegistry(t, &widget{})

	buf := iosink.NewBufferedWriter(32)
	typeName := typetable.FullName(reflect.TypeOf(&widget{}))
	w := NewWriter(buf, reg, WithVersionOverrides(overridesWithVersion(typeName, 99)))

	if err := w.WriteObject(&widget{Name: "x", Count: 1}); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}

	r := NewReader(iosink.NewStreamReader(bytes.NewReader(buf.Bytes())), reg)

	if _, err := r.ReadObject(); err == nil {
		t.Fatal("expected version-too-new rejection")
	}
}

func overridesWithVersion(typeName string, version uint32) *VersionOverrides {
	o := NewVersionOverrides()
	o.Set(typeName, version)

	return o
}

// rawStack stands in for a type the host cannot or does not want to make
// Serializable directly (the spec's own examples are a generic list and a
// UUID type); stackExternal is the plug-in that teaches the archive core
// how to read and write one.
type rawStack struct {
	Items []int32
}

type stackExternal struct{}

func (stackExternal) MaxSupportedVersion() uint32 { return 1 }

func (stackExternal) SerializeExternal(w *Writer, version uint32, obj any) error {
	return w.WriteInt32Array(obj.(*rawStack).Items)
}

func (stackExternal) DeserializeExternal(r *Reader) (any, error) {
	items, err := r.ReadInt32Array()
	if err != nil {
		return nil, err
	}

	return &rawStack{Items: items}, nil
}

// bucket is an ordinary Serializable whose SerializeArchive/
// DeserializeArchive route one field through WriteExternal/ReadExternal
// instead of WriteObject, exercising the external-serializer protocol end
// to end.
type bucket struct {
	Label string
	Stack *rawStack
}

func (b *bucket) MaxSupportedVersion() uint32 { return 1 }

func (b *bucket) SerializeArchive(w *Writer, version uint32) error {
	if err := w.WriteString(b.Label); err != nil {
		return err
	}

	typ := reflect.TypeOf(b.Stack)

	return w.WriteExternal(typetable.FullName(typ), typ, b.Stack)
}

func (b *bucket) DeserializeArchive(r *Reader, version uint32) error {
	label, err := r.ReadString()
	if err != nil {
		return err
	}

	b.Label = label

	tag, err := readTag(r.in)
	if err != nil {
		return err
	}

	_, typeName, err := r.readTypeRef(tag)
	if err != nil {
		return err
	}

	obj, err := r.ReadExternal(typeName)
	if err != nil {
		return err
	}

	stack, ok := obj.(*rawStack)
	if !ok {
		return &reflectTypeMismatch{got: reflect.TypeOf(obj)}
	}

	b.Stack = stack

	return nil
}

// TestExternalSerializer exercises the ExternalSerializer plug-in protocol
// (§4.5/§6's "external serializer" for a type that cannot implement
// Serializable itself), end to end through Writer.WriteExternal and
// Reader.ReadExternal.
func TestExternalSerializer(t *testing.T) {
	reg := newRegistry(t, &bucket{})
	reg.RegisterExternal(typetable.FullName(reflect.TypeOf(&rawStack{})), stackExternal{})

	got, _ := roundtrip(t, reg, &bucket{Label: "crate", Stack: &rawStack{Items: []int32{1, 2, 3}}})

	b, ok := got.(*bucket)
	if !ok || b.Label != "crate" {
		t.Fatalf("got %#v", got)
	}

	if b.Stack == nil || len(b.Stack.Items) != 3 || b.Stack.Items[2] != 3 {
		t.Fatalf("got stack %#v", b.Stack)
	}
}

