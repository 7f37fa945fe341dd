package objtable

import "testing"

func TestEncodeTableIdentityAssignsMonotonicIDs(t *testing.T) {
	tbl := NewEncodeTable()

	a, b := uintptr(0x1000), uintptr(0x2000)

	if _, ok := tbl.LookupIdentity(a); ok {
		t.Fatal("expected miss on empty table")
	}

	id1 := tbl.AssignIdentity(a)
	id2 := tbl.AssignIdentity(b)

	if id1 != 0 || id2 != 1 {
		t.Fatalf("got %d, %d; want 0, 1", id1, id2)
	}

	if got, ok := tbl.LookupIdentity(a); !ok || got != 0 {
		t.Fatalf("LookupIdentity(a) = %d, %v", got, ok)
	}
}

func TestEncodeTableStringInterning(t *testing.T) {
	tbl := NewEncodeTable()

	id1 := tbl.AssignString("hi")
	if id2, ok := tbl.LookupString("hi"); !ok || id2 != id1 {
		t.Fatalf("expected second lookup of equal string value to hit, got %d, %v", id2, ok)
	}
}

func TestEncodeTableSharedSequence(t *testing.T) {
	// Mirrors spec scenario S3: ["hi", "hi"] — first occurrence assigns an
	// id, the second occurrence must resolve to the same id via lookup.
	tbl := NewEncodeTable()

	firstID := tbl.AssignString("hi")

	id, ok := tbl.LookupString("hi")
	if !ok {
		t.Fatal("expected hit on second occurrence")
	}

	if id != firstID {
		t.Fatalf("got %d, want %d", id, firstID)
	}

	// The array container itself gets the next id, after the string.
	containerID := tbl.NextID()
	if containerID != firstID+1 {
		t.Fatalf("got %d, want %d", containerID, firstID+1)
	}
}

func TestDecodeTableAssignBeforePopulate(t *testing.T) {
	tbl := NewDecodeTable()

	shell := new(int)
	id := tbl.Assign(shell)

	*shell = 42

	got, ok := tbl.Lookup(id)
	if !ok {
		t.Fatal("expected hit")
	}

	if *(got.(*int)) != 42 {
		t.Fatalf("got %d, want 42", *(got.(*int)))
	}
}

func TestResetClearsState(t *testing.T) {
	enc := NewEncodeTable()
	enc.AssignIdentity(1)
	enc.Reset()

	if _, ok := enc.LookupIdentity(1); ok {
		t.Fatal("expected empty table after Reset")
	}

	if enc.NextID() != 0 {
		t.Fatalf("got %d, want 0", enc.NextID())
	}

	dec := NewDecodeTable()
	dec.Assign("x")
	dec.Reset()

	if _, ok := dec.Lookup(0); ok {
		t.Fatal("expected empty table after Reset")
	}
}
