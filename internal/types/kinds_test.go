package types

import "testing"

func TestSatisfiesAddable(t *testing.T) {
	if !Satisfies(Int{}, Addable) {
		t.Fatalf("int should satisfy Addable")
	}
	if !Satisfies(String_{}, Addable) {
		t.Fatalf("string should satisfy Addable (concatenation)")
	}
	if Satisfies(Bool{}, Addable) {
		t.Fatalf("bool should not satisfy Addable")
	}
}

func TestSatisfiesVarDynamicErrAlwaysTrue(t *testing.T) {
	for _, k := range AllKinds {
		if !Satisfies(Var{V: 1}, k) {
			t.Fatalf("unresolved Var should satisfy every kind, failed %s", k)
		}
		if !Satisfies(Dynamic{}, k) {
			t.Fatalf("Dynamic should satisfy every kind, failed %s", k)
		}
		if !Satisfies(Err{}, k) {
			t.Fatalf("Err should satisfy every kind, failed %s", k)
		}
	}
}

func TestSatisfiesKLabelAndKRecord(t *testing.T) {
	if !Satisfies(Label{Name: "x"}, KLabel) {
		t.Fatalf("Label should satisfy KLabel")
	}
	if Satisfies(Int{}, KLabel) {
		t.Fatalf("Int should not satisfy KLabel")
	}
	if !Satisfies(EmptyRecord(), KRecord) {
		t.Fatalf("Record should satisfy KRecord")
	}
}

func TestMergeKindsDeduplicates(t *testing.T) {
	merged := MergeKinds([]Kind{Addable, Comparable}, []Kind{Comparable, Equatable})
	if len(merged) != 3 {
		t.Fatalf("expected 3 distinct kinds, got %d: %v", len(merged), merged)
	}
	for _, k := range []Kind{Addable, Comparable, Equatable} {
		if !HasKind(merged, k) {
			t.Fatalf("expected merged set to contain %s", k)
		}
	}
}

func TestKindByName(t *testing.T) {
	k, ok := KindByName("Addable")
	if !ok || k != Addable {
		t.Fatalf("expected KindByName(Addable) to resolve, got %v %v", k, ok)
	}
	if _, ok := KindByName("NotAKind"); ok {
		t.Fatalf("expected unknown kind name to fail")
	}
	// bootstrap grammar spells the record kind "Record", not "KRecord"
	k, ok = KindByName("Record")
	if !ok || k != KRecord {
		t.Fatalf("expected KindByName(Record) to resolve to KRecord, got %v %v", k, ok)
	}
}
