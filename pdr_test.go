// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import "testing"

func makeNumericSensorPDRBytes(handle uint32) []byte {
	hdr := PDRHeader{RecordHandle: handle, Version: 1, Type: PDRTypeNumericSensor, Length: 2}
	buf := make([]byte, 12)
	m, _ := NewMsgBuf(12, buf)
	_ = PackPDRHeader(hdr, m)
	_ = m.InsertUint16(0xAAAA)
	return buf
}

// TestPDRHandleMonotonicity: repeated Add
// calls with recordHandle=0 on a fresh repo produce 1, 2, 3, ...
func TestPDRHandleMonotonicity(t *testing.T) {
	repo := NewRepository()
	for i := 1; i <= 5; i++ {
		handle, err := repo.Add(makeNumericSensorPDRBytes(0), false, 1, 0)
		if err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
		if handle != uint32(i) {
			t.Fatalf("Add #%d: handle = %d, want %d", i, handle, i)
		}
	}
	if repo.RecordCount() != 5 {
		t.Fatalf("RecordCount = %d, want 5", repo.RecordCount())
	}
}

// TestPDRAddExplicitHandleNotRewritten checks the explicit-handle path
// leaves the caller's header alone.
func TestPDRAddExplicitHandleNotRewritten(t *testing.T) {
	repo := NewRepository()
	data := makeNumericSensorPDRBytes(42)
	handle, err := repo.Add(data, false, 1, 42)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if handle != 42 {
		t.Fatalf("handle = %d, want 42", handle)
	}
}

// TestRemoveByTerminusHandleReindexes: three records with
// terminus handles [1, 2, 1]; after removing terminus 1, one record
// remains with outer and in-header handle both 1.
func TestRemoveByTerminusHandleReindexes(t *testing.T) {
	repo := NewRepository()
	if _, err := repo.Add(makeNumericSensorPDRBytes(0), false, 1, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Add(makeNumericSensorPDRBytes(0), false, 2, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Add(makeNumericSensorPDRBytes(0), false, 1, 0); err != nil {
		t.Fatal(err)
	}

	repo.RemoveByTerminusHandle(1)

	if repo.RecordCount() != 1 {
		t.Fatalf("RecordCount = %d, want 1", repo.RecordCount())
	}
	rec := repo.records[0]
	if rec.RecordHandle != 1 {
		t.Fatalf("outer handle = %d, want 1", rec.RecordHandle)
	}
	hdr, err := readPDRHeader(rec.Data)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.RecordHandle != 1 {
		t.Fatalf("in-header handle = %d, want 1", hdr.RecordHandle)
	}
	if rec.TerminusHandle != 2 {
		t.Fatalf("surviving record has terminus handle %d, want 2", rec.TerminusHandle)
	}
}

func TestRemoveRemoteFiltersAndReindexes(t *testing.T) {
	repo := NewRepository()
	repo.Add(makeNumericSensorPDRBytes(0), true, 1, 0)
	repo.Add(makeNumericSensorPDRBytes(0), false, 1, 0)
	repo.Add(makeNumericSensorPDRBytes(0), true, 1, 0)

	repo.RemoveRemote()

	if repo.RecordCount() != 1 {
		t.Fatalf("RecordCount = %d, want 1", repo.RecordCount())
	}
	if repo.records[0].IsRemote {
		t.Fatalf("surviving record is remote, want local")
	}
	if repo.records[0].RecordHandle != 1 {
		t.Fatalf("handle = %d, want 1", repo.records[0].RecordHandle)
	}
}

func TestRemoveByHandleNoReindex(t *testing.T) {
	repo := NewRepository()
	repo.Add(makeNumericSensorPDRBytes(0), false, 1, 0)
	repo.Add(makeNumericSensorPDRBytes(0), false, 1, 0)
	repo.Add(makeNumericSensorPDRBytes(0), false, 1, 0)

	if err := repo.RemoveByHandle(2); err != nil {
		t.Fatal(err)
	}
	if repo.RecordCount() != 2 {
		t.Fatalf("RecordCount = %d, want 2", repo.RecordCount())
	}
	if repo.records[0].RecordHandle != 1 || repo.records[1].RecordHandle != 3 {
		t.Fatalf("handles = %d, %d; want 1, 3", repo.records[0].RecordHandle, repo.records[1].RecordHandle)
	}
}

func TestFindByTypeCursor(t *testing.T) {
	repo := NewRepository()
	repo.Add(makeNumericSensorPDRBytes(0), false, 1, 0)
	repo.Add(makeNumericSensorPDRBytes(0), false, 1, 0)

	rec, ok := repo.FindByType(PDRTypeNumericSensor, 0)
	if !ok || rec.RecordHandle != 1 {
		t.Fatalf("first FindByType = %v, %v; want handle 1", rec, ok)
	}
	rec, ok = repo.FindByType(PDRTypeNumericSensor, rec.RecordHandle)
	if !ok || rec.RecordHandle != 2 {
		t.Fatalf("second FindByType = %v, %v; want handle 2", rec, ok)
	}
	_, ok = repo.FindByType(PDRTypeNumericSensor, rec.RecordHandle)
	if ok {
		t.Fatalf("third FindByType: want no more records")
	}
}

func entityAssocFixture(recordHandle uint32, children ...Entity) EntityAssociationPDR {
	return EntityAssociationPDR{
		Header:          PDRHeader{RecordHandle: recordHandle},
		ContainerID:     7,
		AssociationType: AssociationPhysical,
		ContainerEntity: Entity{Type: 1, InstanceNum: 1, ContainerID: 1},
		Children:        children,
	}
}

// TestEntityAssociationPDRRoundTrip exercises the generic
// round-trip property for the entity-association codec.
func TestEntityAssociationPDRRoundTrip(t *testing.T) {
	pdr := entityAssocFixture(10, Entity{Type: 2, InstanceNum: 1, ContainerID: 2})
	data, err := EncodeEntityAssociationPDR(pdr)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeEntityAssociationPDR(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ContainerID != pdr.ContainerID || got.ContainerEntity != pdr.ContainerEntity ||
		len(got.Children) != 1 || got.Children[0] != pdr.Children[0] {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, pdr)
	}
}

// TestAddContainedEntity: adding a child to an
// association PDR with one existing child produces a 2-child record at
// the same handle, preserving order.
func TestAddContainedEntity(t *testing.T) {
	repo := NewRepository()
	pdr := entityAssocFixture(0, Entity{Type: 2, InstanceNum: 1, ContainerID: 2})
	data, err := EncodeEntityAssociationPDR(pdr)
	if err != nil {
		t.Fatal(err)
	}
	handle, err := repo.Add(data, false, 1, 10)
	if err != nil {
		t.Fatal(err)
	}

	newChild := Entity{Type: 3, InstanceNum: 1, ContainerID: 2}
	if err := repo.AddContainedEntity(handle, newChild); err != nil {
		t.Fatalf("AddContainedEntity: %v", err)
	}

	rec, ok := repo.GetByHandle(handle)
	if !ok {
		t.Fatal("record vanished")
	}
	got, err := DecodeEntityAssociationPDR(rec.Data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(got.Children))
	}
	if got.Children[0] != (Entity{Type: 2, InstanceNum: 1, ContainerID: 2}) || got.Children[1] != newChild {
		t.Fatalf("children = %+v, want [{2,1,2} {3,1,2}]", got.Children)
	}
	if rec.RecordHandle != handle {
		t.Fatalf("record handle changed: %d != %d", rec.RecordHandle, handle)
	}
}

// TestAddThenRemoveContainedEntityIsIdentity:
// remove(add(R, p, e), e) == R.
func TestAddThenRemoveContainedEntityIsIdentity(t *testing.T) {
	repo := NewRepository()
	pdr := entityAssocFixture(0, Entity{Type: 2, InstanceNum: 1, ContainerID: 2})
	data, err := EncodeEntityAssociationPDR(pdr)
	if err != nil {
		t.Fatal(err)
	}
	handle, err := repo.Add(append([]byte(nil), data...), false, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	before, _ := repo.GetByHandle(handle)
	beforeData := append([]byte(nil), before.Data...)

	newChild := Entity{Type: 3, InstanceNum: 1, ContainerID: 2}
	if err := repo.AddContainedEntity(handle, newChild); err != nil {
		t.Fatal(err)
	}
	if err := repo.RemoveContainedEntity(handle, newChild); err != nil {
		t.Fatal(err)
	}

	after, ok := repo.GetByHandle(handle)
	if !ok {
		t.Fatal("record vanished after add+remove")
	}
	if string(after.Data) != string(beforeData) {
		t.Fatalf("add+remove is not identity: got %x, want %x", after.Data, beforeData)
	}
}

// TestRemoveLastContainedEntityDeletesRecord: removing the only child of
// an association PDR deletes the whole record.
func TestRemoveLastContainedEntityDeletesRecord(t *testing.T) {
	repo := NewRepository()
	onlyChild := Entity{Type: 2, InstanceNum: 1, ContainerID: 2}
	pdr := entityAssocFixture(0, onlyChild)
	data, _ := EncodeEntityAssociationPDR(pdr)
	handle, err := repo.Add(data, false, 1, 10)
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.RemoveContainedEntity(handle, onlyChild); err != nil {
		t.Fatalf("RemoveContainedEntity: %v", err)
	}
	if _, ok := repo.GetByHandle(handle); ok {
		t.Fatalf("record should have been deleted")
	}
	if repo.RecordCount() != 0 {
		t.Fatalf("RecordCount = %d, want 0", repo.RecordCount())
	}
}

func TestFRURecordSetRoundTripAndFind(t *testing.T) {
	repo := NewRepository()
	pdr := FRURecordSetPDR{
		TerminusHandle: 1,
		FRURSI:         99,
		Entity:         Entity{Type: 5, InstanceNum: 1, ContainerID: 1},
	}
	data, err := EncodeFRURecordSetPDR(pdr)
	if err != nil {
		t.Fatal(err)
	}
	handle, err := repo.Add(data, false, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	rec, ok := repo.FindByFRURecordSetIdentifier(99)
	if !ok || rec.RecordHandle != handle {
		t.Fatalf("FindByFRURecordSetIdentifier = %v, %v", rec, ok)
	}

	if err := repo.RemoveFRURecordSet(99); err != nil {
		t.Fatalf("RemoveFRURecordSet: %v", err)
	}
	if _, ok := repo.FindByFRURecordSetIdentifier(99); ok {
		t.Fatal("record should be gone")
	}
}

func TestFindByEntityWithExclusion(t *testing.T) {
	repo := NewRepository()
	target := Entity{Type: 9, InstanceNum: 1, ContainerID: 3}
	pdr1 := entityAssocFixture(0, Entity{Type: 2, InstanceNum: 1, ContainerID: 3})
	pdr1.ContainerEntity = target
	data1, _ := EncodeEntityAssociationPDR(pdr1)
	h1, _ := repo.Add(data1, false, 1, 0)

	pdr2 := entityAssocFixture(0, Entity{Type: 2, InstanceNum: 2, ContainerID: 3})
	pdr2.ContainerEntity = target
	data2, _ := EncodeEntityAssociationPDR(pdr2)
	h2, _ := repo.Add(data2, false, 1, 0)

	rec, ok := repo.FindByEntity(target, 0, 0)
	if !ok || rec.RecordHandle != h1 {
		t.Fatalf("FindByEntity(no exclusion) = %v, %v, want handle %d", rec, ok, h1)
	}

	rec, ok = repo.FindByEntity(target, h1, h1)
	if !ok || rec.RecordHandle != h2 {
		t.Fatalf("FindByEntity(excluding %d) = %v, %v, want handle %d", h1, rec, ok, h2)
	}
}

func TestGenerateEntityAssociationPDRs(t *testing.T) {
	tree := NewEntityTree()
	root, err := tree.AddEntity(100, nil, AssociationPhysical, AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.AddEntity(200, root, AssociationPhysical, AddOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := tree.AddEntity(201, root, AssociationLogical, AddOptions{}); err != nil {
		t.Fatal(err)
	}

	repo := NewRepository()
	n, err := GenerateEntityAssociationPDRs(repo, tree, 1, 1)
	if err != nil {
		t.Fatalf("GenerateEntityAssociationPDRs: %v", err)
	}
	if n != 2 {
		t.Fatalf("wrote %d PDRs, want 2 (one physical, one logical)", n)
	}
	if repo.RecordCount() != 2 {
		t.Fatalf("RecordCount = %d, want 2", repo.RecordCount())
	}

	sawPhysical, sawLogical := false, false
	for h := uint32(0); ; {
		rec, ok := repo.GetNextRecord(h)
		if !ok {
			break
		}
		h = rec.RecordHandle
		pdr, err := DecodeEntityAssociationPDR(rec.Data)
		if err != nil {
			t.Fatal(err)
		}
		if pdr.ContainerEntity != root.Entity {
			t.Fatalf("container entity = %+v, want %+v", pdr.ContainerEntity, root.Entity)
		}
		switch pdr.AssociationType {
		case AssociationPhysical:
			sawPhysical = true
			if len(pdr.Children) != 1 || pdr.Children[0].Type != 200 {
				t.Fatalf("physical children = %+v", pdr.Children)
			}
		case AssociationLogical:
			sawLogical = true
			if len(pdr.Children) != 1 || pdr.Children[0].Type != 201 {
				t.Fatalf("logical children = %+v", pdr.Children)
			}
		}
	}
	if !sawPhysical || !sawLogical {
		t.Fatalf("missing association PDR: physical=%v logical=%v", sawPhysical, sawLogical)
	}
}

func TestFindContainerIDReturnsFirstChild(t *testing.T) {
	repo := NewRepository()
	target := Entity{Type: 9, InstanceNum: 1, ContainerID: 0}
	pdr := entityAssocFixture(0,
		Entity{Type: 2, InstanceNum: 1, ContainerID: 5},
		Entity{Type: 2, InstanceNum: 2, ContainerID: 5},
	)
	pdr.ContainerEntity = target
	data, _ := EncodeEntityAssociationPDR(pdr)
	repo.Add(data, false, 1, 0)

	id, err := FindContainerID(repo, 9, 1, 0, 0)
	if err != nil {
		t.Fatalf("FindContainerID: %v", err)
	}
	if id != 5 {
		t.Fatalf("id = %d, want 5", id)
	}
}
