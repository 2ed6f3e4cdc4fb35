// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import "testing"

// TestEntityTreeRootContainerIDZero is invariant T1: exactly one root
// with container_id = 0.
func TestEntityTreeRootContainerIDZero(t *testing.T) {
	tree := NewEntityTree()
	root, err := tree.AddEntity(1, nil, AssociationPhysical, AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if root.Entity.ContainerID != 0 {
		t.Fatalf("root container id = %d, want 0", root.Entity.ContainerID)
	}
	if tree.Root() != root {
		t.Fatalf("tree.Root() did not return the added root")
	}
	if _, err := tree.AddEntity(2, nil, AssociationPhysical, AddOptions{}); err == nil {
		t.Fatalf("second root add should fail")
	}
}

// TestEntityTreeInstanceNumbersSequential is invariant T2/T3: same-typed
// siblings are contiguous and numbered 1, 2, 3, ...
func TestEntityTreeInstanceNumbersSequential(t *testing.T) {
	tree := NewEntityTree()
	root, _ := tree.AddEntity(1, nil, AssociationPhysical, AddOptions{})

	a1, err := tree.AddEntity(10, root, AssociationPhysical, AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b1, err := tree.AddEntity(20, root, AssociationPhysical, AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	a2, err := tree.AddEntity(10, root, AssociationPhysical, AddOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if a1.Entity.InstanceNum != 1 || a2.Entity.InstanceNum != 2 {
		t.Fatalf("instance nums = %d, %d; want 1, 2", a1.Entity.InstanceNum, a2.Entity.InstanceNum)
	}
	if b1.Entity.InstanceNum != 1 {
		t.Fatalf("b1 instance num = %d, want 1", b1.Entity.InstanceNum)
	}

	// T2: same-typed siblings must be contiguous - a1, a2 (type 10)
	// should be adjacent in root.Children even though b1 (type 20) was
	// inserted between them chronologically.
	types := make([]uint16, len(root.Children))
	for i, c := range root.Children {
		types[i] = c.Entity.Type
	}
	wantAdjacent := false
	for i := 0; i+1 < len(types); i++ {
		if types[i] == 10 && types[i+1] == 10 {
			wantAdjacent = true
		}
	}
	if !wantAdjacent {
		t.Fatalf("type-10 siblings are not contiguous: %v", types)
	}
}

// TestEntityTreeContainerIDSharedAmongSiblings: children of the same
// parent share one allocated container ID.
func TestEntityTreeContainerIDSharedAmongSiblings(t *testing.T) {
	tree := NewEntityTree()
	root, _ := tree.AddEntity(1, nil, AssociationPhysical, AddOptions{})

	c1, err := tree.AddEntity(10, root, AssociationPhysical, AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	c2, err := tree.AddEntity(20, root, AssociationLogical, AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if c1.Entity.ContainerID == 0 {
		t.Fatalf("c1 container id should be non-zero")
	}
	if c1.Entity.ContainerID != c2.Entity.ContainerID {
		t.Fatalf("siblings have different container ids: %d != %d", c1.Entity.ContainerID, c2.Entity.ContainerID)
	}
}

// TestEntityTreeContainerIDsUniquePerTree is invariant T4.
func TestEntityTreeContainerIDsUniquePerTree(t *testing.T) {
	tree := NewEntityTree()
	root, _ := tree.AddEntity(1, nil, AssociationPhysical, AddOptions{})
	child, _ := tree.AddEntity(10, root, AssociationPhysical, AddOptions{})
	grandchild, err := tree.AddEntity(11, child, AssociationPhysical, AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if child.Entity.ContainerID == grandchild.Entity.ContainerID {
		t.Fatalf("distinct parents allocated the same container id: %d", child.Entity.ContainerID)
	}
	if child.Entity.ContainerID == 0 || grandchild.Entity.ContainerID == 0 {
		t.Fatalf("non-root container ids must be non-zero")
	}
}

func TestEntityTreeExplicitContainerID(t *testing.T) {
	tree := NewEntityTree()
	root, _ := tree.AddEntity(1, nil, AssociationPhysical, AddOptions{})
	child, err := tree.AddEntity(10, root, AssociationPhysical, AddOptions{Explicit: true, ContainerID: 0x1234})
	if err != nil {
		t.Fatal(err)
	}
	if child.Entity.ContainerID != 0x1234 {
		t.Fatalf("container id = %#x, want 0x1234", child.Entity.ContainerID)
	}
}

func TestEntityTreeClone(t *testing.T) {
	tree := NewEntityTree()
	root, _ := tree.AddEntity(1, nil, AssociationPhysical, AddOptions{})
	tree.AddEntity(10, root, AssociationPhysical, AddOptions{})

	clone := tree.Clone()
	clone.AddEntity(20, clone.Root(), AssociationPhysical, AddOptions{})

	if len(tree.Root().Children) != 1 {
		t.Fatalf("mutating the clone mutated the original: %d children", len(tree.Root().Children))
	}
	if len(clone.Root().Children) != 2 {
		t.Fatalf("clone should have 2 children, got %d", len(clone.Root().Children))
	}
}
