// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

// FindContainerID is the IBM OEM helper behind pldm_find_container_id:
// it walks repo looking for the entity-association PDR whose container
// entity matches (entityType, instanceNum), skipping any record whose
// handle falls inside [excludeFirst, excludeLast], and returns the
// container ID of that node's first child.
func FindContainerID(repo *Repository, entityType, instanceNum uint16, excludeFirst, excludeLast uint32) (uint16, error) {
	for _, rec := range repo.records {
		if rec.RecordHandle >= excludeFirst && rec.RecordHandle <= excludeLast && excludeLast != 0 {
			continue
		}
		pdr, err := DecodeEntityAssociationPDR(rec.Data)
		if err != nil {
			continue
		}
		if pdr.ContainerEntity.Type != entityType || pdr.ContainerEntity.InstanceNum != instanceNum {
			continue
		}
		if len(pdr.Children) == 0 {
			return 0, ErrNotFound
		}
		return pdr.Children[0].ContainerID, nil
	}
	return 0, ErrNotFound
}
