// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pldm

import (
	"encoding/binary"
	"math"
)

// Record is one entry of the PDR repository: a typed record's raw bytes
// plus its repository bookkeeping. The repository never reorders
// records. RemoveByTerminusHandle and RemoveRemote renumber the survivors
// so handles stay contiguous; RemoveByHandle and RemoveFRURecordSet leave
// the other handles as they are.
type Record struct {
	RecordHandle   uint32
	Data           []byte
	IsRemote       bool
	TerminusHandle uint16
}

// Repository is a store of PDR records kept in insertion order; new
// records always go at the tail, and the handles it assigns itself are
// 1-based and sequential. The zero value is an empty
// repository; use NewRepository for clarity at call sites.
type Repository struct {
	records []*Record
}

// NewRepository returns an empty PDR repository.
func NewRepository() *Repository {
	return &Repository{}
}

// RecordCount returns the number of records currently stored.
func (r *Repository) RecordCount() int {
	return len(r.records)
}

// TotalSize returns the sum of every record's byte length.
func (r *Repository) TotalSize() uint32 {
	var total uint32
	for _, rec := range r.records {
		total += uint32(len(rec.Data))
	}
	return total
}

// Add appends a new record. If recordHandle is 0, the repository assigns
// the next contiguous handle (the previous last record's handle + 1, or 1
// for an empty repository) and rewrites the record_handle field embedded
// in data's PDR header so the two always agree; otherwise recordHandle is
// used verbatim and the caller is responsible for its uniqueness.
func (r *Repository) Add(data []byte, isRemote bool, terminusHandle uint16, recordHandle uint32) (uint32, error) {
	if len(data) < 4 {
		return 0, ErrInvalidArgument
	}

	handle := recordHandle
	if handle == 0 {
		if len(r.records) == 0 {
			handle = 1
		} else {
			last := r.records[len(r.records)-1].RecordHandle
			if last == math.MaxUint32 {
				return 0, ErrOverflow
			}
			handle = last + 1
		}
		binary.LittleEndian.PutUint32(data[0:4], handle)
	}

	r.records = append(r.records, &Record{
		RecordHandle:   handle,
		Data:           data,
		IsRemote:       isRemote,
		TerminusHandle: terminusHandle,
	})
	return handle, nil
}

// GetByHandle returns the record with the given outer handle.
func (r *Repository) GetByHandle(handle uint32) (*Record, bool) {
	for _, rec := range r.records {
		if rec.RecordHandle == handle {
			return rec, true
		}
	}
	return nil, false
}

// FindByType returns the first record of the given type whose handle is
// strictly greater than after (pass 0 to start from the beginning).
func (r *Repository) FindByType(t PDRType, after uint32) (*Record, bool) {
	for _, rec := range r.records {
		if rec.RecordHandle <= after {
			continue
		}
		hdr, err := readPDRHeader(rec.Data)
		if err != nil {
			continue
		}
		if hdr.Type == t {
			return rec, true
		}
	}
	return nil, false
}

// FindByFRURecordSetIdentifier returns the FRU record-set PDR whose RSI
// matches rsi.
func (r *Repository) FindByFRURecordSetIdentifier(rsi uint16) (*Record, bool) {
	for _, rec := range r.records {
		hdr, err := readPDRHeader(rec.Data)
		if err != nil || hdr.Type != PDRTypeFRURecordSet {
			continue
		}
		m, err := NewMsgBuf(len(rec.Data), rec.Data)
		if err != nil {
			continue
		}
		if _, err := UnpackPDRHeader(m); err != nil {
			continue
		}
		var gotTH, gotRSI uint16
		if err := m.ExtractUint16(&gotTH); err != nil {
			continue
		}
		if err := m.ExtractUint16(&gotRSI); err != nil {
			continue
		}
		if gotRSI == rsi {
			return rec, true
		}
	}
	return nil, false
}

// FindByEntity returns the first entity-association PDR whose container
// entity matches e, skipping any record whose handle falls inside
// [excludeFirst, excludeLast] (pass 0, 0 to exclude nothing).
func (r *Repository) FindByEntity(e Entity, excludeFirst, excludeLast uint32) (*Record, bool) {
	for _, rec := range r.records {
		if excludeFirst != 0 || excludeLast != 0 {
			if rec.RecordHandle >= excludeFirst && rec.RecordHandle <= excludeLast {
				continue
			}
		}
		pdr, err := DecodeEntityAssociationPDR(rec.Data)
		if err != nil {
			continue
		}
		if pdr.ContainerEntity == e {
			return rec, true
		}
	}
	return nil, false
}

// GetNextRecord is the repository walker a host uses to serialise every
// record in handle order. after is the previous call's
// returned handle, or 0 to start from the first record.
func (r *Repository) GetNextRecord(after uint32) (*Record, bool) {
	var best *Record
	for _, rec := range r.records {
		if rec.RecordHandle <= after {
			continue
		}
		if best == nil || rec.RecordHandle < best.RecordHandle {
			best = rec
		}
	}
	return best, best != nil
}

// RemoveByTerminusHandle removes every record owned by the given
// terminus handle and renumbers the survivors 1..N.
func (r *Repository) RemoveByTerminusHandle(th uint16) {
	r.removeWhere(func(rec *Record) bool { return rec.TerminusHandle == th })
}

// RemoveRemote removes every record flagged IsRemote and renumbers the
// survivors 1..N.
func (r *Repository) RemoveRemote() {
	r.removeWhere(func(rec *Record) bool { return rec.IsRemote })
}

func (r *Repository) removeWhere(match func(*Record) bool) {
	kept := r.records[:0:0]
	for _, rec := range r.records {
		if !match(rec) {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	r.renumber()
}

// renumber reassigns contiguous 1-based handles to every surviving
// record and rewrites each record's embedded header field to match.
func (r *Repository) renumber() {
	for i, rec := range r.records {
		handle := uint32(i + 1)
		rec.RecordHandle = handle
		if len(rec.Data) >= 4 {
			binary.LittleEndian.PutUint32(rec.Data[0:4], handle)
		}
	}
}

// RemoveByHandle unlinks a single record in place without renumbering
// the rest of the repository.
func (r *Repository) RemoveByHandle(handle uint32) error {
	for i, rec := range r.records {
		if rec.RecordHandle == handle {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// RemoveFRURecordSet finds the FRU record-set PDR with the given RSI and
// removes it by handle.
func (r *Repository) RemoveFRURecordSet(rsi uint16) error {
	rec, ok := r.FindByFRURecordSetIdentifier(rsi)
	if !ok {
		return ErrNotFound
	}
	return r.RemoveByHandle(rec.RecordHandle)
}

func readPDRHeader(data []byte) (PDRHeader, error) {
	m, err := NewMsgBuf(len(data), data)
	if err != nil {
		return PDRHeader{}, err
	}
	return UnpackPDRHeader(m)
}

// EntityAssociationPDR is the decoded form of an entity-association PDR
// (DSP0248 §28.4): a container entity plus its direct children of one
// association type.
type EntityAssociationPDR struct {
	Header          PDRHeader
	ContainerID     uint16
	AssociationType AssociationType
	ContainerEntity Entity
	Children        []Entity
}

// EncodeEntityAssociationPDR serialises pdr, filling in Header.Length and
// Header.Type for the caller.
func EncodeEntityAssociationPDR(pdr EntityAssociationPDR) ([]byte, error) {
	if len(pdr.Children) == 0 || len(pdr.Children) > 255 {
		return nil, ErrInvalidArgument
	}
	pdr.Header.Type = PDRTypeEntityAssociation
	pdr.Header.Length = uint16(2 + 1 + 3*2 + 1 + 3*2*len(pdr.Children))

	size := 10 + int(pdr.Header.Length)
	buf := make([]byte, size)
	m, err := NewMsgBuf(size, buf)
	if err != nil {
		return nil, err
	}
	if err := PackPDRHeader(pdr.Header, m); err != nil {
		return nil, err
	}
	if err := m.InsertUint16(pdr.ContainerID); err != nil {
		return nil, err
	}
	if err := m.InsertUint8(uint8(pdr.AssociationType)); err != nil {
		return nil, err
	}
	if err := insertEntity(m, pdr.ContainerEntity); err != nil {
		return nil, err
	}
	if err := m.InsertUint8(uint8(len(pdr.Children))); err != nil {
		return nil, err
	}
	for _, c := range pdr.Children {
		if err := insertEntity(m, c); err != nil {
			return nil, err
		}
	}
	if err := m.CompleteConsumed(); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeEntityAssociationPDR parses the bytes of an entity-association
// PDR record.
func DecodeEntityAssociationPDR(data []byte) (EntityAssociationPDR, error) {
	var pdr EntityAssociationPDR
	m, err := NewMsgBuf(10, data)
	if err != nil {
		return pdr, err
	}
	pdr.Header, err = UnpackPDRHeader(m)
	if err != nil {
		return pdr, err
	}
	if pdr.Header.Type != PDRTypeEntityAssociation {
		return pdr, ErrInvalidArgument
	}
	if err := m.ExtractUint16(&pdr.ContainerID); err != nil {
		return pdr, err
	}
	var assoc uint8
	if err := m.ExtractUint8(&assoc); err != nil {
		return pdr, err
	}
	pdr.AssociationType = AssociationType(assoc)
	if pdr.ContainerEntity, err = extractEntity(m); err != nil {
		return pdr, err
	}
	var count uint8
	if err := m.ExtractUint8(&count); err != nil {
		return pdr, err
	}
	pdr.Children = make([]Entity, count)
	for i := range pdr.Children {
		if pdr.Children[i], err = extractEntity(m); err != nil {
			return pdr, err
		}
	}
	if err := m.Complete(); err != nil {
		return pdr, err
	}
	return pdr, nil
}

func insertEntity(m *MsgBuf, e Entity) error {
	if err := m.InsertUint16(e.Type); err != nil {
		return err
	}
	if err := m.InsertUint16(e.InstanceNum); err != nil {
		return err
	}
	return m.InsertUint16(e.ContainerID)
}

func extractEntity(m *MsgBuf) (Entity, error) {
	var e Entity
	if err := m.ExtractUint16(&e.Type); err != nil {
		return e, err
	}
	if err := m.ExtractUint16(&e.InstanceNum); err != nil {
		return e, err
	}
	err := m.ExtractUint16(&e.ContainerID)
	return e, err
}

// AddContainedEntity adds child to the entity-association PDR currently
// stored at handle, preserving every other field and the record's
// position in the repository: write a new record, splice it in place,
// drop the old. It is an error to add a child already present.
func (r *Repository) AddContainedEntity(handle uint32, child Entity) error {
	rec, ok := r.GetByHandle(handle)
	if !ok {
		return ErrNotFound
	}
	pdr, err := DecodeEntityAssociationPDR(rec.Data)
	if err != nil {
		return err
	}
	for _, c := range pdr.Children {
		if c == child {
			return ErrInvalidArgument
		}
	}
	pdr.Children = append(pdr.Children, child)
	newData, err := EncodeEntityAssociationPDR(pdr)
	if err != nil {
		return err
	}
	rec.Data = newData
	return nil
}

// RemoveContainedEntity removes child from the entity-association PDR at
// handle. If child is the PDR's last remaining child, the whole record is
// deleted instead of being rewritten with zero children.
func (r *Repository) RemoveContainedEntity(handle uint32, child Entity) error {
	rec, ok := r.GetByHandle(handle)
	if !ok {
		return ErrNotFound
	}
	pdr, err := DecodeEntityAssociationPDR(rec.Data)
	if err != nil {
		return err
	}
	idx := -1
	for i, c := range pdr.Children {
		if c == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	pdr.Children = append(pdr.Children[:idx], pdr.Children[idx+1:]...)
	if len(pdr.Children) == 0 {
		return r.RemoveByHandle(handle)
	}
	newData, err := EncodeEntityAssociationPDR(pdr)
	if err != nil {
		return err
	}
	rec.Data = newData
	return nil
}

// GenerateEntityAssociationPDRs walks tree in pre-order and, for every
// node with at least one child, appends one entity-association PDR per
// association type present among its children. nextHandle
// is the first record handle to use; handles are allocated sequentially
// from it. Returns the number of PDRs written.
func GenerateEntityAssociationPDRs(repo *Repository, tree *EntityTree, terminusHandle uint16, nextHandle uint32) (int, error) {
	written := 0
	var walkErr error
	var walk func(n *EntityNode)
	walk = func(n *EntityNode) {
		if n == nil || walkErr != nil {
			return
		}
		if logical := n.LogicalChildren(); len(logical) > 0 {
			if err := emitAssociationPDR(repo, n, AssociationLogical, logical, terminusHandle, &nextHandle); err != nil {
				walkErr = err
				return
			}
			written++
		}
		if physical := n.PhysicalChildren(); len(physical) > 0 {
			if err := emitAssociationPDR(repo, n, AssociationPhysical, physical, terminusHandle, &nextHandle); err != nil {
				walkErr = err
				return
			}
			written++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree.root)
	return written, walkErr
}

func emitAssociationPDR(repo *Repository, n *EntityNode, assoc AssociationType, children []*EntityNode, terminusHandle uint16, nextHandle *uint32) error {
	childEntities := make([]Entity, len(children))
	for i, c := range children {
		childEntities[i] = c.Entity
	}
	pdr := EntityAssociationPDR{
		ContainerID:     n.Entity.ContainerID,
		AssociationType: assoc,
		ContainerEntity: n.Entity,
		Children:        childEntities,
	}
	data, err := EncodeEntityAssociationPDR(pdr)
	if err != nil {
		return err
	}
	handle, err := repo.Add(data, n.IsRemote, terminusHandle, *nextHandle)
	if err != nil {
		return err
	}
	*nextHandle = handle + 1
	return nil
}

// FRURecordSetPDR is the decoded form of a FRU record-set PDR: it maps a
// contained entity to the FRU record set identifier that describes it
// (DSP0257 §28).
type FRURecordSetPDR struct {
	Header         PDRHeader
	TerminusHandle uint16
	FRURSI         uint16
	Entity         Entity
}

// EncodeFRURecordSetPDR serialises pdr.
func EncodeFRURecordSetPDR(pdr FRURecordSetPDR) ([]byte, error) {
	pdr.Header.Type = PDRTypeFRURecordSet
	pdr.Header.Length = 2 + 2 + 3*2
	size := 10 + int(pdr.Header.Length)
	buf := make([]byte, size)
	m, err := NewMsgBuf(size, buf)
	if err != nil {
		return nil, err
	}
	if err := PackPDRHeader(pdr.Header, m); err != nil {
		return nil, err
	}
	if err := m.InsertUint16(pdr.TerminusHandle); err != nil {
		return nil, err
	}
	if err := m.InsertUint16(pdr.FRURSI); err != nil {
		return nil, err
	}
	if err := insertEntity(m, pdr.Entity); err != nil {
		return nil, err
	}
	if err := m.CompleteConsumed(); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeFRURecordSetPDR parses a FRU record-set PDR.
func DecodeFRURecordSetPDR(data []byte) (FRURecordSetPDR, error) {
	var pdr FRURecordSetPDR
	m, err := NewMsgBuf(10, data)
	if err != nil {
		return pdr, err
	}
	pdr.Header, err = UnpackPDRHeader(m)
	if err != nil {
		return pdr, err
	}
	if pdr.Header.Type != PDRTypeFRURecordSet {
		return pdr, ErrInvalidArgument
	}
	if err := m.ExtractUint16(&pdr.TerminusHandle); err != nil {
		return pdr, err
	}
	if err := m.ExtractUint16(&pdr.FRURSI); err != nil {
		return pdr, err
	}
	pdr.Entity, err = extractEntity(m)
	if err != nil {
		return pdr, err
	}
	if err := m.Complete(); err != nil {
		return pdr, err
	}
	return pdr, nil
}
