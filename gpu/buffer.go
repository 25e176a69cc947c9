// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "fmt"

// Buffer mirrors one typed array on a device.
//
// The owner bumps a version number whenever the source array is replaced;
// Update uploads only when the version differs from the last upload. A
// Buffer belongs to exactly one owner and is never shared.
type Buffer struct {
	kind    BufferKind
	label   string
	dev     Device
	id      BufferID
	size    int
	version uint64
	synced  bool
}

// NewBuffer creates an empty buffer of the given kind. No device resource
// exists until the first Update with data.
func NewBuffer(kind BufferKind, label string) *Buffer {
	return &Buffer{kind: kind, label: label}
}

// Kind returns the buffer kind.
func (b *Buffer) Kind() BufferKind { return b.kind }

// ID returns the device buffer, or InvalidID when nothing is uploaded.
func (b *Buffer) ID() BufferID { return b.id }

// Size returns the allocated size in bytes.
func (b *Buffer) Size() int { return b.size }

// Version returns the version of the last upload.
func (b *Buffer) Version() uint64 { return b.version }

// Update brings the device copy in line with the source array at version.
// encode is only called when the version changed; a nil or empty result
// releases the device buffer. The buffer is recreated when the byte size
// changes. It reports whether anything was written.
func (b *Buffer) Update(dev Device, version uint64, encode func() []byte) (bool, error) {
	if b.synced && b.version == version && (b.dev == dev || b.id == InvalidID) {
		return false, nil
	}
	if b.dev != nil && b.dev != dev {
		b.Release()
	}
	data := encode()
	if len(data) == 0 {
		b.Release()
		b.version, b.synced = version, true
		return false, nil
	}
	if b.id != InvalidID && b.size != len(data) {
		b.Release()
	}
	if b.id == InvalidID {
		id, err := dev.CreateBuffer(&BufferDesc{Label: b.label, Kind: b.kind, Size: len(data)})
		if err != nil {
			return false, fmt.Errorf("gpu: create %s buffer %q: %w", b.kind, b.label, err)
		}
		b.dev, b.id, b.size = dev, id, len(data)
	}
	if err := dev.WriteBuffer(b.id, data); err != nil {
		return false, fmt.Errorf("gpu: upload %s buffer %q: %w", b.kind, b.label, err)
	}
	b.version, b.synced = version, true
	return true, nil
}

// Invalidate forces the next Update to upload regardless of version.
func (b *Buffer) Invalidate() {
	b.synced = false
}

// Release frees the device buffer. The Buffer can be updated again later.
func (b *Buffer) Release() {
	if b.id != InvalidID && b.dev != nil {
		b.dev.DestroyBuffer(b.id)
	}
	b.id, b.size, b.synced = InvalidID, 0, false
	b.dev = nil
}
