// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package fwpkg reads a DSP0267 on-disk firmware package: the fixed
// header, the firmware-device identifier records, and the component
// image table, with an optional trailing PKCS#7 signature block.
package fwpkg

import (
	"crypto/x509"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"go.mozilla.org/pkcs7"

	pldm "github.com/openbmc/go-pldm"
)

// minPackageSize is the smallest plausible package: a fixed header with a
// one-byte version string and zero device/component entries.
const minPackageSize = 16 + 1 + 2 + 13 + 2 + 1 + 1 + 1 + 1 + 2

// Options configures Open/OpenBytes.
type Options struct {
	// SkipSignatureVerification makes Open ignore any bytes that follow
	// the component table: Signed stays false and VerifySignature returns
	// pldm.ErrNotFound. Open never parses the trailing PKCS#7 block itself
	// either way; VerifySignature parses it when called.
	SkipSignatureVerification bool
}

// Package is a parsed DSP0267 firmware package. It owns an optional
// memory mapping and is not safe to copy; open an independent Package
// per concurrent reader.
type Package struct {
	HeaderInfo pldm.PackageHeaderInfo
	Version    pldm.VersionString
	Devices    []pldm.FirmwareDeviceIDRecord
	Components []pldm.ComponentImageInfo

	// Signed reports whether a trailing PKCS#7 SignedData block followed
	// the component table. Its absence is not an error.
	Signed bool

	signedData []byte
	data       mmap.MMap
	f          closer
}

type closer interface {
	Close() error
}

// Open memory-maps path and parses it as a firmware package.
func Open(path string, opts Options) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	pkg, err := parse(data, opts)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	pkg.data = data
	pkg.f = f
	return pkg, nil
}

// OpenBytes parses an in-memory firmware package, with no file or mapping
// to release on Close.
func OpenBytes(data []byte, opts Options) (*Package, error) {
	return parse(data, opts)
}

// Close unmaps the package's backing file, if any.
func (p *Package) Close() error {
	if p.data != nil {
		if err := p.data.Unmap(); err != nil {
			return err
		}
	}
	if p.f != nil {
		return p.f.Close()
	}
	return nil
}

// VerifySignature parses the package's trailing PKCS#7 SignedData block
// and verifies it against roots. It is an error to call this on a
// package with Signed == false.
func (p *Package) VerifySignature(roots *x509.CertPool) error {
	if !p.Signed {
		return pldm.ErrNotFound
	}
	p7, err := pkcs7.Parse(p.signedData)
	if err != nil {
		return err
	}
	return p7.VerifyWithChain(roots)
}

func parse(data []byte, opts Options) (*Package, error) {
	if len(data) < minPackageSize {
		return nil, pldm.ErrOverflow
	}

	m, err := pldm.NewMsgBuf(minPackageSize, data)
	if err != nil {
		return nil, err
	}

	pkg := &Package{}
	pkg.HeaderInfo, pkg.Version, err = pldm.DecodePackageHeaderInfo(m)
	if err != nil {
		return nil, err
	}

	var deviceCount uint8
	if err := m.ExtractUint8(&deviceCount); err != nil {
		return nil, err
	}
	pkg.Devices = make([]pldm.FirmwareDeviceIDRecord, deviceCount)
	for i := range pkg.Devices {
		rec, err := pldm.DecodeFirmwareDeviceIDRecord(m, pkg.HeaderInfo.ComponentBitmapBitLength)
		if err != nil {
			return nil, err
		}
		pkg.Devices[i] = rec
	}

	var componentCount uint16
	if err := m.ExtractUint16(&componentCount); err != nil {
		return nil, err
	}
	pkg.Components = make([]pldm.ComponentImageInfo, componentCount)
	for i := range pkg.Components {
		info, err := pldm.DecodeComponentImageInfo(m)
		if err != nil {
			return nil, err
		}
		pkg.Components[i] = info
	}

	rest, err := m.SpanRemaining()
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		if opts.SkipSignatureVerification {
			pkg.Signed = false
		} else {
			pkg.Signed = true
			pkg.signedData = rest
		}
	}

	return pkg, nil
}
