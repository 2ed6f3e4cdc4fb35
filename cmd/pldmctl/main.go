// Copyright 2024 The go-pldm Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command pldmctl is a read-only diagnostic tool: it decodes a raw PLDM
// message header and dumps a firmware package's header/component table
// as JSON. It is not a transport daemon or host-side update driver —
// just a thin inspection CLI over the parsing package.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	pldm "github.com/openbmc/go-pldm"
	"github.com/openbmc/go-pldm/fwpkg"
)

func prettyPrint(buf []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, buf, "", "\t"); err != nil {
		log.Println("JSON parse error:", err)
		return string(buf)
	}
	return out.String()
}

func decode(cmd *cobra.Command, args []string) {
	raw, err := hex.DecodeString(args[0])
	if err != nil {
		log.Printf("invalid hex input: %v", err)
		return
	}
	m, err := pldm.NewMsgBuf(3, raw)
	if err != nil {
		log.Printf("buffer too short: %v", err)
		return
	}
	hdr, err := pldm.UnpackHeader(m)
	if err != nil {
		log.Printf("header decode failed: %v", err)
		return
	}
	out, _ := json.Marshal(hdr)
	fmt.Println(prettyPrint(out))
}

func pkginfo(cmd *cobra.Command, args []string) {
	pkg, err := fwpkg.Open(args[0], fwpkg.Options{})
	if err != nil {
		log.Printf("error opening package %s: %v", args[0], err)
		return
	}
	defer pkg.Close()

	out, _ := json.Marshal(struct {
		Header     pldm.PackageHeaderInfo
		Version    string
		Devices    int
		Components []pldm.ComponentImageInfo
		Signed     bool
	}{
		Header:     pkg.HeaderInfo,
		Version:    string(pkg.Version.Data),
		Devices:    len(pkg.Devices),
		Components: pkg.Components,
		Signed:     pkg.Signed,
	})
	fmt.Println(prettyPrint(out))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pldmctl",
		Short: "A PLDM message and firmware-package inspector",
		Long:  "A read-only diagnostic tool over go-pldm's wire codecs and firmware package reader",
	}

	decodeCmd := &cobra.Command{
		Use:   "decode <hex-bytes>",
		Short: "Decode a PLDM message header",
		Args:  cobra.ExactArgs(1),
		Run:   decode,
	}

	pkginfoCmd := &cobra.Command{
		Use:   "pkginfo <path>",
		Short: "Dump a firmware package's header and component table",
		Args:  cobra.ExactArgs(1),
		Run:   pkginfo,
	}

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(pkginfoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
