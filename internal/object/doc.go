// Package object reads and writes object headers.
//
// Every group and dataset is described by an object header: a list of
// messages (see package message) that give its dataspace, datatype, layout,
// attributes and links. [Read] accepts version 1 headers from older files
// and version 2 ("OHDR") headers, whose lookup3 checksum is verified. [Encode]
// always produces version 2 headers.
//
//	hdr, err := object.Read(r, addr)
//	if hdr.IsDataset() {
//	    shape := hdr.Dataspace().Dimensions
//	}
package object
