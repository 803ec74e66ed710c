// Package layout reads dataset raw data from its storage layout.
//
// Compact data is stored inside the object header and contiguous data in a
// single block of the file. A contiguous dataset whose storage was never
// allocated (undefined address) reads as zeros, which is how empty datasets
// are written. Chunked and virtual layouts return [ErrUnsupported].
//
//	l, err := layout.New(hdr.DataLayout(), hdr.Dataspace(), hdr.Datatype(), r)
//	raw, err := l.Read()
package layout
