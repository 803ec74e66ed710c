// Package superblock reads and writes the container superblock.
//
// The superblock is the entry point of every file: it records the sizes of
// offsets and lengths, the logical end of file, and the address of the root
// group. [Read] searches for the signature at offsets 0, 512, 1024 and 2048.
//
// Versions 2 and 3 carry a lookup3 checksum, which is verified on read and
// computed by [Superblock.Write]. Versions 0 and 1 are parsed for reading
// only; their root group is a symbol-table group whose B-tree and local heap
// addresses are exposed on the [Superblock].
//
//	sb, err := superblock.Read(f)
//	if errors.Is(err, superblock.ErrNotHDF5) {
//	    // not a container
//	}
//	r := binary.NewReader(f, sb.ReaderConfig())
package superblock
