// Package btree walks version 1 group B-trees.
//
// Groups in files with superblock version 0 or 1 keep their members in a
// B-tree (signature "TREE") whose leaves point at symbol table nodes
// ("SNOD"). Each node entry names a member through an offset into the
// group's local heap. Only reading is supported.
package btree
