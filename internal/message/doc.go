// Package message decodes and encodes object header messages.
//
// Object headers hold a sequence of typed messages describing a group or a
// dataset. [Parse] decodes the types the container layer needs:
//
//   - Dataspace (0x0001), see [Dataspace]
//   - Link info (0x0002), see [LinkInfo]
//   - Datatype (0x0003), see [Datatype]
//   - Link (0x0006), see [Link]
//   - Data layout (0x0008), see [DataLayout]
//   - Attribute (0x000C), see [Attribute]
//   - Continuation (0x0010), see [Continuation]
//   - Symbol table (0x0011), see [SymbolTable]
//
// Everything else is returned as [Unknown] so that headers written by other
// tools still load.
//
// Messages that can be written implement [Encoder]. Encoded forms are the
// newest version of each message: dataspace v2, datatype v1, layout v3,
// attribute v3 and link v1. Datatypes are limited to little-endian
// fixed-point, IEEE float and null-padded fixed-length strings.
package message
