// Package dtype converts between raw element bytes and Go values.
//
// Reading accepts fixed-point integers of 1, 2, 4 or 8 bytes in either byte
// order, IEEE floats of 4 or 8 bytes, and fixed-length strings with any
// padding. Destinations are *[]int64, *[]float64 and *[]string:
//
//	var vals []float64
//	err := dtype.Convert(dt, raw, n, &vals)
//
// Writing always produces little-endian int64, float64 or null-padded
// fixed-length strings sized by [StringType].
package dtype
