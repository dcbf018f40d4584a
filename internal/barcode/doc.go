// Package barcode parses the two small grammars used by barcode flavors.
//
// A slice expression selects a half-open range of one sequencing read:
//
//	r1[0:12]   // bases 0..11 of read 1
//	r2[0:9]    // bases 0..8 of read 2
//
// A tag template lays out BAM tags with {name} placeholders filled from the
// extracted barcodes and pipeline-provided fields:
//
//	CR:{cell},CB:{cell},MI:{UMI},RG:{assigned}
//
// [ParseSlice] and [ParseTagTemplate] return errors that unwrap to the
// package sentinels and carry the raw input and byte position.
package barcode
