// Package golden holds the golden-model kernels used to produce bit-exact
// reference outputs for the quantized tensor accelerator.
//
// Every kernel takes a parameter struct and flat integer buffers, validates
// them, and returns a freshly allocated result. Fixed-width wraparound is part
// of the modeled arithmetic and is preserved exactly.
package golden
