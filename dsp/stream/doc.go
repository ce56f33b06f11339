// Package stream drives a block processor the way a circular DMA transfer
// does: the capture and playback buffers are split into two halves, the
// half-transfer callback processes the first half while the device fills the
// second, and the transfer-complete callback processes the second half.
//
// Each callback is timed against the real-time budget of one half block
// (BlockSize/2 samples at SampleRate). Overruns are counted, never returned.
package stream
