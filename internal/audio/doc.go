// Package audio connects PCM16 mono buffers to the host sound card: oto for
// playback of rendered buffers and miniaudio (malgo) for the full-duplex live
// loop. A raw-mode terminal helper lets the live loop stop on a key press.
package audio
