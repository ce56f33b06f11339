// Package ring provides the fixed-capacity circular store of (x, y) sample
// pairs that backs the JCRev reverb.
//
// A Buffer keeps one slot free to tell empty from full, so a buffer of
// capacity C holds at most C-1 pairs. Pop is only permitted while the buffer
// holds exactly C-1 pairs, which turns the queue into a sliding window of the
// last C-1 input/output pairs once it has warmed up:
//
//	b, _ := ring.New(5802)
//	x, y, err := b.PeekBack(113) // pair written 113 steps before head
//	x0, y0, err := b.Pop()       // oldest pair, only once the window is full
//	err = b.Put(in, out)
//
// All statuses are sentinel errors; callers processing audio usually treat
// them as advisory and keep going.
package ring
