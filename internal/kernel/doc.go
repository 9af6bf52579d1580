// Package kernel defines the outbound geometry kernel collaborator
// interface and ships a bounding-box reference kernel.
//
// The core never inspects mesh internals. It hands the kernel resolved
// numeric arguments plus the solved sketch, receives back an opaque tagged
// handle, and threads handles through for selection round-tripping. The
// box kernel approximates every solid by its axis-aligned bounding box,
// which is enough to exercise the full rebuild pipeline without a real
// solid modeler behind it.
package kernel
