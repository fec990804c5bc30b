// Package frames implements the copy kernel that moves runs of multi-channel
// frames between buffers of different lengths.
//
// Buffers are addressed either interleaved (sample for frame f, channel c at
// f*channels+c) or planar (at totalFrames*c+f, where totalFrames is the length
// of the owning buffer in frames). Callers are trusted to pass geometry that
// fits the buffers; Go's slice bounds checks are the only guard.
package frames

// Stack copies frames frames of channels channels from src, starting at frame
// srcStart, into dst, starting at frame dstStart.
//
// srcFrames and dstFrames are the total frame counts of src and dst. They are
// only used to compute channel strides in planar layout.
func Stack[T any](interleaved bool, src, dst []T, channels, srcStart, dstStart, frames, srcFrames, dstFrames int) {
	if frames <= 0 || channels <= 0 {
		return
	}

	if interleaved {
		// Same channel count on both sides, so the run is contiguous.
		copy(dst[dstStart*channels:(dstStart+frames)*channels], src[srcStart*channels:(srcStart+frames)*channels])
		return
	}

	for c := range channels {
		s := srcFrames*c + srcStart
		d := dstFrames*c + dstStart
		copy(dst[d:d+frames], src[s:s+frames])
	}
}

// Index returns the linear position of (frame, channel) in a buffer holding
// totalFrames frames of channels channels.
func Index(interleaved bool, frame, channel, channels, totalFrames int) int {
	if interleaved {
		return frame*channels + channel
	}
	return totalFrames*channel + frame
}
