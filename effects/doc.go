// Package effects holds Streamers that wrap the engine's playback pipeline: capturing it for the
// visualizer, changing its level and folding stereo sources to mono.
package effects
