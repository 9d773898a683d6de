// Package sim provides host-side stand-ins for the hardware a clockless
// controller drives: a cycle-counting Hardware that records the waveform
// instead of toggling a pin, a System that tracks interrupt masking and
// tick compensation, a decoder that turns a recorded waveform back into
// bytes, and a wall-clock Timer for driving real GPIO slowly.
package sim
