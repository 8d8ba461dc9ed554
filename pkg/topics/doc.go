// Package topics defines the topic names exchanged between Frigate and its
// dashboard clients, plus the ON/OFF payload convention used by the per-camera
// feature toggle topics.
package topics
