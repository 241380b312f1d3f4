// Package phaser toggles traffic-light phases on a randomized cycle and
// publishes each new phase to a blocking queue that waiters consume.
//
// A Scheduler sleeps a random number of cycle units per iteration and
// toggles between Red and Green every GateIterations sleeps. Each toggle is
// pushed to the scheduler's Queue; WaitFor pops phases from that queue until
// the requested one arrives. A Light bundles a scheduler with an identity
// and exposes WaitForGreen for vehicles.
package phaser

// Version is the library version reported by the phaser command.
const Version = "0.1.0"
