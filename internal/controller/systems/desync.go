// Package systems contains the per-tick systems of the locomotion pipeline:
// strategy adapters, orientation synchronizers, one-shot dynamic body setup,
// velocity feedback and the simulation step.
package systems

// Desync counts backend lookups that failed because a handle no longer
// resolves. One counter is shared by all systems of a session, so the ECS
// and the backend drifting apart shows up as a single number.
type Desync struct {
	count uint64
}

func (d *Desync) note() {
	d.count++
}

// Count returns the number of failed backend lookups so far.
func (d *Desync) Count() uint64 {
	return d.count
}
