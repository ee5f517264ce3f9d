// Package waves simulates a damped 2D wave field on a regular grid.
//
// A Grid holds rows×cols samples laid out on the XZ plane and centred at
// the origin. Heights evolve under an explicit finite-difference scheme of
// the damped wave equation, stepped at a fixed timestep that Update
// accumulates towards. Only two height buffers are kept: the next state is
// written over the previous one and the buffers are swapped.
//
// The border ring of cells is never updated. Heights there stay at zero and
// their normals and tangents stay flat, so waves are neither reflected nor
// absorbed at the edges in any modelled way.
//
// A Grid has a single owner. Update, Disturb and Reset must not run
// concurrently with each other or with the read accessors; the grid fans
// each step out across an internal worker pool and joins before returning.
//
// Stability: the scheme is only stable while speed·dt/dx stays at or below
// 1/√2. Create accepts any positive parameters and logs a warning when the
// condition does not hold; see Grid.Stable.
package waves
