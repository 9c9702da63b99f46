// Package delivery mirrors a job's rendered chunks onto externally visible
// message units of a chat transport.
//
// The Outputter owns a job's render.State and its list of delivered units.
// Units are append-only: unit i always holds chunk i, only the last unit's
// text may still change, and only the newest unit carries the cancel control.
package delivery
