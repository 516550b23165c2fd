// Package analysis works on recorded telemetry columns.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillations such as idle
//     hunting or body bounce on the springs
//   - [NewPhasePortrait]: one column against another, e.g. rpm against
//     clutch torque
//   - [NewSection]: samples taken each time a column rises through a
//     threshold
//   - [Summarize]: min, max, mean and RMS of a column
//
// Columns come from storage.Table.Column or straight from sim.Result rows.
//
//	rpm, _ := table.Column("rpm")
//	hz, amp := analysis.DominantFrequency(rpm, meta.Dt)
package analysis
