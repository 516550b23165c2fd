// Package viz is the interactive terminal dashboard.
//
// A [Model] steps a simulator in real time and reads the keyboard into a
// control.Manual driver, so the car is driven by hand:
//
//	m := viz.NewModel(simulator, manual, dt, "hatchback")
//	tea.NewProgram(m, tea.WithAltScreen()).Run()
//
// The right hand panel draws the path driven so far on a braille [Canvas].
package viz
