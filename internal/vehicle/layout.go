package vehicle

import (
	"errors"
	"fmt"
)

var ErrUnknownLayout = errors.New("vehicle: unknown drive layout")

type Layout int

const (
	FrontWheelDrive Layout = iota
	RearWheelDrive
	AllWheelDrive
)

func (l Layout) String() string {
	switch l {
	case RearWheelDrive:
		return "rwd"
	case AllWheelDrive:
		return "awd"
	}
	return "fwd"
}

func ParseLayout(s string) (Layout, error) {
	switch s {
	case "fwd":
		return FrontWheelDrive, nil
	case "rwd":
		return RearWheelDrive, nil
	case "awd", "4wd":
		return AllWheelDrive, nil
	}
	return FrontWheelDrive, fmt.Errorf("%q: %w", s, ErrUnknownLayout)
}

// AxleShares returns the fraction of drive torque sent to the front and
// rear axles.
func (l Layout) AxleShares(frontSplit float64) (front, rear float64) {
	switch l {
	case RearWheelDrive:
		return 0, 1
	case AllWheelDrive:
		f := clamp(frontSplit, 0, 1)
		return f, 1 - f
	}
	return 1, 0
}
